// Package flatten collapses nested sequences and mappings into a single
// ordered list of leaf values.
package flatten

import (
	stderrors "errors"
	"fmt"

	"github.com/mcncl/sidmtools/internal/errors"
	"github.com/mcncl/sidmtools/internal/models"
)

// Flatten returns the leaves of v in depth-first, left-to-right order.
// Mapping keys are discarded and mapping values are visited in insertion
// order. Empty containers contribute nothing; a bare leaf flattens to a
// single-element list.
func Flatten(v models.Value) []any {
	out := make([]any, 0)
	var loop func(models.Value)
	loop = func(v models.Value) {
		switch n := v.(type) {
		case models.Map:
			for _, e := range n {
				loop(e.Value)
			}
		case models.Seq:
			for _, item := range n {
				loop(item)
			}
		case models.Leaf:
			out = append(out, n.V)
		case nil:
			out = append(out, nil)
		}
	}
	loop(v)
	return out
}

// FlattenAny flattens plain Go values: slices, arrays and maps are
// containers, everything else is a leaf. Go maps are visited in sorted key
// order. A structure that contains itself returns errors.ErrCycle.
func FlattenAny(x any) ([]any, error) {
	v, err := models.FromAny(x)
	if err != nil {
		return nil, fmt.Errorf("flatten: %w", err)
	}
	return Flatten(v), nil
}

// CountLeaves counts the non-container values reachable from v.
func CountLeaves(v models.Value) int {
	switch n := v.(type) {
	case models.Map:
		total := 0
		for _, e := range n {
			total += CountLeaves(e.Value)
		}
		return total
	case models.Seq:
		total := 0
		for _, item := range n {
			total += CountLeaves(item)
		}
		return total
	default:
		return 1
	}
}

// Depth reports the container nesting depth of v. A leaf has depth 0 and an
// empty container depth 1.
func Depth(v models.Value) int {
	var children []models.Value
	switch n := v.(type) {
	case models.Map:
		children = n.Values()
	case models.Seq:
		children = n
	default:
		return 0
	}
	deepest := 0
	for _, c := range children {
		if d := Depth(c); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Strings flattens v and formats each leaf with fmt.Sprint.
func Strings(v models.Value) []string {
	leaves := Flatten(v)
	out := make([]string, len(leaves))
	for i, l := range leaves {
		out[i] = fmt.Sprint(l)
	}
	return out
}

// IsCycle reports whether err was caused by cyclic input.
func IsCycle(err error) bool {
	return stderrors.Is(err, errors.ErrCycle)
}
