// Package listutil holds small helpers for printing and splitting lists.
package listutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/mcncl/sidmtools/internal/errors"
)

// PrintList writes one element per line.
func PrintList[T any](w io.Writer, items []T) error {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprint(item)
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// PrintDebug writes "name: val" when enabled is set.
func PrintDebug(w io.Writer, name string, val any, enabled bool) {
	if !enabled {
		return
	}
	fmt.Fprintf(w, "%s: %v\n", name, val)
}

// Partition splits items into the elements that satisfy cond and those that
// don't, keeping their relative order. Both results are non-nil.
func Partition[T any](items []T, cond func(T) bool) (passes, fails []T) {
	passes = make([]T, 0, len(items))
	fails = make([]T, 0)
	for _, item := range items {
		if cond(item) {
			passes = append(passes, item)
		} else {
			fails = append(fails, item)
		}
	}
	return passes, fails
}

// Condition is a compiled predicate over a single value.
type Condition struct {
	src     string
	program *vm.Program
}

// CompileCondition compiles an expression that refers to the current element
// as v, e.g. "v % 2 == 0" or `v startsWith "ttbar"`.
func CompileCondition(src string) (*Condition, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.NewParsingError("condition is empty", nil)
	}
	program, err := expr.Compile(src, expr.Env(map[string]any{"v": nil}), expr.AsBool())
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("invalid condition %q", src), err)
	}
	return &Condition{src: src, program: program}, nil
}

// Eval runs the condition against v.
func (c *Condition) Eval(v any) (bool, error) {
	out, err := expr.Run(c.program, map[string]any{"v": v})
	if err != nil {
		return false, fmt.Errorf("evaluating %q on %v: %w", c.src, v, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// PartitionWhere partitions items with a compiled condition. An evaluation
// error aborts the whole partition.
func PartitionWhere[T any](items []T, c *Condition) (passes, fails []T, err error) {
	passes, fails = Partition(items, func(item T) bool {
		if err != nil {
			return false
		}
		var ok bool
		ok, err = c.Eval(item)
		return ok
	})
	if err != nil {
		return nil, nil, err
	}
	return passes, fails, nil
}

// String returns the source expression.
func (c *Condition) String() string {
	return c.src
}
