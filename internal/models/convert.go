package models

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/mcncl/sidmtools/internal/errors"
	"gopkg.in/yaml.v3"
)

// FromYAML converts a parsed YAML node tree into a Value. Mapping order is
// preserved and aliases are expanded; an alias that refers back into its own
// anchor yields errors.ErrCycle.
func FromYAML(node *yaml.Node) (Value, error) {
	return fromNode(node, make(map[*yaml.Node]bool))
}

func fromNode(node *yaml.Node, active map[*yaml.Node]bool) (Value, error) {
	if node == nil {
		return Leaf{}, nil
	}
	if active[node] {
		return nil, errors.NewParsingError(fmt.Sprintf("alias at line %d refers to itself", node.Line), errors.ErrCycle)
	}
	active[node] = true
	defer delete(active, node)

	switch node.Kind {
	case 0:
		return Leaf{}, nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Leaf{}, nil
		}
		return fromNode(node.Content[0], active)
	case yaml.AliasNode:
		return fromNode(node.Alias, active)
	case yaml.SequenceNode:
		seq := make(Seq, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := fromNode(child, active)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.MappingNode:
		return fromMapping(node, active)
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("invalid scalar at line %d", node.Line), err)
		}
		return Leaf{V: v}, nil
	default:
		return nil, errors.NewParsingError(fmt.Sprintf("unsupported YAML node kind %d", node.Kind), errors.ErrInvalidYAML)
	}
}

// fromMapping builds a Map in document order. Merge keys ("<<") pull in the
// entries of the referenced mapping, or of each mapping in a referenced
// sequence, for keys the mapping does not set itself. Keys set explicitly
// win wherever they appear, and earlier merge sources win over later ones.
func fromMapping(node *yaml.Node, active map[*yaml.Node]bool) (Value, error) {
	keys := make([]any, len(node.Content)/2)
	vals := make([]Value, len(node.Content)/2)
	var explicit Map
	for i := 0; i+1 < len(node.Content); i += 2 {
		v, err := fromNode(node.Content[i+1], active)
		if err != nil {
			return nil, err
		}
		vals[i/2] = v
		if isMergeKey(node.Content[i]) {
			continue
		}
		var key any
		if err := node.Content[i].Decode(&key); err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("invalid mapping key at line %d", node.Content[i].Line), err)
		}
		keys[i/2] = key
		explicit.Set(key, v)
	}

	m := make(Map, 0, len(keys))
	for i := 0; i+1 < len(node.Content); i += 2 {
		if !isMergeKey(node.Content[i]) {
			m.Set(keys[i/2], vals[i/2])
			continue
		}
		sources, err := mergeSources(vals[i/2], node.Content[i].Line)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			for _, e := range src {
				if explicit.has(e.Key) || m.has(e.Key) {
					continue
				}
				m = append(m, e)
			}
		}
	}
	return m, nil
}

func isMergeKey(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" &&
		(n.Tag == "" || n.Tag == "!" || n.ShortTag() == "!!merge")
}

func mergeSources(v Value, line int) ([]Map, error) {
	switch v := v.(type) {
	case Map:
		return []Map{v}, nil
	case Seq:
		out := make([]Map, 0, len(v))
		for _, item := range v {
			m, ok := item.(Map)
			if !ok {
				return nil, errors.NewParsingError(fmt.Sprintf("merge key at line %d lists a %s, expected mappings", line, Kind(item)), errors.ErrInvalidYAML)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, errors.NewParsingError(fmt.Sprintf("merge key at line %d refers to a %s, expected a mapping", line, Kind(v)), errors.ErrInvalidYAML)
	}
}

// FromAny converts plain Go values into a Value. Slices and arrays become
// Seq, Go maps become Map with keys in sorted order, pointers and interfaces
// are followed, and everything else is a Leaf. A container that contains
// itself yields errors.ErrCycle.
func FromAny(x any) (Value, error) {
	return fromReflect(reflect.ValueOf(x), make(map[visit]bool))
}

// visit identifies a container on the current traversal path.
type visit struct {
	ptr  uintptr
	len  int
	kind reflect.Kind
}

func fromReflect(rv reflect.Value, active map[visit]bool) (Value, error) {
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Leaf{}, nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return Leaf{}, nil
	}

	// Values already in the sum type are walked through their own variants.
	if rv.CanInterface() {
		switch v := rv.Interface().(type) {
		case Leaf:
			return v, nil
		case Seq:
			return fromSeq(v, rv, active)
		case Map:
			return fromMap(v, rv, active)
		}
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Leaf{V: rv.Interface()}, nil
		}
		elem := rv.Elem().Kind()
		if elem != reflect.Slice && elem != reflect.Map && elem != reflect.Array && elem != reflect.Interface && elem != reflect.Pointer {
			return Leaf{V: rv.Interface()}, nil
		}
		key := visit{ptr: rv.Pointer(), kind: reflect.Pointer}
		if active[key] {
			return nil, errors.ErrCycle
		}
		active[key] = true
		defer delete(active, key)
		return fromReflect(rv.Elem(), active)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte is data, not a container.
			return Leaf{V: rv.Interface()}, nil
		}
		key := visit{ptr: rv.Pointer(), len: rv.Len(), kind: reflect.Slice}
		if rv.Len() > 0 {
			if active[key] {
				return nil, errors.ErrCycle
			}
			active[key] = true
			defer delete(active, key)
		}
		return fromElems(rv, active)
	case reflect.Array:
		return fromElems(rv, active)
	case reflect.Map:
		key := visit{ptr: rv.Pointer(), kind: reflect.Map}
		if active[key] {
			return nil, errors.ErrCycle
		}
		active[key] = true
		defer delete(active, key)

		keys := rv.MapKeys()
		sortKeys(keys)
		m := make(Map, 0, len(keys))
		for _, k := range keys {
			v, err := fromReflect(rv.MapIndex(k), active)
			if err != nil {
				return nil, err
			}
			m = append(m, Entry{Key: k.Interface(), Value: v})
		}
		return m, nil
	default:
		if !rv.CanInterface() {
			return Leaf{}, nil
		}
		return Leaf{V: rv.Interface()}, nil
	}
}

func fromElems(rv reflect.Value, active map[visit]bool) (Value, error) {
	seq := make(Seq, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := fromReflect(rv.Index(i), active)
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
	return seq, nil
}

func fromSeq(s Seq, rv reflect.Value, active map[visit]bool) (Value, error) {
	if len(s) > 0 {
		key := visit{ptr: rv.Pointer(), len: len(s), kind: reflect.Slice}
		if active[key] {
			return nil, errors.ErrCycle
		}
		active[key] = true
		defer delete(active, key)
	}
	out := make(Seq, 0, len(s))
	for _, child := range s {
		v, err := fromReflect(reflect.ValueOf(child), active)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func fromMap(m Map, rv reflect.Value, active map[visit]bool) (Value, error) {
	if len(m) > 0 {
		key := visit{ptr: rv.Pointer(), len: len(m), kind: reflect.Map}
		if active[key] {
			return nil, errors.ErrCycle
		}
		active[key] = true
		defer delete(active, key)
	}
	out := make(Map, 0, len(m))
	for _, e := range m {
		v, err := fromReflect(reflect.ValueOf(e.Value), active)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: e.Key, Value: v})
	}
	return out, nil
}

// sortKeys orders Go map keys so conversion is deterministic. Strings and
// numbers sort naturally; other key types sort by their formatted form.
func sortKeys(keys []reflect.Value) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Kind() == b.Kind() {
			switch a.Kind() {
			case reflect.String:
				return a.String() < b.String()
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				return a.Int() < b.Int()
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				return a.Uint() < b.Uint()
			case reflect.Float32, reflect.Float64:
				return a.Float() < b.Float()
			}
		}
		return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
	})
}
