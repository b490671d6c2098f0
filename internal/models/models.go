// Package models defines the nested structure that the flattener and the
// fileset resolver operate on: a value is a leaf, an ordered sequence of
// values, or an ordered mapping from keys to values.
package models

import (
	"fmt"
	"reflect"
)

// Value is one node of a nested structure. It is implemented by Leaf, Seq
// and Map only.
type Value interface {
	isValue()
}

// Leaf holds any non-container value.
type Leaf struct {
	V any
}

// Seq is an ordered sequence of values.
type Seq []Value

// Entry is a single key/value pair of a Map.
type Entry struct {
	Key   any
	Value Value
}

// Map is a mapping that keeps its entries in insertion order.
type Map []Entry

func (Leaf) isValue() {}
func (Seq) isValue()  {}
func (Map) isValue()  {}

// String formats the leaf's underlying value.
func (l Leaf) String() string {
	return fmt.Sprint(l.V)
}

// Lookup returns the value stored under key. Keys are compared by their
// formatted representation so YAML keys like 2018 match "2018".
func (m Map) Lookup(key string) (Value, bool) {
	for _, e := range m {
		if fmt.Sprint(e.Key) == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys of m in insertion order.
func (m Map) Keys() []any {
	keys := make([]any, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// Values returns the values of m in insertion order.
func (m Map) Values() Seq {
	vals := make(Seq, len(m))
	for i, e := range m {
		vals[i] = e.Value
	}
	return vals
}

// Set replaces the value under key or appends a new entry.
func (m *Map) Set(key any, v Value) {
	for i, e := range *m {
		if reflect.DeepEqual(e.Key, key) {
			(*m)[i].Value = v
			return
		}
	}
	*m = append(*m, Entry{Key: key, Value: v})
}

func (m Map) has(key any) bool {
	for _, e := range m {
		if reflect.DeepEqual(e.Key, key) {
			return true
		}
	}
	return false
}

// Kind names the variant of v for error messages.
func Kind(v Value) string {
	switch v.(type) {
	case Seq:
		return "sequence"
	case Map:
		return "mapping"
	case Leaf:
		return "leaf"
	case nil:
		return "nothing"
	default:
		return fmt.Sprintf("%T", v)
	}
}
