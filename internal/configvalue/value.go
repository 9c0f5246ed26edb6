// Package configvalue defines the in-memory representation of a merged
// configuration tree: a recursive tagged value preserving the insertion
// order of object keys, since format negotiation and property-source
// precedence both depend on the order config keys were declared in.
package configvalue

import (
	"math"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// Value is a single node in a configuration tree. Exactly one of the
// fields matching its Kind is meaningful; the rest are zero.
type Value struct {
	Kind Kind

	Bool   bool
	Int    int64
	Float  float64
	String string
	Array  []*Value
	Object *Object
}

func Null() *Value                { return &Value{Kind: KindNull} }
func Bool(b bool) *Value          { return &Value{Kind: KindBool, Bool: b} }
func Int(i int64) *Value          { return &Value{Kind: KindInt, Int: i} }
func Float(f float64) *Value      { return &Value{Kind: KindFloat, Float: f} }
func String(s string) *Value      { return &Value{Kind: KindString, String: s} }
func Array(items ...*Value) *Value {
	return &Value{Kind: KindArray, Array: items}
}
func NewObject() *Value {
	return &Value{Kind: KindObject, Object: NewOrderedObject()}
}

// Object is an insertion-ordered string-keyed map. Go's builtin map type
// cannot preserve key order, so merge and serialization logic walk Keys()
// instead of ranging over a map directly.
type Object struct {
	keys   []string
	values map[string]*Value
}

func NewOrderedObject() *Object {
	return &Object{values: make(map[string]*Value)}
}

// Set inserts or replaces the value at key. Replacing a key keeps its
// original position in Keys().
func (o *Object) Set(key string, v *Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value at key and whether it was present.
func (o *Object) Get(key string) (*Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Delete removes key, if present, preserving order of what remains.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Clone performs a deep copy of the object.
func (o *Object) Clone() *Object {
	out := NewOrderedObject()
	for _, k := range o.keys {
		out.Set(k, o.values[k].Clone())
	}
	return out
}

// Clone performs a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindArray:
		items := make([]*Value, len(v.Array))
		for i, item := range v.Array {
			items[i] = item.Clone()
		}
		return &Value{Kind: KindArray, Array: items}
	case KindObject:
		return &Value{Kind: KindObject, Object: v.Object.Clone()}
	default:
		cp := *v
		return &cp
	}
}

// Get resolves a dot-separated path such as "server.port" against the
// tree rooted at v. Array indices are not addressable by this accessor;
// only object traversal is supported, matching the Spring Cloud Config
// property-path convention this server implements.
func (v *Value) Get(path string) (*Value, bool) {
	if path == "" {
		return nil, false
	}
	cur := v
	for _, part := range strings.Split(path, ".") {
		if cur == nil || cur.Kind != KindObject {
			return nil, false
		}
		next, ok := cur.Object.Get(part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// IsNull reports whether v is nil or the null variant.
func (v *Value) IsNull() bool {
	return v == nil || v.Kind == KindNull
}

// canonicalFloat normalizes f for comparison: every NaN bit pattern
// collapses to one, and -0.0 is treated as 0.0, so values that are
// numerically indistinguishable compare equal.
func canonicalFloat(f float64) float64 {
	if math.IsNaN(f) {
		return math.NaN()
	}
	if f == 0 {
		return 0
	}
	return f
}

// Equal reports whether v and other describe the same structural value:
// same Kind, same scalar payload (floats compared via canonicalFloat, so
// NaN equals NaN and -0.0 equals 0.0), same array elements in order, and
// the same set of object keys each mapping to an Equal value (object key
// order does not matter; see Object.Equal).
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == nil && other == nil
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == other.Bool
	case KindInt:
		return v.Int == other.Int
	case KindFloat:
		a, b := canonicalFloat(v.Float), canonicalFloat(other.Float)
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	case KindString:
		return v.String == other.String
	case KindArray:
		if len(v.Array) != len(other.Array) {
			return false
		}
		for i, item := range v.Array {
			if !item.Equal(other.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.Object.Equal(other.Object)
	default:
		return false
	}
}

// Equal reports whether o and other hold the same set of keys, each
// mapping to an Equal value; insertion order does not affect equality,
// matching Rust's IndexMap (the original's backing type for objects),
// whose PartialEq compares key/value pairs irrespective of order.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == nil && other == nil
	}
	if len(o.keys) != len(other.keys) {
		return false
	}
	for _, k := range o.keys {
		ov, ok := other.values[k]
		if !ok || !o.values[k].Equal(ov) {
			return false
		}
	}
	return true
}
