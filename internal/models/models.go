package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Kind is the tag of a JSON Value. The zero Kind is Invalid.
type Kind uint8

const (
	Invalid Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

var kindNames = [...]string{
	Invalid: "invalid",
	Null:    "null",
	Bool:    "boolean",
	Number:  "number",
	String:  "string",
	Array:   "array",
	Object:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsContainer reports whether values of this kind hold other values.
func (k Kind) IsContainer() bool {
	return k == Array || k == Object
}

// Value is one node of a JSON document. Only the field matching kind is
// meaningful:
//
//	Null    -
//	Bool    b
//	Number  n
//	String  s
//	Array   items
//	Object  fields (string -> *Value, insertion ordered)
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	items  []*Value
	fields *linkedhashmap.Map
}

// NewNull returns a JSON null.
func NewNull() *Value { return &Value{kind: Null} }

// NewBool returns a JSON boolean.
func NewBool(b bool) *Value { return &Value{kind: Bool, b: b} }

// NewNumber returns a JSON number.
func NewNumber(n float64) *Value { return &Value{kind: Number, n: n} }

// NewString returns a JSON string.
func NewString(s string) *Value { return &Value{kind: String, s: s} }

// NewArray returns a JSON array holding items. Nil items become null.
func NewArray(items ...*Value) *Value {
	v := &Value{kind: Array, items: make([]*Value, 0, len(items))}
	for _, item := range items {
		v.items = append(v.items, orNull(item))
	}
	return v
}

// NewObject returns an empty JSON object.
func NewObject() *Value {
	return &Value{kind: Object, fields: linkedhashmap.New()}
}

func orNull(v *Value) *Value {
	if v == nil {
		return NewNull()
	}
	return v
}

// Kind returns the tag of v. A nil Value is Null.
func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

// IsNull reports whether v is JSON null.
func (v *Value) IsNull() bool { return v.Kind() == Null }

// AsBool returns the boolean held by v, or false for other kinds.
func (v *Value) AsBool() bool { return v.Kind() == Bool && v.b }

// AsNumber returns the number held by v, or 0 for other kinds.
func (v *Value) AsNumber() float64 {
	if v.Kind() != Number {
		return 0
	}
	return v.n
}

// AsString returns the string held by v, or "" for other kinds.
func (v *Value) AsString() string {
	if v.Kind() != String {
		return ""
	}
	return v.s
}

// Len returns the number of items of an array or fields of an object.
func (v *Value) Len() int {
	switch v.Kind() {
	case Array:
		return len(v.items)
	case Object:
		return v.fields.Size()
	default:
		return 0
	}
}

// Items returns the elements of an array. The slice is a copy; the elements
// are shared.
func (v *Value) Items() []*Value {
	if v.Kind() != Array {
		return nil
	}
	out := make([]*Value, len(v.items))
	copy(out, v.items)
	return out
}

// Index returns the element at i of an array.
func (v *Value) Index(i int) (*Value, bool) {
	if v.Kind() != Array || i < 0 || i >= len(v.items) {
		return nil, false
	}
	return v.items[i], true
}

// SetIndex assigns item at i of an array. An index past the end pads the gap
// with nulls, the way a sparse array serializes.
func (v *Value) SetIndex(i int, item *Value) {
	if v.Kind() != Array {
		panic(fmt.Sprintf("models: SetIndex on %s", v.Kind()))
	}
	if i < 0 {
		panic(fmt.Sprintf("models: negative index %d", i))
	}
	for len(v.items) <= i {
		v.items = append(v.items, NewNull())
	}
	v.items[i] = orNull(item)
}

// Append adds item to the end of an array.
func (v *Value) Append(item *Value) {
	v.SetIndex(v.Len(), item)
}

// RemoveIndex deletes the element at i, shifting later elements left.
// It reports whether an element was removed.
func (v *Value) RemoveIndex(i int) bool {
	if v.Kind() != Array || i < 0 || i >= len(v.items) {
		return false
	}
	copy(v.items[i:], v.items[i+1:])
	v.items[len(v.items)-1] = nil
	v.items = v.items[:len(v.items)-1]
	return true
}

// Keys returns the property names of an object in insertion order.
func (v *Value) Keys() []string {
	if v.Kind() != Object {
		return nil
	}
	keys := make([]string, 0, v.fields.Size())
	for _, k := range v.fields.Keys() {
		keys = append(keys, k.(string))
	}
	return keys
}

// Field returns the property name of an object.
func (v *Value) Field(name string) (*Value, bool) {
	if v.Kind() != Object {
		return nil, false
	}
	found, ok := v.fields.Get(name)
	if !ok {
		return nil, false
	}
	return found.(*Value), true
}

// SetField assigns a property of an object. A new property is appended after
// the existing ones; an existing one keeps its position.
func (v *Value) SetField(name string, item *Value) {
	if v.Kind() != Object {
		panic(fmt.Sprintf("models: SetField on %s", v.Kind()))
	}
	v.fields.Put(name, orNull(item))
}

// DeleteField removes a property of an object. It reports whether the
// property existed.
func (v *Value) DeleteField(name string) bool {
	if v.Kind() != Object {
		return false
	}
	if _, ok := v.fields.Get(name); !ok {
		return false
	}
	v.fields.Remove(name)
	return true
}

// Valid reports whether v and all of its children carry a known kind.
func (v *Value) Valid() bool {
	if v == nil {
		return true
	}
	switch v.kind {
	case Null, Bool, Number, String:
		return true
	case Array:
		for _, item := range v.items {
			if !item.Valid() {
				return false
			}
		}
		return true
	case Object:
		if v.fields == nil {
			return false
		}
		for _, k := range v.Keys() {
			item, _ := v.Field(k)
			if !item.Valid() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return NewNull()
	}
	switch v.kind {
	case Array:
		out := &Value{kind: Array, items: make([]*Value, len(v.items))}
		for i, item := range v.items {
			out.items[i] = item.Clone()
		}
		return out
	case Object:
		out := NewObject()
		for _, k := range v.Keys() {
			item, _ := v.Field(k)
			out.SetField(k, item.Clone())
		}
		return out
	default:
		c := *v
		return &c
	}
}

// Equal compares v and o and all their children. Object key order is
// ignored.
func (v *Value) Equal(o *Value) bool {
	if v == o {
		return true
	}
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case Null:
		return true
	case Bool:
		return v.b == o.b
	case Number:
		return v.n == o.n
	case String:
		return v.s == o.s
	case Array:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if v.Len() != o.Len() {
			return false
		}
		for _, k := range v.Keys() {
			mine, _ := v.Field(k)
			theirs, ok := o.Field(k)
			if !ok || !mine.Equal(theirs) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Interface converts v into the Go values encoding/json produces:
// map[string]interface{}, []interface{}, float64, string, bool and nil.
func (v *Value) Interface() interface{} {
	switch v.Kind() {
	case Bool:
		return v.b
	case Number:
		return v.n
	case String:
		return v.s
	case Array:
		out := make([]interface{}, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]interface{}, v.Len())
		for _, k := range v.Keys() {
			item, _ := v.Field(k)
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromInterface builds a Value from the Go values encoding/json produces.
// Integer types and json.Number are accepted as numbers. Map keys are
// inserted in sorted order.
func FromInterface(in interface{}) (*Value, error) {
	switch x := in.(type) {
	case nil:
		return NewNull(), nil
	case *Value:
		return x.Clone(), nil
	case bool:
		return NewBool(x), nil
	case string:
		return NewString(x), nil
	case float64:
		return finiteNumber(x)
	case float32:
		return finiteNumber(float64(x))
	case int:
		return NewNumber(float64(x)), nil
	case int64:
		return NewNumber(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return finiteNumber(f)
	case []interface{}:
		out := NewArray()
		for i, item := range x {
			child, err := FromInterface(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Append(child)
		}
		return out, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewObject()
		for _, k := range keys {
			child, err := FromInterface(x[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out.SetField(k, child)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported Go type %T", in)
	}
}

func finiteNumber(f float64) (*Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("number %v is not representable in JSON", f)
	}
	return NewNumber(f), nil
}
