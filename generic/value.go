package generic

import (
	"fmt"
)

// Value is a boxed value of one of the kinds enumerated by Kind.
//
// A Value always knows its static Type. The zero Value has no type and is
// invalid; use Absent to represent a value that is missing but whose type is
// known.
//
// Accessor methods, like Int32 or Object, panic if called on a value of the
// wrong kind or on an absent value, the same way protoreflect.Value does.
// Check Kind and IsAbsent first when the shape is not known.
type Value struct {
	typ Type
	v   any
}

// Absent returns the absent marker for the given type.
func Absent(t Type) Value {
	return Value{typ: t}
}

// StringValue boxes a string.
func StringValue(v string) Value {
	return Value{typ: StringType, v: v}
}

// BytesValue boxes a byte slice. The slice is not copied.
func BytesValue(v []byte) Value {
	if v == nil {
		v = []byte{}
	}
	return Value{typ: BytesType, v: v}
}

// Int32Value boxes a signed 32-bit integer.
func Int32Value(v int32) Value {
	return Value{typ: Int32Type, v: v}
}

// Uint32Value boxes an unsigned 32-bit integer.
func Uint32Value(v uint32) Value {
	return Value{typ: Uint32Type, v: v}
}

// Int64Value boxes a signed 64-bit integer.
func Int64Value(v int64) Value {
	return Value{typ: Int64Type, v: v}
}

// Uint64Value boxes an unsigned 64-bit integer.
func Uint64Value(v uint64) Value {
	return Value{typ: Uint64Type, v: v}
}

// Float32Value boxes a 32-bit float.
func Float32Value(v float32) Value {
	return Value{typ: Float32Type, v: v}
}

// Float64Value boxes a 64-bit float.
func Float64Value(v float64) Value {
	return Value{typ: Float64Type, v: v}
}

// BoolValue boxes a boolean.
func BoolValue(v bool) Value {
	return Value{typ: BoolType, v: v}
}

// EnumValue boxes the name of an enum value.
func EnumValue(name string) Value {
	return Value{typ: EnumType, v: name}
}

// ObjectValue boxes an object. If obj is nil, the zero (invalid) Value is
// returned, since there is no type to attach to it.
func ObjectValue(obj Object) Value {
	if obj == nil {
		return Value{}
	}
	return Value{typ: obj.ObjectType(), v: obj}
}

// ListValue boxes a list. If list is nil, the zero (invalid) Value is
// returned.
func ListValue(list *List) Value {
	if list == nil {
		return Value{}
	}
	return Value{typ: list.Type(), v: list}
}

// IsValid returns false for the zero Value.
func (v Value) IsValid() bool {
	return v.typ != nil
}

// IsAbsent returns true if the value is an absent marker.
func (v Value) IsAbsent() bool {
	return v.v == nil
}

// Type returns the static type of the value.
func (v Value) Type() Type {
	return v.typ
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	if v.typ == nil {
		return InvalidKind
	}
	return v.typ.Kind()
}

// Interface returns the boxed value as an interface: a string, []byte,
// int32, uint32, int64, uint64, float32, float64, bool, Object or *List.
// Enum values are returned as their name. It returns nil if the value is
// absent.
func (v Value) Interface() any {
	return v.v
}

// String returns the boxed string. It also accepts enum values. For any
// other kind it returns a description of the value, so Value satisfies
// fmt.Stringer.
func (v Value) String() string {
	if s, ok := v.v.(string); ok {
		return s
	}
	if v.v == nil {
		if v.typ == nil {
			return "<invalid>"
		}
		return fmt.Sprintf("<absent %s>", v.typ.Name())
	}
	return fmt.Sprint(v.v)
}

// Bytes returns the boxed byte slice.
func (v Value) Bytes() []byte {
	return v.v.([]byte)
}

// Int32 returns the boxed int32.
func (v Value) Int32() int32 {
	return v.v.(int32)
}

// Uint32 returns the boxed uint32.
func (v Value) Uint32() uint32 {
	return v.v.(uint32)
}

// Int64 returns the boxed int64.
func (v Value) Int64() int64 {
	return v.v.(int64)
}

// Uint64 returns the boxed uint64.
func (v Value) Uint64() uint64 {
	return v.v.(uint64)
}

// Float32 returns the boxed float32.
func (v Value) Float32() float32 {
	return v.v.(float32)
}

// Float64 returns the boxed float64.
func (v Value) Float64() float64 {
	return v.v.(float64)
}

// Bool returns the boxed bool.
func (v Value) Bool() bool {
	return v.v.(bool)
}

// Enum returns the boxed enum value name.
func (v Value) Enum() string {
	if v.Kind() != EnumKind {
		panic(fmt.Sprintf("generic: Enum called on %s value", v.Kind()))
	}
	return v.v.(string)
}

// Object returns the boxed object.
func (v Value) Object() Object {
	return v.v.(Object)
}

// List returns the boxed list.
func (v Value) List() *List {
	return v.v.(*List)
}

// Object is an instance of an ObjectType: an ordered set of slots, one per
// property of the type.
type Object interface {
	// ObjectType returns the type of the object.
	ObjectType() ObjectType
	// Len returns the number of slots.
	Len() int
	// Get returns the value in the i-th slot.
	Get(i int) Value
	// Set stores a value in the i-th slot. It returns an error if the value
	// is not assignable to the slot's property type.
	Set(i int, v Value) error
}
