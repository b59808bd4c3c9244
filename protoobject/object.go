package protoobject

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protogeneric/generic"
)

// Object is a generic representation of one message: one boxed value per
// field of the message's type, in field order.
//
// Singular fields that were not set are held as absent values, so an Object
// distinguishes "not set" from "set to the default". An Object owns its
// nested objects and lists. It is not safe for concurrent mutation.
type Object struct {
	class  *Class
	values []generic.Value
}

var _ generic.Object = (*Object)(nil)

// NewObject creates an object of the given class from the given slot values.
// The values are not checked against the class until the object is encoded.
func NewObject(class *Class, values []generic.Value) *Object {
	return &Object{class: class, values: values}
}

// Class returns the object's class.
func (o *Object) Class() *Class {
	return o.class
}

// ObjectType implements generic.Object. It returns the object's class.
func (o *Object) ObjectType() generic.ObjectType {
	return o.class
}

// Len returns the number of slots.
func (o *Object) Len() int {
	return len(o.values)
}

// Get returns the value in the i-th slot.
func (o *Object) Get(i int) generic.Value {
	return o.values[i]
}

// Set stores v in the i-th slot. The value must have the same type as the
// value it replaces; use generic.Absent with the slot's type to clear it.
func (o *Object) Set(i int, v generic.Value) error {
	if i < 0 || i >= len(o.values) {
		return fmt.Errorf("slot %d out of range for %s with %d slots", i, o.class.name, len(o.values))
	}
	if !v.IsValid() {
		return fmt.Errorf("%w: cannot store invalid value in slot %d of %s", generic.ErrKindMismatch, i, o.class.name)
	}
	cur := o.values[i]
	if cur.IsValid() && !generic.Assignable(cur.Type(), v.Type()) {
		return fmt.Errorf("%w: cannot store %s in slot %d of %s, which holds %s",
			generic.ErrKindMismatch, v.Type().Name(), i, o.class.name, cur.Type().Name())
	}
	o.values[i] = v
	return nil
}

// GetByName returns the value of the named property.
func (o *Object) GetByName(name string) (generic.Value, error) {
	i, err := o.indexOf(name)
	if err != nil {
		return generic.Value{}, err
	}
	return o.values[i], nil
}

// SetByName stores v in the named property.
func (o *Object) SetByName(name string, v generic.Value) error {
	i, err := o.indexOf(name)
	if err != nil {
		return err
	}
	return o.Set(i, v)
}

func (o *Object) indexOf(name string) (int, error) {
	p, ok, err := o.class.PropertyByName(name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s has no property named %q", o.class.name, name)
	}
	if p.Index >= len(o.values) {
		return 0, invalidState("%s has %d slots but property %q is at %d", o.class.name, len(o.values), name, p.Index)
	}
	return p.Index, nil
}

// Values returns a copy of the object's slots.
func (o *Object) Values() []generic.Value {
	return append([]generic.Value(nil), o.values...)
}

// ToMessage creates a new message of the object's class and encodes the
// object into it.
func (o *Object) ToMessage() (protoreflect.Message, error) {
	msg, err := o.class.NewMessage()
	if err != nil {
		return nil, err
	}
	if err := o.class.reg.Encode(o, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// String returns a compact, human-readable rendering of the object, for
// debugging.
func (o *Object) String() string {
	var sb strings.Builder
	sb.WriteString(string(o.class.name))
	sb.WriteByte('{')
	for i, v := range o.values {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeValue(&sb, v)
	}
	sb.WriteByte('}')
	return sb.String()
}

func writeValue(sb *strings.Builder, v generic.Value) {
	switch {
	case !v.IsValid():
		sb.WriteString("<invalid>")
	case v.IsAbsent():
		sb.WriteString("<absent>")
	case v.Kind() == generic.ListKind:
		sb.WriteByte('[')
		it := v.List().Iterator()
		first := true
		for it.Next() {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			writeValue(sb, it.Value())
		}
		sb.WriteByte(']')
	case v.Kind() == generic.StringKind:
		fmt.Fprintf(sb, "%q", v.String())
	default:
		fmt.Fprint(sb, v.Interface())
	}
}
