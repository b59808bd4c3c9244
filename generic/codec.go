package generic

import (
	"errors"
	"fmt"
)

// ErrNoInterpretation is returned by codecs when asked to serialize a
// statically typed value that has none of the enabled interpretations.
var ErrNoInterpretation = errors.New("generic: no enabled interpretation")

// ToValue returns the generic form of v, which may be a Value, an Object, a
// *List, or an Interpreted value that has one of the enabled
// interpretations. It is the entry point codecs use to accept their input.
func ToValue(v any, enabled []string) (Value, error) {
	switch v := v.(type) {
	case Value:
		if !v.IsValid() {
			return Value{}, fmt.Errorf("%w: invalid value", ErrKindMismatch)
		}
		return v, nil
	case Object:
		return ObjectValue(v), nil
	case *List:
		return ListValue(v), nil
	}
	if interp, ok := FindInterpretation(v, enabled); ok {
		return interp.ToGeneric()
	}
	if _, ok := v.(Interpreted); ok {
		return Value{}, fmt.Errorf("%w: %T supports none of %q", ErrNoInterpretation, v, enabled)
	}
	return Value{}, fmt.Errorf("generic: cannot convert %T to a generic value", v)
}

// Assign stores a decoded value into dst, which may be a *Value whose
// current type says what to decode, an Object whose slots are replaced, or
// an Interpreted value that has one of the enabled interpretations. The
// decode function is called with the type that dst expects.
func Assign(dst any, enabled []string, decode func(Type) (Value, error)) error {
	switch dst := dst.(type) {
	case *Value:
		if !dst.IsValid() {
			return fmt.Errorf("%w: destination value has no type", ErrKindMismatch)
		}
		v, err := decode(dst.Type())
		if err != nil {
			return err
		}
		*dst = v
		return nil
	case Object:
		v, err := decode(dst.ObjectType())
		if err != nil {
			return err
		}
		if v.IsAbsent() {
			return fmt.Errorf("%w: cannot store null in %s", ErrKindMismatch, dst.ObjectType().Name())
		}
		src := v.Object()
		for i := 0; i < src.Len(); i++ {
			if err := dst.Set(i, src.Get(i)); err != nil {
				return err
			}
		}
		return nil
	}
	if interp, ok := FindInterpretation(dst, enabled); ok {
		v, err := decode(interp.Type())
		if err != nil {
			return err
		}
		return interp.FromGeneric(v)
	}
	if _, ok := dst.(Interpreted); ok {
		return fmt.Errorf("%w: %T supports none of %q", ErrNoInterpretation, dst, enabled)
	}
	return fmt.Errorf("generic: cannot decode into %T", dst)
}
