package protoobject

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

var (
	// ErrSchemaNotFound indicates that no message type could be found for a
	// class name. Use errors.As with *SchemaNotFoundError for details.
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrUnsupportedFieldKind indicates a field whose kind cannot be boxed,
	// such as a group. Use errors.As with *UnsupportedFieldKindError for
	// details.
	ErrUnsupportedFieldKind = errors.New("unsupported field kind")
	// ErrUnknownEnumValue indicates that a boxed enum name has no match in
	// the enum's value table. Use errors.As with *UnknownEnumValueError for
	// details.
	ErrUnknownEnumValue = errors.New("unknown enum value")
	// ErrInvalidState indicates that an object does not have the shape its
	// schema says it should: the wrong number of slots, the wrong class, or
	// a slot holding a value of the wrong kind.
	ErrInvalidState = errors.New("invalid state")
)

// SchemaNotFoundError is returned when a class's message type cannot be
// resolved.
type SchemaNotFoundError struct {
	Name protoreflect.FullName
	// Err is the error reported by the resolver, usually one that wraps
	// protoregistry.NotFound.
	Err error
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("can't find message type for name %q: %v", e.Name, e.Err)
}

// Is returns true for ErrSchemaNotFound.
func (e *SchemaNotFoundError) Is(target error) bool {
	return target == ErrSchemaNotFound
}

func (e *SchemaNotFoundError) Unwrap() error {
	return e.Err
}

// UnsupportedFieldKindError is returned when a message declares a field of
// a kind that cannot be converted.
type UnsupportedFieldKindError struct {
	Field protoreflect.FullName
	Kind  protoreflect.Kind
}

func (e *UnsupportedFieldKindError) Error() string {
	return fmt.Sprintf("field %s has unsupported kind %v", e.Field, e.Kind)
}

// Is returns true for ErrUnsupportedFieldKind.
func (e *UnsupportedFieldKindError) Is(target error) bool {
	return target == ErrUnsupportedFieldKind
}

// UnknownEnumValueError is returned when an enum name cannot be resolved to
// a number.
type UnknownEnumValueError struct {
	Field protoreflect.FullName
	Enum  protoreflect.FullName
	Value string
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("field %s: enum %s has no value named %q", e.Field, e.Enum, e.Value)
}

// Is returns true for ErrUnknownEnumValue.
func (e *UnknownEnumValueError) Is(target error) bool {
	return target == ErrUnknownEnumValue
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
