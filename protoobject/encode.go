package protoobject

import (
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protogeneric/generic"
)

// encodeMessage validates obj against the target's schema and then writes it.
// All writes go to a scratch message first, so a failure part way through
// leaves target unchanged.
func (r *Registry) encodeMessage(obj generic.Object, target protoreflect.Message) error {
	if !target.IsValid() {
		return invalidState("cannot encode %s into a nil message", obj.ObjectType().Name())
	}
	md := target.Descriptor()
	if err := checkObject(obj, md); err != nil {
		return err
	}
	scratch := target.New()
	if err := writeObject(obj, scratch); err != nil {
		return err
	}
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		if obj.Get(i).IsAbsent() {
			continue
		}
		fd := fields.Get(i)
		target.Clear(fd)
		if scratch.Has(fd) {
			target.Set(fd, scratch.Get(fd))
		}
	}
	return nil
}

// checkObject verifies that obj can be written to a message of the given
// type without error.
func checkObject(obj generic.Object, md protoreflect.MessageDescriptor) error {
	if name := obj.ObjectType().Name(); name != string(md.FullName()) {
		return invalidState("object of class %s cannot be encoded as %s", name, md.FullName())
	}
	fields := md.Fields()
	if obj.Len() != fields.Len() {
		return invalidState("object of class %s has %d slots but message has %d fields", md.FullName(), obj.Len(), fields.Len())
	}
	for i := 0; i < fields.Len(); i++ {
		if err := checkField(fields.Get(i), obj.Get(i)); err != nil {
			return err
		}
	}
	return nil
}

func checkField(fd protoreflect.FieldDescriptor, v generic.Value) error {
	if fd.Kind() == protoreflect.GroupKind {
		return &UnsupportedFieldKindError{Field: fd.FullName(), Kind: fd.Kind()}
	}
	if !v.IsValid() {
		return invalidState("field %s: slot holds no value", fd.FullName())
	}
	if v.IsAbsent() {
		return nil
	}
	if !fd.IsList() && !fd.IsMap() {
		return checkElement(fd, v)
	}
	if v.Kind() != generic.ListKind {
		return invalidState("field %s: expecting list, got %s", fd.FullName(), v.Kind())
	}
	it := v.List().Iterator()
	for it.Next() {
		item := it.Value()
		if !item.IsValid() || item.IsAbsent() {
			return invalidState("field %s: list holds an empty item", fd.FullName())
		}
		if !fd.IsMap() {
			if err := checkElement(fd, item); err != nil {
				return err
			}
			continue
		}
		if item.Kind() != generic.ObjectKind {
			return invalidState("field %s: expecting map entry, got %s", fd.FullName(), item.Kind())
		}
		if err := checkObject(item.Object(), fd.Message()); err != nil {
			return err
		}
		if item.Object().Get(0).IsAbsent() {
			return invalidState("field %s: map entry has no key", fd.FullName())
		}
	}
	return nil
}

// checkElement checks a single (non-absent) value against the element kind
// of fd.
func checkElement(fd protoreflect.FieldDescriptor, v generic.Value) error {
	if conv := scalarConverterFor(fd.Kind()); conv != nil {
		if v.Kind() != conv.typ.Kind() {
			return invalidState("field %s: expecting %s, got %s", fd.FullName(), conv.typ.Kind(), v.Kind())
		}
		return nil
	}
	switch fd.Kind() {
	case protoreflect.EnumKind:
		if v.Kind() != generic.EnumKind {
			return invalidState("field %s: expecting %s, got %s", fd.FullName(), generic.EnumKind, v.Kind())
		}
		_, err := unboxEnum(fd, v)
		return err
	case protoreflect.MessageKind:
		if v.Kind() != generic.ObjectKind {
			return invalidState("field %s: expecting %s, got %s", fd.FullName(), generic.ObjectKind, v.Kind())
		}
		return checkObject(v.Object(), fd.Message())
	default:
		return &UnsupportedFieldKindError{Field: fd.FullName(), Kind: fd.Kind()}
	}
}

func writeObject(obj generic.Object, msg protoreflect.Message) error {
	fields := msg.Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		v := obj.Get(i)
		if v.IsAbsent() {
			continue
		}
		if err := writeField(msg, fields.Get(i), v); err != nil {
			return err
		}
	}
	return nil
}

func writeField(msg protoreflect.Message, fd protoreflect.FieldDescriptor, v generic.Value) error {
	switch {
	case fd.IsMap():
		m := msg.Mutable(fd).Map()
		keyField, valField := fd.MapKey(), fd.MapValue()
		it := v.List().Iterator()
		for it.Next() {
			entry := it.Value().Object()
			key, err := unbox(keyField, entry.Get(0))
			if err != nil {
				return err
			}
			var val protoreflect.Value
			switch ev := entry.Get(1); {
			case valField.Kind() == protoreflect.MessageKind:
				val = m.NewValue()
				if !ev.IsAbsent() {
					if err := writeObject(ev.Object(), val.Message()); err != nil {
						return err
					}
				}
			case ev.IsAbsent():
				val = valField.Default()
			default:
				if val, err = unbox(valField, ev); err != nil {
					return err
				}
			}
			m.Set(key.MapKey(), val)
		}
		return nil
	case fd.IsList():
		l := msg.Mutable(fd).List()
		it := v.List().Iterator()
		for it.Next() {
			item := it.Value()
			if fd.Kind() == protoreflect.MessageKind {
				elem := l.NewElement()
				if err := writeObject(item.Object(), elem.Message()); err != nil {
					return err
				}
				l.Append(elem)
				continue
			}
			pv, err := unbox(fd, item)
			if err != nil {
				return err
			}
			l.Append(pv)
		}
		return nil
	case fd.Kind() == protoreflect.MessageKind:
		return writeObject(v.Object(), msg.Mutable(fd).Message())
	default:
		pv, err := unbox(fd, v)
		if err != nil {
			return err
		}
		msg.Set(fd, pv)
		return nil
	}
}

// unbox converts a scalar or enum value to its protoreflect form.
func unbox(fd protoreflect.FieldDescriptor, v generic.Value) (protoreflect.Value, error) {
	if conv := scalarConverterFor(fd.Kind()); conv != nil {
		if v.Kind() != conv.typ.Kind() {
			return protoreflect.Value{}, invalidState("field %s: expecting %s, got %s", fd.FullName(), conv.typ.Kind(), v.Kind())
		}
		return conv.unbox(v), nil
	}
	if fd.Kind() == protoreflect.EnumKind {
		num, err := unboxEnum(fd, v)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfEnum(num), nil
	}
	return protoreflect.Value{}, &UnsupportedFieldKindError{Field: fd.FullName(), Kind: fd.Kind()}
}

// unboxEnum resolves an enum name to its number. Open enums also accept the
// decimal form of a number that has no name, which is how such numbers are
// boxed.
func unboxEnum(fd protoreflect.FieldDescriptor, v generic.Value) (protoreflect.EnumNumber, error) {
	if v.Kind() != generic.EnumKind {
		return 0, invalidState("field %s: expecting %s, got %s", fd.FullName(), generic.EnumKind, v.Kind())
	}
	ed := fd.Enum()
	name := v.Enum()
	if ev := ed.Values().ByName(protoreflect.Name(name)); ev != nil {
		return ev.Number(), nil
	}
	if !ed.IsClosed() {
		if n, err := strconv.ParseInt(name, 10, 32); err == nil {
			return protoreflect.EnumNumber(n), nil
		}
	}
	return 0, &UnknownEnumValueError{Field: fd.FullName(), Enum: ed.FullName(), Value: name}
}
