package protoobject

import (
	"cmp"
	"slices"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jhump/protogeneric/generic"
)

func (r *Registry) decodeMessage(c *Class, msg protoreflect.Message) (*Object, error) {
	fields := msg.Descriptor().Fields()
	values := make([]generic.Value, fields.Len())
	for i := range values {
		v, err := r.decodeField(msg, fields.Get(i))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &Object{class: c, values: values}, nil
}

func (r *Registry) decodeField(msg protoreflect.Message, fd protoreflect.FieldDescriptor) (generic.Value, error) {
	switch {
	case fd.IsMap():
		return r.decodeMap(msg, fd)
	case fd.IsList():
		lt, err := r.listType(msg, fd)
		if err != nil {
			return generic.Value{}, err
		}
		list := lt.CreateObject()
		src := msg.Get(fd).List()
		for i, length := 0, src.Len(); i < length; i++ {
			v, err := r.box(msg, fd, src.Get(i))
			if err != nil {
				return generic.Value{}, err
			}
			if err := lt.AddItem(list, v); err != nil {
				return generic.Value{}, invalidState("field %s: %v", fd.FullName(), err)
			}
		}
		return generic.ListValue(list), nil
	case !msg.Has(fd):
		t, err := r.elementType(msg, fd)
		if err != nil {
			return generic.Value{}, err
		}
		return generic.Absent(t), nil
	default:
		return r.box(msg, fd, msg.Get(fd))
	}
}

// box converts a single (non-list, non-map) value of the given field.
func (r *Registry) box(msg protoreflect.Message, fd protoreflect.FieldDescriptor, v protoreflect.Value) (generic.Value, error) {
	if conv := scalarConverterFor(fd.Kind()); conv != nil {
		return conv.box(v), nil
	}
	switch fd.Kind() {
	case protoreflect.EnumKind:
		return boxEnum(fd, v.Enum()), nil
	case protoreflect.MessageKind:
		sub := v.Message()
		return r.decodeNested(r.classFor(fd.Message(), sub.Type), sub)
	default:
		return generic.Value{}, &UnsupportedFieldKindError{Field: fd.FullName(), Kind: fd.Kind()}
	}
}

func (r *Registry) decodeNested(c *Class, msg protoreflect.Message) (generic.Value, error) {
	obj, err := r.decodeMessage(c, msg)
	if err != nil {
		return generic.Value{}, err
	}
	return generic.ObjectValue(obj), nil
}

// boxEnum boxes an enum number as the name of its value. Numbers that have
// no name in the enum (possible for open enums) are boxed as their decimal
// representation.
func boxEnum(fd protoreflect.FieldDescriptor, num protoreflect.EnumNumber) generic.Value {
	if ev := fd.Enum().Values().ByNumber(num); ev != nil {
		return generic.EnumValue(string(ev.Name()))
	}
	return generic.EnumValue(strconv.FormatInt(int64(num), 10))
}

// elementType returns the generic type of one value of the given field,
// ignoring cardinality.
func (r *Registry) elementType(msg protoreflect.Message, fd protoreflect.FieldDescriptor) (generic.Type, error) {
	if conv := scalarConverterFor(fd.Kind()); conv != nil {
		return conv.typ, nil
	}
	switch fd.Kind() {
	case protoreflect.EnumKind:
		return generic.EnumType, nil
	case protoreflect.MessageKind:
		return r.fieldClass(msg, fd), nil
	default:
		return nil, &UnsupportedFieldKindError{Field: fd.FullName(), Kind: fd.Kind()}
	}
}

// fieldClass returns the class of a message-typed field. For maps, that is
// the class of the map entry.
func (r *Registry) fieldClass(msg protoreflect.Message, fd protoreflect.FieldDescriptor) *Class {
	return r.classFor(fd.Message(), func() protoreflect.MessageType {
		switch {
		case fd.IsMap():
			return dynamicpb.NewMessageType(fd.Message())
		case fd.IsList():
			return msg.NewField(fd).List().NewElement().Message().Type()
		default:
			return msg.NewField(fd).Message().Type()
		}
	})
}

func (r *Registry) listType(msg protoreflect.Message, fd protoreflect.FieldDescriptor) (generic.CollectionType, error) {
	if fd.IsMap() {
		return r.fieldClass(msg, fd).VectorType(), nil
	}
	t, err := r.elementType(msg, fd)
	if err != nil {
		return nil, err
	}
	return generic.ListOf(t), nil
}

// decodeMap boxes a map field as a list of entry objects, with two slots
// each: key and value. Entries are sorted by key.
func (r *Registry) decodeMap(msg protoreflect.Message, fd protoreflect.FieldDescriptor) (generic.Value, error) {
	entryClass := r.fieldClass(msg, fd)
	keyField, valField := fd.MapKey(), fd.MapValue()
	list := entryClass.VectorType().CreateObject()
	src := msg.Get(fd).Map()
	keys := make([]protoreflect.MapKey, 0, src.Len())
	src.Range(func(k protoreflect.MapKey, _ protoreflect.Value) bool {
		keys = append(keys, k)
		return true
	})
	sortMapKeys(keyField.Kind(), keys)
	for _, k := range keys {
		key, err := r.box(msg, keyField, k.Value())
		if err != nil {
			return generic.Value{}, err
		}
		val, err := r.boxMapValue(valField, src.Get(k))
		if err != nil {
			return generic.Value{}, err
		}
		entry := &Object{class: entryClass, values: []generic.Value{key, val}}
		if err := list.Append(generic.ObjectValue(entry)); err != nil {
			return generic.Value{}, invalidState("field %s: %v", fd.FullName(), err)
		}
	}
	return generic.ListValue(list), nil
}

func (r *Registry) boxMapValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) (generic.Value, error) {
	if fd.Kind() == protoreflect.MessageKind {
		sub := v.Message()
		return r.decodeNested(r.classFor(fd.Message(), sub.Type), sub)
	}
	return r.box(nil, fd, v)
}

func sortMapKeys(kind protoreflect.Kind, keys []protoreflect.MapKey) {
	slices.SortFunc(keys, func(a, b protoreflect.MapKey) int {
		switch kind {
		case protoreflect.BoolKind:
			switch {
			case a.Bool() == b.Bool():
				return 0
			case !a.Bool():
				return -1
			default:
				return 1
			}
		case protoreflect.StringKind:
			return cmp.Compare(a.String(), b.String())
		case protoreflect.Uint32Kind, protoreflect.Fixed32Kind, protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
			return cmp.Compare(a.Uint(), b.Uint())
		default:
			return cmp.Compare(a.Int(), b.Int())
		}
	})
}
