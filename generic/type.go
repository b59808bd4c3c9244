package generic

import (
	"sync"
	"unsafe"
)

// Type describes the shape of a Value.
type Type interface {
	// Name returns a human-readable name for the type. For object types,
	// this is typically a fully-qualified schema name.
	Name() string
	// Kind returns the kind of values of this type.
	Kind() Kind
}

// ObjectType is implemented by types whose values are objects: ordered
// sets of named properties.
type ObjectType interface {
	Type
	// CreateObject returns a new, blank instance of this type.
	CreateObject() (Object, error)
	// Properties returns the ordered list of properties of this type. The
	// returned slice must not be mutated.
	Properties() ([]Property, error)
	// ListType returns the type of a list whose items are of this type.
	ListType() CollectionType
}

// CollectionType is implemented by types whose values are lists.
type CollectionType interface {
	Type
	// ItemType returns the type of the elements of the list.
	ItemType() Type
	// CreateObject returns a new, empty list.
	CreateObject() *List
	// AddItem appends the given item to the list. It returns an error if the
	// item is not assignable to the list's item type.
	AddItem(list *List, item Value) error
	// Size returns the number of items in the list.
	Size(list *List) int
	// Iterator returns an iterator over the items of the list.
	Iterator(list *List) *Iterator
}

// SlotStride is the distance between the offsets of two adjacent properties
// of an object type.
const SlotStride = unsafe.Sizeof(Value{})

// Property describes one slot of an object type.
type Property struct {
	// Index is the position of the property, starting at zero.
	Index int
	// Offset is the synthetic storage offset of the slot: Index * SlotStride.
	Offset uintptr
	// Name is the property's name.
	Name string
	// Type is the concrete type of values stored in the slot.
	Type Type
}

// NewProperty creates the property at the given index.
func NewProperty(index int, name string, typ Type) Property {
	return Property{
		Index:  index,
		Offset: uintptr(index) * SlotStride,
		Name:   name,
		Type:   typ,
	}
}

type scalarType struct {
	name string
	kind Kind
}

func (t *scalarType) Name() string { return t.name }
func (t *scalarType) Kind() Kind   { return t.kind }

// The predeclared scalar types.
var (
	StringType  Type = &scalarType{"string", StringKind}
	BytesType   Type = &scalarType{"bytes", BytesKind}
	Int32Type   Type = &scalarType{"int32", Int32Kind}
	Uint32Type  Type = &scalarType{"uint32", Uint32Kind}
	Int64Type   Type = &scalarType{"int64", Int64Kind}
	Uint64Type  Type = &scalarType{"uint64", Uint64Kind}
	Float32Type Type = &scalarType{"float32", Float32Kind}
	Float64Type Type = &scalarType{"float64", Float64Kind}
	BoolType    Type = &scalarType{"bool", BoolKind}
	EnumType    Type = &scalarType{"enum", EnumKind}
)

// ScalarType returns the predeclared type for the given scalar kind. It
// returns nil if k is not a scalar kind.
func ScalarType(k Kind) Type {
	switch k {
	case StringKind:
		return StringType
	case BytesKind:
		return BytesType
	case Int32Kind:
		return Int32Type
	case Uint32Kind:
		return Uint32Type
	case Int64Kind:
		return Int64Type
	case Uint64Kind:
		return Uint64Type
	case Float32Kind:
		return Float32Type
	case Float64Kind:
		return Float64Type
	case BoolKind:
		return BoolType
	case EnumKind:
		return EnumType
	default:
		return nil
	}
}

// listType is the CollectionType used for lists of scalars and for item
// types that do not provide their own list type.
type listType struct {
	item Type
	name string
}

var listTypes sync.Map // map[Type]*listType

// ListOf returns the collection type whose items are of the given type. If
// item is an ObjectType, its own ListType is returned. Otherwise the same
// instance is returned for every call with the same item type.
func ListOf(item Type) CollectionType {
	if ot, ok := item.(ObjectType); ok {
		return ot.ListType()
	}
	if lt, ok := listTypes.Load(item); ok {
		return lt.(*listType)
	}
	lt, _ := listTypes.LoadOrStore(item, &listType{item: item, name: "[]" + item.Name()})
	return lt.(*listType)
}

// NewListType returns a new collection type for the given item type. It is
// intended for ObjectType implementations; most callers want ListOf.
func NewListType(item Type) CollectionType {
	return &listType{item: item, name: "[]" + item.Name()}
}

func (t *listType) Name() string   { return t.name }
func (t *listType) Kind() Kind     { return ListKind }
func (t *listType) ItemType() Type { return t.item }

func (t *listType) CreateObject() *List {
	return NewList(t)
}

func (t *listType) AddItem(list *List, item Value) error {
	return list.Append(item)
}

func (t *listType) Size(list *List) int {
	return list.Len()
}

func (t *listType) Iterator(list *List) *Iterator {
	return list.Iterator()
}

// Assignable reports whether a value of type from can be stored in a slot
// of type to. Object and list types must be identical; scalar types only
// need to share a kind.
func Assignable(to, from Type) bool {
	if to == nil || from == nil {
		return false
	}
	if to == from {
		return true
	}
	if to.Kind() != from.Kind() {
		return false
	}
	switch to.Kind() {
	case ObjectKind:
		return to.Name() == from.Name()
	case ListKind:
		toList, ok1 := to.(CollectionType)
		fromList, ok2 := from.(CollectionType)
		return ok1 && ok2 && Assignable(toList.ItemType(), fromList.ItemType())
	default:
		return true
	}
}
