package protoobject

import (
	"github.com/jhump/protogeneric/generic"
)

// VectorClass is the collection type for lists of objects of one class. It
// is what a repeated message field is boxed as.
type VectorClass struct {
	class *Class
	name  string
}

var _ generic.CollectionType = (*VectorClass)(nil)

// Name returns the class name prefixed with "[]".
func (v *VectorClass) Name() string {
	return v.name
}

// Kind always returns generic.ListKind.
func (v *VectorClass) Kind() generic.Kind {
	return generic.ListKind
}

// Class returns the class of the list's items.
func (v *VectorClass) Class() *Class {
	return v.class
}

// ItemType returns the class of the list's items.
func (v *VectorClass) ItemType() generic.Type {
	return v.class
}

// CreateObject returns a new, empty list.
func (v *VectorClass) CreateObject() *generic.List {
	return generic.NewList(v)
}

// AddItem appends an object to the list. The item must be an object of the
// list's class.
func (v *VectorClass) AddItem(list *generic.List, item generic.Value) error {
	return list.Append(item)
}

// Size returns the number of objects in the list.
func (v *VectorClass) Size(list *generic.List) int {
	return list.Len()
}

// Iterator returns an iterator over the objects in the list.
func (v *VectorClass) Iterator(list *generic.List) *generic.Iterator {
	return list.Iterator()
}
