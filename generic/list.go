package generic

import (
	"errors"
	"fmt"
)

// ErrKindMismatch is returned when a value is stored somewhere that expects
// a value of a different type.
var ErrKindMismatch = errors.New("generic: value type mismatch")

// List is an ordered sequence of values that all have the list's item type.
type List struct {
	typ   CollectionType
	items []Value
}

// NewList creates an empty list of the given collection type.
func NewList(t CollectionType) *List {
	return &List{typ: t}
}

// Type returns the collection type of the list.
func (l *List) Type() CollectionType {
	return l.typ
}

// Len returns the number of items in the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Index returns the i-th item.
func (l *List) Index(i int) Value {
	return l.items[i]
}

// Append adds an item to the end of the list. Absent items are rejected:
// a list has no holes.
func (l *List) Append(v Value) error {
	if v.IsAbsent() {
		return fmt.Errorf("%w: cannot add absent value to %s", ErrKindMismatch, l.typ.Name())
	}
	if !Assignable(l.typ.ItemType(), v.Type()) {
		return fmt.Errorf("%w: cannot add %s to %s", ErrKindMismatch, v.Type().Name(), l.typ.Name())
	}
	l.items = append(l.items, v)
	return nil
}

// Values returns a copy of the items in the list.
func (l *List) Values() []Value {
	if l == nil {
		return nil
	}
	return append([]Value(nil), l.items...)
}

// Iterator returns a new iterator positioned before the first item.
func (l *List) Iterator() *Iterator {
	return &Iterator{list: l, pos: -1}
}

// Iterator is a forward iterator over a List. It is finite and can be
// restarted with Reset.
//
//	it := list.Iterator()
//	for it.Next() {
//		v := it.Value()
//		...
//	}
type Iterator struct {
	list *List
	pos  int
}

// Next advances the iterator. It returns false when there are no more items.
func (it *Iterator) Next() bool {
	if it.pos < it.list.Len() {
		it.pos++
	}
	return it.pos < it.list.Len()
}

// Value returns the item at the current position. It panics if Next has not
// been called since the iterator was created or reset, or if the last call to
// Next returned false.
func (it *Iterator) Value() Value {
	return it.list.items[it.pos]
}

// Reset moves the iterator back before the first item.
func (it *Iterator) Reset() {
	it.pos = -1
}
