// Package protoobject converts protobuf messages to and from generic objects.
//
// A message is decoded into an *Object: one generic.Value per field, in the
// order the fields are declared. Singular fields that are not present decode
// to absent values, so that encoding the object back into a message restores
// exactly the fields that were set. Repeated fields decode to lists, maps
// decode to lists of key/value entry objects sorted by key, nested messages
// decode to nested objects, and enums decode to the names of their values.
//
// The shape of an object is described by its *Class, which is obtained from a
// *Registry. Classes implement generic.ObjectType, so code that only knows
// about the generic package (such as a serialization codec) can walk,
// create, and populate objects without any knowledge of protobuf.
//
// Groups are not supported: decoding or encoding a message that has a group
// field fails with an error that wraps ErrUnsupportedFieldKind.
package protoobject
