// Package protoresolve gives access to the schema runtime used when
// converting messages to and from the generic object model.
//
// The conversion core only ever needs one capability from the schema
// runtime: instantiate a blank message given a fully-qualified type name.
// That is expressed with [protoregistry.MessageTypeResolver], the same
// interface the core protobuf runtime uses for unmarshalling. This package
// provides implementations of it:
//   - GlobalTypes: generated types linked into the program.
//   - FromFiles: dynamic types (via dynamicpb) for every message in a
//     protoregistry.Files.
//   - Combine: layering of resolvers, the first one being preferred.
//
// It also provides Compile, which loads schemas from .proto source, so that
// messages whose Go types were never generated can still be converted.
package protoresolve
