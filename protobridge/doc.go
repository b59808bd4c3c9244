// Package protobridge connects statically typed (generated) messages to the
// generic object model.
//
// Wrapping a message in a Message makes it generic.Interpreted under the name
// "protobuf": a codec that has that interpretation enabled serializes the
// message by converting it to a generic object, and deserializes it by
// building a generic object and encoding it into a new message of the
// wrapped type.
package protobridge
