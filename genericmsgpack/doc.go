// Package genericmsgpack serializes generic values as msgpack.
//
// Objects are encoded as maps from property name to value, lists as arrays,
// bytes as bin, enums as the names of their values and absent values as nil.
// Integers use the most compact msgpack representation that holds them.
// Like genericjson, decoding is driven by the expected generic type.
package genericmsgpack
