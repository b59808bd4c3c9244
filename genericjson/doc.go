// Package genericjson serializes generic values as JSON.
//
// Objects are written as JSON objects with one member per property, in
// property order. Absent values are written as null (or omitted, see
// Config.OmitAbsent), bytes as standard base64 strings, enums as the names of
// their values, and non-finite floats as the strings "NaN", "Infinity" and
// "-Infinity". Decoding is driven by the expected generic type, so it needs
// no type information in the JSON itself.
//
// Statically typed values that implement generic.Interpreted are serialized
// through their generic form, but only when the relevant interpretation is
// listed in Config.EnableInterpretations.
package genericjson
