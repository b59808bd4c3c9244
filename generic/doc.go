// Package generic is a small, self-describing object model for values whose
// shape is only known at runtime.
//
// A [Value] is a tagged union over a closed set of kinds (see [Kind]): the
// scalar kinds, enum names, nested objects and lists. Every value carries a
// [Type], even when it is absent, so a codec walking a value always knows
// its static shape. An absent value is different from a present value that
// happens to be the zero value for its kind.
//
// Types come in three flavors. Scalar types are predeclared (StringType,
// Int32Type, and so on). Object types implement [ObjectType], which lets a
// codec construct blank instances and enumerate their properties. Collection
// types implement [CollectionType], which lets a codec build and iterate a
// [List].
//
// Codecs never need to know where object types come from. Statically typed
// values that want to be routed through this model implement [Interpreted]
// and expose one or more named [Interpretation] hooks; a codec enables
// interpretations per call by name.
package generic
