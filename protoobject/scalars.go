package protoobject

import (
	"bytes"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protogeneric/generic"
)

// scalarConverter moves values of one scalar field kind between the
// protoreflect and generic representations.
type scalarConverter struct {
	typ   generic.Type
	box   func(protoreflect.Value) generic.Value
	unbox func(generic.Value) protoreflect.Value
}

var (
	int32Converter = &scalarConverter{
		typ: generic.Int32Type,
		box: func(v protoreflect.Value) generic.Value {
			return generic.Int32Value(int32(v.Int()))
		},
		unbox: func(v generic.Value) protoreflect.Value {
			return protoreflect.ValueOfInt32(v.Int32())
		},
	}
	uint32Converter = &scalarConverter{
		typ: generic.Uint32Type,
		box: func(v protoreflect.Value) generic.Value {
			return generic.Uint32Value(uint32(v.Uint()))
		},
		unbox: func(v generic.Value) protoreflect.Value {
			return protoreflect.ValueOfUint32(v.Uint32())
		},
	}
	int64Converter = &scalarConverter{
		typ: generic.Int64Type,
		box: func(v protoreflect.Value) generic.Value {
			return generic.Int64Value(v.Int())
		},
		unbox: func(v generic.Value) protoreflect.Value {
			return protoreflect.ValueOfInt64(v.Int64())
		},
	}
	uint64Converter = &scalarConverter{
		typ: generic.Uint64Type,
		box: func(v protoreflect.Value) generic.Value {
			return generic.Uint64Value(v.Uint())
		},
		unbox: func(v generic.Value) protoreflect.Value {
			return protoreflect.ValueOfUint64(v.Uint64())
		},
	}
	floatConverter = &scalarConverter{
		typ: generic.Float32Type,
		box: func(v protoreflect.Value) generic.Value {
			return generic.Float32Value(float32(v.Float()))
		},
		unbox: func(v generic.Value) protoreflect.Value {
			return protoreflect.ValueOfFloat32(v.Float32())
		},
	}
	doubleConverter = &scalarConverter{
		typ: generic.Float64Type,
		box: func(v protoreflect.Value) generic.Value {
			return generic.Float64Value(v.Float())
		},
		unbox: func(v generic.Value) protoreflect.Value {
			return protoreflect.ValueOfFloat64(v.Float64())
		},
	}
	boolConverter = &scalarConverter{
		typ: generic.BoolType,
		box: func(v protoreflect.Value) generic.Value {
			return generic.BoolValue(v.Bool())
		},
		unbox: func(v generic.Value) protoreflect.Value {
			return protoreflect.ValueOfBool(v.Bool())
		},
	}
	stringConverter = &scalarConverter{
		typ: generic.StringType,
		box: func(v protoreflect.Value) generic.Value {
			return generic.StringValue(v.String())
		},
		unbox: func(v generic.Value) protoreflect.Value {
			return protoreflect.ValueOfString(v.String())
		},
	}
	bytesConverter = &scalarConverter{
		typ: generic.BytesType,
		box: func(v protoreflect.Value) generic.Value {
			return generic.BytesValue(bytes.Clone(v.Bytes()))
		},
		unbox: func(v generic.Value) protoreflect.Value {
			return protoreflect.ValueOfBytes(bytes.Clone(v.Bytes()))
		},
	}
)

// scalarConverters is indexed by field kind. Enum, message and group kinds
// have no entry: they are handled separately.
var scalarConverters = [...]*scalarConverter{
	protoreflect.BoolKind:     boolConverter,
	protoreflect.Int32Kind:    int32Converter,
	protoreflect.Sint32Kind:   int32Converter,
	protoreflect.Sfixed32Kind: int32Converter,
	protoreflect.Uint32Kind:   uint32Converter,
	protoreflect.Fixed32Kind:  uint32Converter,
	protoreflect.Int64Kind:    int64Converter,
	protoreflect.Sint64Kind:   int64Converter,
	protoreflect.Sfixed64Kind: int64Converter,
	protoreflect.Uint64Kind:   uint64Converter,
	protoreflect.Fixed64Kind:  uint64Converter,
	protoreflect.FloatKind:    floatConverter,
	protoreflect.DoubleKind:   doubleConverter,
	protoreflect.StringKind:   stringConverter,
	protoreflect.BytesKind:    bytesConverter,
	protoreflect.EnumKind:     nil,
	protoreflect.MessageKind:  nil,
	protoreflect.GroupKind:    nil,
}

func scalarConverterFor(k protoreflect.Kind) *scalarConverter {
	if k < 0 || int(k) >= len(scalarConverters) {
		return nil
	}
	return scalarConverters[k]
}
