package genericjson_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jhump/protogeneric/generic"
	"github.com/jhump/protogeneric/genericjson"
	"github.com/jhump/protogeneric/internal/testprotos"
	"github.com/jhump/protogeneric/protobridge"
	"github.com/jhump/protogeneric/protoobject"
)

const imageJSON = `{"rotation":"NINETY_DEG",` +
	`"image":{"data":"SGVsbG8gV29ybGQh","width":-1,"height":240,"color":null},` +
	`"intarr":[1,2,3],` +
	`"images":[{"data":"SGVsbG8gV29ybGQh","width":-1,"height":240,"color":null},` +
	`{"data":null,"width":320,"height":240,"color":null}],` +
	`"label":null}`

func newBridge(t *testing.T) *protobridge.Bridge {
	t.Helper()
	reg := protoobject.NewRegistry(protoobject.WithResolver(testprotos.Resolver(t)))
	return protobridge.New(protobridge.WithRegistry(reg))
}

func TestImageRequest_RoundTrip(t *testing.T) {
	b := newBridge(t)
	src := testprotos.ImageRequest(t)
	v, err := b.ToGeneric(src)
	require.NoError(t, err)

	data, err := genericjson.Marshal(v, nil)
	require.NoError(t, err)
	require.Equal(t, imageJSON, string(data))

	class := b.Registry().GetOrCreate("test.ImageRotateRequest")
	clone, err := genericjson.UnmarshalValue(data, class)
	require.NoError(t, err)
	dst := dynamicpb.NewMessage(src.Descriptor())
	require.NoError(t, b.FromGenericInto(clone, dst))
	require.True(t, proto.Equal(src, dst))

	// change the clone through its generic form and serialize it again
	image := clone.Object().(*protoobject.Object)
	nested, err := image.GetByName("image")
	require.NoError(t, err)
	require.NoError(t, nested.Object().(*protoobject.Object).SetByName("color", generic.BoolValue(true)))
	data, err = genericjson.Marshal(clone, &genericjson.Config{OmitAbsent: true})
	require.NoError(t, err)
	require.Contains(t, string(data), `"image":{"data":"SGVsbG8gV29ybGQh","width":-1,"height":240,"color":true}`)
	require.NotContains(t, string(data), "label")
	require.NotContains(t, string(data), "null")
}

func TestBeautified(t *testing.T) {
	v, err := newBridge(t).ToGeneric(testprotos.ImageRequest(t))
	require.NoError(t, err)
	data, err := genericjson.Marshal(v, &genericjson.Config{Indent: "  "})
	require.NoError(t, err)
	require.Contains(t, string(data), "{\n  \"rotation\": \"NINETY_DEG\",\n")

	again, err := genericjson.UnmarshalValue(data, v.Type())
	require.NoError(t, err)
	compact, err := genericjson.MarshalValue(again)
	require.NoError(t, err)
	require.Equal(t, imageJSON, string(compact))
}

func TestInterpretations(t *testing.T) {
	reg := protoobject.NewRegistry()
	src := &descriptorpb.EnumDescriptorProto{
		Name: proto.String("Rotation"),
		Value: []*descriptorpb.EnumValueDescriptorProto{
			{Name: proto.String("NONE"), Number: proto.Int32(0)},
			{Name: proto.String("NINETY_DEG"), Number: proto.Int32(1)},
		},
	}
	wrapped := protobridge.NewMessage(src, protobridge.WithRegistry(reg))

	_, err := genericjson.Marshal(wrapped, nil)
	require.ErrorIs(t, err, generic.ErrNoInterpretation)

	cfg := &genericjson.Config{
		EnableInterpretations: []string{"other", protobridge.InterpretationName},
		OmitAbsent:            true,
	}
	data, err := genericjson.Marshal(wrapped, cfg)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"name":"Rotation","value":[{"name":"NONE","number":0},{"name":"NINETY_DEG","number":1}],"reserved_range":[],"reserved_name":[]}`,
		string(data))

	clone := protobridge.NewMessage[*descriptorpb.EnumDescriptorProto](nil, protobridge.WithRegistry(reg))
	require.ErrorIs(t, genericjson.Unmarshal(data, clone, nil), generic.ErrNoInterpretation)
	require.NoError(t, genericjson.Unmarshal(data, clone, cfg))
	require.True(t, proto.Equal(src, clone.Get()))

	require.NoError(t, genericjson.Unmarshal([]byte("null"), clone, cfg))
	require.Nil(t, clone.Get())
}

func TestUnmarshal_Destinations(t *testing.T) {
	b := newBridge(t)
	class := b.Registry().GetOrCreate("test.NestedImage")

	v := generic.Absent(class)
	require.NoError(t, genericjson.Unmarshal([]byte(`{"width":3}`), &v, nil))
	require.Equal(t, int32(3), v.Object().Get(1).Int32())

	obj, err := class.NewObject()
	require.NoError(t, err)
	require.NoError(t, genericjson.Unmarshal([]byte(`{"height":4,"color":true}`), obj, nil))
	require.Equal(t, int32(4), obj.Get(2).Int32())
	require.True(t, obj.Get(3).Bool())
	require.ErrorIs(t, genericjson.Unmarshal([]byte(`null`), obj, nil), generic.ErrKindMismatch)

	var untyped generic.Value
	require.Error(t, genericjson.Unmarshal([]byte(`1`), &untyped, nil))
	require.Error(t, genericjson.Unmarshal([]byte(`1`), 42, nil))
}

func TestScalars(t *testing.T) {
	testCases := []struct {
		name string
		json string
		typ  generic.Type
		want generic.Value
	}{
		{"int32", `-5`, generic.Int32Type, generic.Int32Value(-5)},
		{"uint32", `4000000000`, generic.Uint32Type, generic.Uint32Value(4000000000)},
		{"int64 number", `-9007199254740993`, generic.Int64Type, generic.Int64Value(-9007199254740993)},
		{"int64 string", `"9223372036854775807"`, generic.Int64Type, generic.Int64Value(math.MaxInt64)},
		{"uint64 string", `"18446744073709551615"`, generic.Uint64Type, generic.Uint64Value(math.MaxUint64)},
		{"float32", `1.5`, generic.Float32Type, generic.Float32Value(1.5)},
		{"float64 infinity", `"-Infinity"`, generic.Float64Type, generic.Float64Value(math.Inf(-1))},
		{"bool", `false`, generic.BoolType, generic.BoolValue(false)},
		{"string", `"a\"bé"`, generic.StringType, generic.StringValue("a\"bé")},
		{"bytes", `"AAEC/w=="`, generic.BytesType, generic.BytesValue([]byte{0, 1, 2, 0xff})},
		{"bytes url-safe", `"AAEC_w=="`, generic.BytesType, generic.BytesValue([]byte{0, 1, 2, 0xff})},
		{"enum name", `"BLUE"`, generic.EnumType, generic.EnumValue("BLUE")},
		{"enum number", `7`, generic.EnumType, generic.EnumValue("7")},
		{"null", `null`, generic.Int32Type, generic.Absent(generic.Int32Type)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := genericjson.UnmarshalValue([]byte(tc.json), tc.typ)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestFloats(t *testing.T) {
	list := generic.ListOf(generic.Float64Type).CreateObject()
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0.25, 1e21} {
		require.NoError(t, list.Append(generic.Float64Value(f)))
	}
	data, err := genericjson.Marshal(list, nil)
	require.NoError(t, err)
	require.Equal(t, `["NaN","Infinity","-Infinity",0.25,1e+21]`, string(data))

	back, err := genericjson.UnmarshalValue(data, list.Type())
	require.NoError(t, err)
	require.True(t, math.IsNaN(back.List().Index(0).Float64()))
	require.Equal(t, math.Inf(1), back.List().Index(1).Float64())
	require.Equal(t, 1e21, back.List().Index(4).Float64())
}

func TestDecodeErrors(t *testing.T) {
	b := newBridge(t)
	class := b.Registry().GetOrCreate("test.ImageRotateRequest")

	_, err := genericjson.UnmarshalValue([]byte(`{"rotation":`), class)
	require.ErrorIs(t, err, genericjson.ErrSyntax)

	_, err = genericjson.UnmarshalValue([]byte(`{"images":[{},{"width":"wide"}]}`), class)
	var decErr *genericjson.DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, "images[1].width", decErr.Path)
	require.Equal(t, "int32", decErr.Type)

	_, err = genericjson.UnmarshalValue([]byte(`{"intarr":[1,null]}`), class)
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, "intarr[1]", decErr.Path)
	require.ErrorIs(t, err, generic.ErrKindMismatch)

	_, err = genericjson.UnmarshalValue([]byte(`{"width":1}`), class)
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, "", decErr.Path)

	v := generic.Absent(class)
	err = genericjson.Unmarshal([]byte(`{"width":1,"label":"x"}`), &v, &genericjson.Config{DiscardUnknown: true})
	require.NoError(t, err)
	require.Equal(t, "x", v.Object().Get(4).String())

	_, err = genericjson.UnmarshalValue([]byte(`{"intarr":{}}`), class)
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, "intarr", decErr.Path)

	_, err = genericjson.UnmarshalValue([]byte(`[]`), class)
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, "test.ImageRotateRequest", decErr.Type)
}
