package testprotos

import (
	"testing"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ImageRequest builds the image rotation request used throughout the tests:
// rotation NINETY_DEG, a nested image, three ints and two repeated images.
func ImageRequest(t testing.TB) *dynamicpb.Message {
	t.Helper()
	msg := Message(t, "test.ImageRotateRequest")
	msg.Set(Field(t, msg, "rotation"), Enum(t, Field(t, msg, "rotation"), "NINETY_DEG"))

	image := msg.Mutable(Field(t, msg, "image")).Message()
	image.Set(Field(t, image, "data"), protoreflect.ValueOfBytes([]byte("Hello World!")))
	image.Set(Field(t, image, "width"), protoreflect.ValueOfInt32(-1))
	image.Set(Field(t, image, "height"), protoreflect.ValueOfInt32(240))

	ints := msg.Mutable(Field(t, msg, "intarr")).List()
	for _, i := range []int32{1, 2, 3} {
		ints.Append(protoreflect.ValueOfInt32(i))
	}

	images := msg.Mutable(Field(t, msg, "images")).List()
	first := images.NewElement()
	first.Message().Set(Field(t, image, "width"), protoreflect.ValueOfInt32(-1))
	first.Message().Set(Field(t, image, "height"), protoreflect.ValueOfInt32(240))
	first.Message().Set(Field(t, image, "data"), protoreflect.ValueOfBytes([]byte("Hello World!")))
	images.Append(first)
	second := images.NewElement()
	second.Message().Set(Field(t, image, "width"), protoreflect.ValueOfInt32(320))
	second.Message().Set(Field(t, image, "height"), protoreflect.ValueOfInt32(240))
	images.Append(second)
	return msg
}

// KitchenSink builds a message with every kind of field populated.
func KitchenSink(t testing.TB) *dynamicpb.Message {
	t.Helper()
	msg := Message(t, "test.KitchenSink")
	set := func(name protoreflect.Name, v protoreflect.Value) {
		msg.Set(Field(t, msg, name), v)
	}
	set("i32", protoreflect.ValueOfInt32(-32))
	set("s32", protoreflect.ValueOfInt32(-33))
	set("sf32", protoreflect.ValueOfInt32(-34))
	set("u32", protoreflect.ValueOfUint32(32))
	set("f32", protoreflect.ValueOfUint32(33))
	set("i64", protoreflect.ValueOfInt64(-1<<40))
	set("s64", protoreflect.ValueOfInt64(-1<<41))
	set("sf64", protoreflect.ValueOfInt64(-1<<42))
	set("u64", protoreflect.ValueOfUint64(1<<63))
	set("f64", protoreflect.ValueOfUint64(1<<62))
	set("fl", protoreflect.ValueOfFloat32(1.5))
	set("db", protoreflect.ValueOfFloat64(-2.25))
	set("b", protoreflect.ValueOfBool(true))
	set("str", protoreflect.ValueOfString("hello"))
	set("byt", protoreflect.ValueOfBytes([]byte{0, 1, 2, 0xff}))
	set("color", Enum(t, Field(t, msg, "color"), "BLUE"))

	nested := msg.Mutable(Field(t, msg, "nested")).Message()
	nested.Set(Field(t, nested, "label"), protoreflect.ValueOfString("inner"))
	colors := nested.Mutable(Field(t, nested, "colors")).List()
	colors.Append(Enum(t, Field(t, nested, "colors"), "GREEN"))
	colors.Append(Enum(t, Field(t, nested, "colors"), "RED"))

	child := msg.Mutable(Field(t, msg, "child")).Message()
	child.Set(Field(t, child, "str"), protoreflect.ValueOfString("child"))
	child.Set(Field(t, child, "i32"), protoreflect.ValueOfInt32(0))

	appendAll := func(name protoreflect.Name, vals ...protoreflect.Value) {
		list := msg.Mutable(Field(t, msg, name)).List()
		for _, v := range vals {
			list.Append(v)
		}
	}
	appendAll("r_i32", protoreflect.ValueOfInt32(1), protoreflect.ValueOfInt32(-2))
	appendAll("r_u32", protoreflect.ValueOfUint32(3))
	appendAll("r_i64", protoreflect.ValueOfInt64(-4))
	appendAll("r_u64", protoreflect.ValueOfUint64(5))
	appendAll("r_fl", protoreflect.ValueOfFloat32(0.5))
	appendAll("r_db", protoreflect.ValueOfFloat64(0.25), protoreflect.ValueOfFloat64(0))
	appendAll("r_b", protoreflect.ValueOfBool(false), protoreflect.ValueOfBool(true))
	appendAll("r_str", protoreflect.ValueOfString(""), protoreflect.ValueOfString("x"))
	appendAll("r_byt", protoreflect.ValueOfBytes([]byte("y")))
	appendAll("r_color", Enum(t, Field(t, msg, "r_color"), "RED"), Enum(t, Field(t, msg, "r_color"), "BLUE"))

	rNested := msg.Mutable(Field(t, msg, "r_nested")).List()
	elem := rNested.NewElement()
	elem.Message().Set(Field(t, nested, "label"), protoreflect.ValueOfString("first"))
	rNested.Append(elem)
	rNested.Append(rNested.NewElement())

	counts := msg.Mutable(Field(t, msg, "counts")).Map()
	counts.Set(protoreflect.ValueOfString("a").MapKey(), protoreflect.ValueOfInt32(1))
	counts.Set(protoreflect.ValueOfString("b").MapKey(), protoreflect.ValueOfInt32(2))

	byID := msg.Mutable(Field(t, msg, "by_id")).Map()
	entry := byID.NewValue()
	entry.Message().Set(Field(t, nested, "label"), protoreflect.ValueOfString("seven"))
	byID.Set(protoreflect.ValueOfInt32(7).MapKey(), entry)

	set("name", protoreflect.ValueOfString("chosen"))
	return msg
}
