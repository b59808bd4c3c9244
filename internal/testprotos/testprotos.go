// Package testprotos provides schemas used by tests across this module. The
// schemas are compiled from source at test time, so every message is a
// dynamic message.
package testprotos

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jhump/protogeneric/protoresolve"
)

// ImageProto mirrors the image rotation service used to exercise the bridge
// end to end.
const ImageProto = `
syntax = "proto3";

package test;

message NestedImage {
  bytes data = 1;
  int32 width = 2;
  int32 height = 3;
  bool color = 4;
}

message ImageRotateRequest {
  enum Rotation {
    NONE = 0;
    NINETY_DEG = 1;
    ONE_EIGHTY_DEG = 2;
    TWO_SEVENTY_DEG = 3;
  }
  Rotation rotation = 1;
  NestedImage image = 2;
  repeated int32 intarr = 3;
  repeated NestedImage images = 4;
  optional string label = 5;
}

service ImageService {
  rpc Rotate(ImageRotateRequest) returns (ImageRotateRequest);
  rpc Split(ImageRotateRequest) returns (stream NestedImage);
  rpc Stack(stream NestedImage) returns (NestedImage);
  rpc Echo(stream NestedImage) returns (stream NestedImage);
}
`

// KitchenSinkProto has a field of every supported kind, with explicit
// presence for all singular fields.
const KitchenSinkProto = `
syntax = "proto2";

package test;

enum Color {
  RED = 0;
  GREEN = 1;
  BLUE = 2;
}

message Nested {
  optional string label = 1;
  repeated Color colors = 2;
}

message KitchenSink {
  optional int32 i32 = 1;
  optional sint32 s32 = 2;
  optional sfixed32 sf32 = 3;
  optional uint32 u32 = 4;
  optional fixed32 f32 = 5;
  optional int64 i64 = 6;
  optional sint64 s64 = 7;
  optional sfixed64 sf64 = 8;
  optional uint64 u64 = 9;
  optional fixed64 f64 = 10;
  optional float fl = 11;
  optional double db = 12;
  optional bool b = 13;
  optional string str = 14;
  optional bytes byt = 15;
  optional Color color = 16;
  optional Nested nested = 17;
  optional KitchenSink child = 18;

  repeated int32 r_i32 = 21;
  repeated uint32 r_u32 = 22;
  repeated int64 r_i64 = 23;
  repeated uint64 r_u64 = 24;
  repeated float r_fl = 25;
  repeated double r_db = 26;
  repeated bool r_b = 27;
  repeated string r_str = 28;
  repeated bytes r_byt = 29;
  repeated Color r_color = 30;
  repeated Nested r_nested = 31;

  map<string, int32> counts = 40;
  map<int32, Nested> by_id = 41;

  oneof choice {
    string name = 50;
    Nested other = 51;
  }
}
`

// GroupProto declares a field of the deprecated group kind.
const GroupProto = `
syntax = "proto2";

package test;

message WithGroup {
  optional int32 id = 1;
  optional group Data = 2 {
    optional string value = 3;
  }
}

message HasGroupChild {
  optional string name = 1;
  optional WithGroup child = 2;
}
`

// Sources maps file names to the schemas above.
var Sources = map[string]string{
	"test/image.proto":   ImageProto,
	"test/kitchen.proto": KitchenSinkProto,
	"test/group.proto":   GroupProto,
}

var (
	loadOnce sync.Once
	files    *protoregistry.Files
	loadErr  error
)

// Files compiles the test schemas. The result is shared by all callers.
func Files(t testing.TB) *protoregistry.Files {
	t.Helper()
	loadOnce.Do(func() {
		files, loadErr = protoresolve.Compile(context.Background(), protoresolve.CompileOptions{Sources: Sources},
			"test/image.proto", "test/kitchen.proto", "test/group.proto")
	})
	require.NoError(t, loadErr)
	return files
}

// Resolver returns a resolver for the test schemas.
func Resolver(t testing.TB) protoregistry.MessageTypeResolver {
	return protoresolve.FromFiles(Files(t))
}

// Message returns a new, empty dynamic message of the named test type.
func Message(t testing.TB, name protoreflect.FullName) *dynamicpb.Message {
	t.Helper()
	return dynamicpb.NewMessage(Descriptor(t, name))
}

// Descriptor returns the descriptor of the named test message type.
func Descriptor(t testing.TB, name protoreflect.FullName) protoreflect.MessageDescriptor {
	t.Helper()
	d, err := Files(t).FindDescriptorByName(name)
	require.NoError(t, err)
	md, ok := d.(protoreflect.MessageDescriptor)
	require.True(t, ok, "%s is not a message", name)
	return md
}

// Field returns the named field of the message's type.
func Field(t testing.TB, msg protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	t.Helper()
	fd := msg.Descriptor().Fields().ByName(name)
	require.NotNil(t, fd, "%s has no field %s", msg.Descriptor().FullName(), name)
	return fd
}

// Enum returns the value of the named enum value of the enum field fd.
func Enum(t testing.TB, fd protoreflect.FieldDescriptor, name protoreflect.Name) protoreflect.Value {
	t.Helper()
	ev := fd.Enum().Values().ByName(name)
	require.NotNil(t, ev, "%s has no value %s", fd.Enum().FullName(), name)
	return protoreflect.ValueOfEnum(ev.Number())
}
