package protoresolve_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jhump/protogeneric/protoresolve"
)

const fooProto = `
syntax = "proto3";
package foo;
import "bar/bar.proto";
import "google/protobuf/duration.proto";
message Foo {
  bar.Bar bar = 1;
  google.protobuf.Duration timeout = 2;
  enum Mode { OFF = 0; ON = 1; }
}
`

const barProto = `
syntax = "proto3";
package bar;
message Bar { string name = 1; }
`

func compile(t *testing.T) *protoregistry.Files {
	t.Helper()
	files, err := protoresolve.Compile(context.Background(), protoresolve.CompileOptions{
		Sources: map[string]string{"foo.proto": fooProto, "bar/bar.proto": barProto},
	}, "foo.proto")
	require.NoError(t, err)
	return files
}

func TestCompile(t *testing.T) {
	files := compile(t)
	// foo.proto, its two imports, and nothing else
	require.Equal(t, 3, files.NumFiles())
	for _, path := range []string{"foo.proto", "bar/bar.proto", "google/protobuf/duration.proto"} {
		_, err := files.FindFileByPath(path)
		require.NoError(t, err, path)
	}
}

func TestCompile_FromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bar"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.proto"), []byte(fooProto), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bar", "bar.proto"), []byte(barProto), 0o644))

	files, err := protoresolve.Compile(context.Background(), protoresolve.CompileOptions{ImportPaths: []string{dir}}, "foo.proto")
	require.NoError(t, err)
	_, err = files.FindDescriptorByName("bar.Bar")
	require.NoError(t, err)

	// sources given in memory shadow the files on disk
	files, err = protoresolve.Compile(context.Background(), protoresolve.CompileOptions{
		ImportPaths: []string{dir},
		Sources:     map[string]string{"bar/bar.proto": "syntax = \"proto3\";\npackage bar;\nmessage Bar { int32 id = 1; }\n"},
	}, "foo.proto")
	require.NoError(t, err)
	d, err := files.FindDescriptorByName("bar.Bar")
	require.NoError(t, err)
	require.NotNil(t, d.(protoreflect.MessageDescriptor).Fields().ByName("id"))
}

func TestCompile_Errors(t *testing.T) {
	_, err := protoresolve.Compile(context.Background(), protoresolve.CompileOptions{})
	require.ErrorContains(t, err, "no files to compile")

	_, err = protoresolve.Compile(context.Background(), protoresolve.CompileOptions{
		Sources: map[string]string{"bad.proto": "syntax = \"proto3\";\nmessage {"},
	}, "bad.proto")
	require.Error(t, err)

	_, err = protoresolve.Compile(context.Background(), protoresolve.CompileOptions{
		Sources: map[string]string{"foo.proto": fooProto},
	}, "foo.proto")
	require.ErrorContains(t, err, "bar/bar.proto")
}

func TestFromFiles(t *testing.T) {
	res := protoresolve.FromFiles(compile(t))

	mt, err := res.FindMessageByName("foo.Foo")
	require.NoError(t, err)
	msg := mt.New()
	_, ok := msg.Interface().(*dynamicpb.Message)
	require.True(t, ok)
	require.Equal(t, protoreflect.FullName("bar.Bar"), msg.Descriptor().Fields().ByName("bar").Message().FullName())

	mt, err = res.FindMessageByURL("type.googleapis.com/bar.Bar")
	require.NoError(t, err)
	require.Equal(t, protoreflect.FullName("bar.Bar"), mt.Descriptor().FullName())

	_, err = res.FindMessageByName("foo.Foo.Mode")
	require.ErrorContains(t, err, "is an enum, not a message")

	_, err = res.FindMessageByName("foo.Nope")
	require.ErrorIs(t, err, protoregistry.NotFound)
}

func TestCombine(t *testing.T) {
	res := protoresolve.Combine(protoresolve.FromFiles(compile(t)), protoresolve.GlobalTypes)

	// found in the first resolver, so the type is dynamic
	mt, err := res.FindMessageByName("google.protobuf.Duration")
	require.NoError(t, err)
	_, ok := mt.New().Interface().(*dynamicpb.Message)
	require.True(t, ok)

	// only linked into the program
	mt, err = res.FindMessageByURL("type.googleapis.com/google.protobuf.FileDescriptorProto")
	require.NoError(t, err)
	_, ok = mt.New().Interface().(*descriptorpb.FileDescriptorProto)
	require.True(t, ok)

	_, err = res.FindMessageByName("foo.Nope")
	require.ErrorIs(t, err, protoregistry.NotFound)

	// errors other than NotFound stop the search
	_, err = res.FindMessageByName("foo.Foo.Mode")
	require.ErrorContains(t, err, "not a message")
}

func TestTypeNameFromURL(t *testing.T) {
	require.Equal(t, protoreflect.FullName("foo.Bar"), protoresolve.TypeNameFromURL("type.googleapis.com/foo.Bar"))
	require.Equal(t, protoreflect.FullName("foo.Bar"), protoresolve.TypeNameFromURL("example.com/a/b/foo.Bar"))
	require.Equal(t, protoreflect.FullName("foo.Bar"), protoresolve.TypeNameFromURL("foo.Bar"))
}
