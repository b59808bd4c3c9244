package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jhump/protogeneric/internal/testprotos"
	"github.com/jhump/protogeneric/protoobject"
)

const imageJSON = `{"rotation":"NINETY_DEG",` +
	`"image":{"data":"SGVsbG8gV29ybGQh","width":-1,"height":240,"color":null},` +
	`"intarr":[1,2,3],` +
	`"images":[{"data":"SGVsbG8gV29ybGQh","width":-1,"height":240,"color":null},` +
	`{"data":null,"width":320,"height":240,"color":null}],` +
	`"label":null}`

// run executes protoconv with the given arguments and stdin and returns
// what it wrote to stdout.
func run(t *testing.T, logger *zap.Logger, stdin []byte, args ...string) ([]byte, error) {
	t.Helper()
	cmd := newRootCommand(logger)
	var out bytes.Buffer
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

func writeSchema(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.proto"), []byte(testprotos.ImageProto), 0o644))
	return dir
}

func TestToJSON(t *testing.T) {
	dir := writeSchema(t)
	bin, err := proto.Marshal(testprotos.ImageRequest(t))
	require.NoError(t, err)

	out, err := run(t, nil, bin, "to-json", "-I", dir, "--proto", "image.proto", "--type", "test.ImageRotateRequest")
	require.NoError(t, err)
	require.Equal(t, imageJSON+"\n", string(out))

	out, err = run(t, nil, bin, "to-json", "-I", dir, "--proto", "image.proto", "-t", "test.ImageRotateRequest",
		"--omit-absent", "--indent", "\t")
	require.NoError(t, err)
	require.Contains(t, string(out), "{\n\t\"rotation\": \"NINETY_DEG\",\n")
	require.NotContains(t, string(out), "null")
}

func TestFromJSON(t *testing.T) {
	dir := writeSchema(t)
	out, err := run(t, nil, []byte(imageJSON), "from-json", "-I", dir, "--proto", "image.proto", "--type", "test.ImageRotateRequest")
	require.NoError(t, err)

	want := testprotos.ImageRequest(t)
	got := dynamicpb.NewMessage(want.Descriptor())
	require.NoError(t, proto.Unmarshal(out, got))
	require.True(t, proto.Equal(want, got))

	out, err = run(t, nil, []byte("null"), "from-json", "-I", dir, "--proto", "image.proto", "--type", "test.ImageRotateRequest")
	require.NoError(t, err)
	require.Empty(t, out)

	_, err = run(t, nil, []byte(`{"size":1}`), "from-json", "-I", dir, "--proto", "image.proto", "--type", "test.NestedImage")
	require.ErrorContains(t, err, `no property "size"`)
	out, err = run(t, nil, []byte(`{"size":1,"width":2}`), "from-json", "-I", dir, "--proto", "image.proto",
		"--type", "test.NestedImage", "--discard-unknown")
	require.NoError(t, err)
	require.Equal(t, []byte{0x10, 0x02}, out)
}

func TestMsgpack(t *testing.T) {
	dir := writeSchema(t)
	want := testprotos.ImageRequest(t)
	bin, err := proto.Marshal(want)
	require.NoError(t, err)

	packed, err := run(t, nil, bin, "to-msgpack", "-I", dir, "--proto", "image.proto", "--type", "test.ImageRotateRequest")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, msgpack.Unmarshal(packed, &decoded))
	require.Equal(t, "NINETY_DEG", decoded["rotation"])

	out, err := run(t, nil, packed, "from-msgpack", "-I", dir, "--proto", "image.proto", "--type", "test.ImageRotateRequest")
	require.NoError(t, err)
	got := dynamicpb.NewMessage(want.Descriptor())
	require.NoError(t, proto.Unmarshal(out, got))
	require.True(t, proto.Equal(want, got))
}

func TestLinkedTypes(t *testing.T) {
	src := &descriptorpb.EnumValueDescriptorProto{Name: proto.String("NONE"), Number: proto.Int32(0)}
	bin, err := proto.Marshal(src)
	require.NoError(t, err)

	out, err := run(t, nil, bin, "to-json", "--type", "google.protobuf.EnumValueDescriptorProto", "--omit-absent")
	require.NoError(t, err)
	require.Equal(t, `{"name":"NONE","number":0}`+"\n", string(out))
}

func TestErrors(t *testing.T) {
	dir := writeSchema(t)

	_, err := run(t, nil, nil, "to-json", "-I", dir, "--proto", "image.proto")
	require.ErrorContains(t, err, "--type is required")

	_, err = run(t, nil, nil, "to-json", "-I", dir, "--proto", "image.proto", "--type", "test.Missing")
	require.ErrorIs(t, err, protoobject.ErrSchemaNotFound)

	_, err = run(t, nil, nil, "to-json", "-I", dir, "--proto", "missing.proto", "--type", "test.NestedImage")
	require.Error(t, err)

	_, err = run(t, nil, []byte{0xff}, "to-json", "-I", dir, "--proto", "image.proto", "--type", "test.NestedImage")
	require.ErrorContains(t, err, "failed to parse test.NestedImage")

	_, err = run(t, nil, []byte(`{"rotation":"SIDEWAYS"}`), "from-json", "-I", dir, "--proto", "image.proto",
		"--type", "test.ImageRotateRequest")
	require.ErrorIs(t, err, protoobject.ErrUnknownEnumValue)

	_, err = run(t, nil, nil, "to-json", "extra", "--type", "test.NestedImage")
	require.Error(t, err)
}

func TestLogging(t *testing.T) {
	dir := writeSchema(t)
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := run(t, zap.New(core), []byte(`{"width":2}`), "from-json", "-I", dir, "--proto", "image.proto",
		"--type", "test.NestedImage")
	require.NoError(t, err)

	require.Equal(t, 1, logs.FilterMessage("compiled schema").Len())
	converted := logs.FilterMessage("converted message").All()
	require.Len(t, converted, 1)
	fields := converted[0].ContextMap()
	require.Equal(t, "test.NestedImage", fields["class"])
	require.Equal(t, "json", fields["format"])
	require.EqualValues(t, 2, fields["out"])
	require.Equal(t, 1, logs.FilterMessage("created class").FilterField(zap.String("class", "test.NestedImage")).Len())
}

func TestEnvDefaults(t *testing.T) {
	dir := writeSchema(t)
	t.Setenv("PROTOCONV_IMPORT_PATH", "/does/not/exist:"+dir)
	t.Setenv("PROTOCONV_PROTO", "image.proto")

	out, err := run(t, nil, []byte{0x10, 0x02}, "to-json", "--type", "test.NestedImage", "--omit-absent")
	require.NoError(t, err)
	require.Equal(t, `{"width":2}`+"\n", string(out))

	// flags take precedence
	_, err = run(t, nil, nil, "to-json", "--proto", "missing.proto", "--type", "test.NestedImage")
	require.Error(t, err)

	t.Setenv("PROTOCONV_VERBOSE", "maybe")
	_, err = run(t, nil, nil, "to-json", "--type", "test.NestedImage")
	require.ErrorContains(t, err, "parse env")
}
