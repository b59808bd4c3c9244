package grpcdynamic_test

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jhump/protogeneric/generic"
	"github.com/jhump/protogeneric/grpcdynamic"
	"github.com/jhump/protogeneric/internal/testprotos"
	"github.com/jhump/protogeneric/protoobject"
)

// imageService serves test.ImageService with dynamic messages:
//   - Rotate advances the rotation by one step;
//   - Split streams back the request's images;
//   - Stack replies with one image whose height is the sum of all heights;
//   - Echo sends back every image it receives.
func imageService(sd protoreflect.ServiceDescriptor) *grpc.ServiceDesc {
	rotate := sd.Methods().ByName("Rotate")
	split := sd.Methods().ByName("Split")
	stack := sd.Methods().ByName("Stack")
	req := rotate.Input()
	image := split.Output()
	return &grpc.ServiceDesc{
		ServiceName: string(sd.FullName()),
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: string(rotate.Name()),
			Handler: func(_ any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				msg := dynamicpb.NewMessage(req)
				if err := dec(msg); err != nil {
					return nil, err
				}
				fd := req.Fields().ByName("rotation")
				next := (msg.Get(fd).Enum() + 1) % protoreflect.EnumNumber(fd.Enum().Values().Len())
				msg.Set(fd, protoreflect.ValueOfEnum(next))
				return msg, nil
			},
		}},
		Streams: []grpc.StreamDesc{
			{
				StreamName:    string(split.Name()),
				ServerStreams: true,
				Handler: func(_ any, stream grpc.ServerStream) error {
					msg := dynamicpb.NewMessage(req)
					if err := stream.RecvMsg(msg); err != nil {
						return err
					}
					images := msg.Get(req.Fields().ByName("images")).List()
					for i := 0; i < images.Len(); i++ {
						if err := stream.SendMsg(images.Get(i).Message().Interface()); err != nil {
							return err
						}
					}
					return nil
				},
			},
			{
				StreamName:    string(stack.Name()),
				ClientStreams: true,
				Handler: func(_ any, stream grpc.ServerStream) error {
					height := image.Fields().ByName("height")
					var total int32
					for {
						msg := dynamicpb.NewMessage(image)
						err := stream.RecvMsg(msg)
						if err == io.EOF {
							break
						}
						if err != nil {
							return err
						}
						total += int32(msg.Get(height).Int())
					}
					resp := dynamicpb.NewMessage(image)
					resp.Set(height, protoreflect.ValueOfInt32(total))
					return stream.SendMsg(resp)
				},
			},
			{
				StreamName:    "Echo",
				ServerStreams: true,
				ClientStreams: true,
				Handler: func(_ any, stream grpc.ServerStream) error {
					for {
						msg := dynamicpb.NewMessage(image)
						err := stream.RecvMsg(msg)
						if err == io.EOF {
							return nil
						}
						if err != nil {
							return err
						}
						if err := stream.SendMsg(msg); err != nil {
							return err
						}
					}
				},
			},
		},
	}
}

type fixture struct {
	stub *grpcdynamic.Stub
	reg  *protoobject.Registry
	svc  protoreflect.ServiceDescriptor
}

func (f *fixture) method(t *testing.T, name protoreflect.Name) protoreflect.MethodDescriptor {
	t.Helper()
	md := f.svc.Methods().ByName(name)
	require.NotNil(t, md, "no method %s", name)
	return md
}

func (f *fixture) image(t *testing.T, width, height int32) *protoobject.Object {
	t.Helper()
	obj, err := f.reg.GetOrCreate("test.NestedImage").NewObject()
	require.NoError(t, err)
	require.NoError(t, obj.SetByName("width", generic.Int32Value(width)))
	require.NoError(t, obj.SetByName("height", generic.Int32Value(height)))
	return obj
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := testprotos.Files(t).FindDescriptorByName("test.ImageService")
	require.NoError(t, err)
	sd := d.(protoreflect.ServiceDescriptor)

	// Start up a server on an ephemeral port
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	svr := grpc.NewServer()
	svr.RegisterService(imageService(sd), struct{}{})
	go func() {
		_ = svr.Serve(l)
	}()
	t.Cleanup(svr.Stop)

	cc, err := grpc.NewClient(l.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cc.Close()
	})

	reg := protoobject.NewRegistry(protoobject.WithResolver(testprotos.Resolver(t)))
	return &fixture{
		stub: grpcdynamic.NewStub(cc, grpcdynamic.WithRegistry(reg)),
		reg:  reg,
		svc:  sd,
	}
}

func TestUnaryRpc(t *testing.T) {
	f := newFixture(t)
	req, err := f.reg.Decode(testprotos.ImageRequest(t))
	require.NoError(t, err)

	resp, err := f.stub.InvokeRpc(context.Background(), f.method(t, "Rotate"), req)
	require.NoError(t, err)
	require.Same(t, req.Class(), resp.Class())
	rotation, err := resp.GetByName("rotation")
	require.NoError(t, err)
	require.Equal(t, "ONE_EIGHTY_DEG", rotation.Enum())
	images, err := resp.GetByName("images")
	require.NoError(t, err)
	require.Equal(t, 2, images.List().Len())

	// the request object is not modified
	rotation, err = req.GetByName("rotation")
	require.NoError(t, err)
	require.Equal(t, "NINETY_DEG", rotation.Enum())
}

func TestUnaryRpc_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stub.InvokeRpc(ctx, f.method(t, "Rotate"), f.image(t, 1, 2))
	require.ErrorContains(t, err, "expecting object of class test.ImageRotateRequest; got test.NestedImage")

	_, err = f.stub.InvokeRpc(ctx, f.method(t, "Rotate"), nil)
	require.Error(t, err)

	req, err := f.reg.Decode(testprotos.ImageRequest(t))
	require.NoError(t, err)
	_, err = f.stub.InvokeRpc(ctx, f.method(t, "Split"), req)
	require.ErrorContains(t, err, "is server-streaming")

	require.NoError(t, req.SetByName("rotation", generic.EnumValue("FORTY_FIVE_DEG")))
	_, err = f.stub.InvokeRpc(ctx, f.method(t, "Rotate"), req)
	require.ErrorIs(t, err, protoobject.ErrUnknownEnumValue)
}

func TestServerStreamingRpc(t *testing.T) {
	f := newFixture(t)
	req, err := f.reg.Decode(testprotos.ImageRequest(t))
	require.NoError(t, err)

	ss, err := f.stub.InvokeRpcServerStream(context.Background(), f.method(t, "Split"), req)
	require.NoError(t, err)
	var widths []int32
	for {
		obj, err := ss.RecvObject()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Equal(t, "test.NestedImage", obj.Class().Name())
		width, err := obj.GetByName("width")
		require.NoError(t, err)
		widths = append(widths, width.Int32())
	}
	require.Equal(t, []int32{-1, 320}, widths)

	_, err = f.stub.InvokeRpcServerStream(context.Background(), f.method(t, "Rotate"), req)
	require.ErrorContains(t, err, "is unary")
}

func TestClientStreamingRpc(t *testing.T) {
	f := newFixture(t)
	cs, err := f.stub.InvokeRpcClientStream(context.Background(), f.method(t, "Stack"))
	require.NoError(t, err)
	for i := int32(1); i <= 3; i++ {
		require.NoError(t, cs.SendObject(f.image(t, 10, i*10)))
	}
	resp, err := cs.CloseAndReceive()
	require.NoError(t, err)
	height, err := resp.GetByName("height")
	require.NoError(t, err)
	require.Equal(t, int32(60), height.Int32())
	width, err := resp.GetByName("width")
	require.NoError(t, err)
	require.True(t, width.IsAbsent())

	_, err = f.stub.InvokeRpcClientStream(context.Background(), f.method(t, "Echo"))
	require.ErrorContains(t, err, "is bidi-streaming")
}

func TestBidiStreamingRpc(t *testing.T) {
	f := newFixture(t)
	bds, err := f.stub.InvokeRpcBidiStream(context.Background(), f.method(t, "Echo"))
	require.NoError(t, err)
	for i := int32(1); i <= 3; i++ {
		require.NoError(t, bds.SendObject(f.image(t, i, -i)))
		resp, err := bds.RecvObject()
		require.NoError(t, err)
		width, err := resp.GetByName("width")
		require.NoError(t, err)
		require.Equal(t, i, width.Int32())
	}
	require.NoError(t, bds.CloseSend())
	_, err = bds.RecvObject()
	require.Equal(t, io.EOF, err)

	_, err = f.stub.InvokeRpcBidiStream(context.Background(), f.method(t, "Stack"))
	require.ErrorContains(t, err, "is client-streaming")
}
