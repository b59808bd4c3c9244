// Package grpcdynamic provides an RPC stub that sends and receives generic
// objects. It can be used to invoke RPC methods where only method descriptors
// are known: request objects are encoded into messages of the method's input
// type, and response messages are decoded into objects.
package grpcdynamic

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jhump/protogeneric/protoobject"
)

// Stub is an RPC client stub, used for dynamically dispatching RPCs to a server.
type Stub struct {
	channel grpc.ClientConnInterface
	reg     *protoobject.Registry
}

// NewStub creates a new RPC stub that uses the given channel for dispatching RPCs.
func NewStub(channel grpc.ClientConnInterface, opts ...StubOption) *Stub {
	stub := &Stub{channel: channel, reg: protoobject.Global}
	for _, opt := range opts {
		opt.apply(stub)
	}
	return stub
}

// StubOption is an option that can be used to customize behavior when creating a Stub.
type StubOption interface {
	apply(*Stub)
}

type stubOptionFunc func(*Stub)

func (s stubOptionFunc) apply(stub *Stub) {
	s(stub)
}

// WithRegistry returns a StubOption that causes a Stub to use the given
// registry for the classes of request and response objects. If not specified,
// protoobject.Global is used.
func WithRegistry(reg *protoobject.Registry) StubOption {
	return stubOptionFunc(func(s *Stub) {
		s.reg = reg
	})
}

func requestMethod(md protoreflect.MethodDescriptor) string {
	return fmt.Sprintf("/%s/%s", md.Parent().FullName(), md.Name())
}

// InvokeRpc sends a unary RPC and returns the response. Use this for unary methods.
func (s *Stub) InvokeRpc(ctx context.Context, method protoreflect.MethodDescriptor, request *protoobject.Object, opts ...grpc.CallOption) (*protoobject.Object, error) {
	if method.IsStreamingClient() || method.IsStreamingServer() {
		return nil, fmt.Errorf("InvokeRpc is for unary methods; %q is %s", method.FullName(), methodType(method))
	}
	req, err := s.encode(method.Input(), request)
	if err != nil {
		return nil, err
	}
	resp, err := s.newMessage(method.Output())
	if err != nil {
		return nil, err
	}
	if err := s.channel.Invoke(ctx, requestMethod(method), req.Interface(), resp.Interface(), opts...); err != nil {
		return nil, err
	}
	return s.reg.Decode(resp)
}

// InvokeRpcServerStream sends a unary RPC and returns the response stream. Use this for server-streaming methods.
func (s *Stub) InvokeRpcServerStream(ctx context.Context, method protoreflect.MethodDescriptor, request *protoobject.Object, opts ...grpc.CallOption) (*ServerStream, error) {
	if method.IsStreamingClient() || !method.IsStreamingServer() {
		return nil, fmt.Errorf("InvokeRpcServerStream is for server-streaming methods; %q is %s", method.FullName(), methodType(method))
	}
	req, err := s.encode(method.Input(), request)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	cs, err := s.channel.NewStream(ctx, streamDesc(method), requestMethod(method), opts...)
	if err != nil {
		cancel()
		return nil, err
	}
	if err := cs.SendMsg(req.Interface()); err != nil {
		cancel()
		return nil, err
	}
	if err := cs.CloseSend(); err != nil {
		cancel()
		return nil, err
	}
	go func() {
		// when the new stream is finished, also cleanup the parent context
		<-cs.Context().Done()
		cancel()
	}()
	return &ServerStream{stream: cs, respType: method.Output(), stub: s}, nil
}

// InvokeRpcClientStream creates a new stream that is used to send request objects and, at the end,
// receive the response object. Use this for client-streaming methods.
func (s *Stub) InvokeRpcClientStream(ctx context.Context, method protoreflect.MethodDescriptor, opts ...grpc.CallOption) (*ClientStream, error) {
	if !method.IsStreamingClient() || method.IsStreamingServer() {
		return nil, fmt.Errorf("InvokeRpcClientStream is for client-streaming methods; %q is %s", method.FullName(), methodType(method))
	}
	ctx, cancel := context.WithCancel(ctx)
	cs, err := s.channel.NewStream(ctx, streamDesc(method), requestMethod(method), opts...)
	if err != nil {
		cancel()
		return nil, err
	}
	go func() {
		<-cs.Context().Done()
		cancel()
	}()
	return &ClientStream{stream: cs, method: method, stub: s, cancel: cancel}, nil
}

// InvokeRpcBidiStream creates a new stream that is used to both send request objects and receive response
// objects. Use this for bidi-streaming methods.
func (s *Stub) InvokeRpcBidiStream(ctx context.Context, method protoreflect.MethodDescriptor, opts ...grpc.CallOption) (*BidiStream, error) {
	if !method.IsStreamingClient() || !method.IsStreamingServer() {
		return nil, fmt.Errorf("InvokeRpcBidiStream is for bidi-streaming methods; %q is %s", method.FullName(), methodType(method))
	}
	cs, err := s.channel.NewStream(ctx, streamDesc(method), requestMethod(method), opts...)
	if err != nil {
		return nil, err
	}
	return &BidiStream{stream: cs, reqType: method.Input(), respType: method.Output(), stub: s}, nil
}

func streamDesc(md protoreflect.MethodDescriptor) *grpc.StreamDesc {
	return &grpc.StreamDesc{
		StreamName:    string(md.Name()),
		ServerStreams: md.IsStreamingServer(),
		ClientStreams: md.IsStreamingClient(),
	}
}

func methodType(md protoreflect.MethodDescriptor) string {
	switch {
	case md.IsStreamingClient() && md.IsStreamingServer():
		return "bidi-streaming"
	case md.IsStreamingClient():
		return "client-streaming"
	case md.IsStreamingServer():
		return "server-streaming"
	default:
		return "unary"
	}
}

// newMessage returns an empty message of the given type, using the type the
// registry already knows for it when there is one.
func (s *Stub) newMessage(md protoreflect.MessageDescriptor) (protoreflect.Message, error) {
	return s.reg.ClassForDescriptor(md).NewMessage()
}

func (s *Stub) encode(md protoreflect.MessageDescriptor, obj *protoobject.Object) (protoreflect.Message, error) {
	if obj == nil {
		return nil, fmt.Errorf("request for %s must not be nil", md.FullName())
	}
	if obj.Class().FullName() != md.FullName() {
		return nil, fmt.Errorf("expecting object of class %s; got %s", md.FullName(), obj.Class().FullName())
	}
	msg, err := s.newMessage(md)
	if err != nil {
		return nil, err
	}
	if err := s.reg.Encode(obj, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Stub) recv(stream grpc.ClientStream, md protoreflect.MessageDescriptor) (*protoobject.Object, error) {
	resp, err := s.newMessage(md)
	if err != nil {
		return nil, err
	}
	if err := stream.RecvMsg(resp.Interface()); err != nil {
		return nil, err
	}
	return s.reg.Decode(resp)
}

// ServerStream represents a response stream from a server. Objects in the stream can be queried
// as can header and trailer metadata sent by the server.
type ServerStream struct {
	stream   grpc.ClientStream
	respType protoreflect.MessageDescriptor
	stub     *Stub
}

// Header returns any header metadata sent by the server (blocks if necessary until headers are
// received).
func (s *ServerStream) Header() (metadata.MD, error) {
	return s.stream.Header()
}

// Trailer returns the trailer metadata sent by the server. It must only be called after
// RecvObject returns a non-nil error (which may be EOF for normal completion of stream).
func (s *ServerStream) Trailer() metadata.MD {
	return s.stream.Trailer()
}

// Context returns the context associated with this streaming operation.
func (s *ServerStream) Context() context.Context {
	return s.stream.Context()
}

// RecvObject returns the next object in the response stream or an error. If the stream
// has completed normally, the error is io.EOF. Otherwise, the error indicates the
// nature of the abnormal termination of the stream.
func (s *ServerStream) RecvObject() (*protoobject.Object, error) {
	return s.stub.recv(s.stream, s.respType)
}

// ClientStream represents a request stream from a client. Objects in the stream can be sent
// and, when done, the unary server response and header and trailer metadata can be queried.
type ClientStream struct {
	stream grpc.ClientStream
	method protoreflect.MethodDescriptor
	stub   *Stub
	cancel context.CancelFunc
}

// Header returns any header metadata sent by the server (blocks if necessary until headers are
// received).
func (s *ClientStream) Header() (metadata.MD, error) {
	return s.stream.Header()
}

// Trailer returns the trailer metadata sent by the server. It must only be called after
// CloseAndReceive returns.
func (s *ClientStream) Trailer() metadata.MD {
	return s.stream.Trailer()
}

// Context returns the context associated with this streaming operation.
func (s *ClientStream) Context() context.Context {
	return s.stream.Context()
}

// SendObject sends a request object to the server.
func (s *ClientStream) SendObject(obj *protoobject.Object) error {
	req, err := s.stub.encode(s.method.Input(), obj)
	if err != nil {
		return err
	}
	return s.stream.SendMsg(req.Interface())
}

// CloseAndReceive closes the outgoing request stream and then blocks for the server's response.
func (s *ClientStream) CloseAndReceive() (*protoobject.Object, error) {
	if err := s.stream.CloseSend(); err != nil {
		return nil, err
	}
	resp, err := s.stub.recv(s.stream, s.method.Output())
	if err != nil {
		return nil, err
	}

	// make sure we get EOF for a second message
	extra := dynamicpb.NewMessage(s.method.Output())
	if err := s.stream.RecvMsg(extra); err != io.EOF {
		if err == nil {
			s.cancel()
			return nil, fmt.Errorf("client-streaming method %q returned more than one response message", s.method.FullName())
		}
		return nil, err
	}
	return resp, nil
}

// BidiStream represents a bi-directional stream for sending objects to and receiving
// objects from a server. The header and trailer metadata sent by the server can also be
// queried.
type BidiStream struct {
	stream   grpc.ClientStream
	reqType  protoreflect.MessageDescriptor
	respType protoreflect.MessageDescriptor
	stub     *Stub
}

// Header returns any header metadata sent by the server (blocks if necessary until headers are
// received).
func (s *BidiStream) Header() (metadata.MD, error) {
	return s.stream.Header()
}

// Trailer returns the trailer metadata sent by the server. It must only be called after
// RecvObject returns a non-nil error (which may be EOF for normal completion of stream).
func (s *BidiStream) Trailer() metadata.MD {
	return s.stream.Trailer()
}

// Context returns the context associated with this streaming operation.
func (s *BidiStream) Context() context.Context {
	return s.stream.Context()
}

// SendObject sends a request object to the server.
func (s *BidiStream) SendObject(obj *protoobject.Object) error {
	req, err := s.stub.encode(s.reqType, obj)
	if err != nil {
		return err
	}
	return s.stream.SendMsg(req.Interface())
}

// CloseSend indicates the request stream has ended. Invoke this after all request objects
// are sent (even if there are zero such objects).
func (s *BidiStream) CloseSend() error {
	return s.stream.CloseSend()
}

// RecvObject returns the next object in the response stream or an error. If the stream
// has completed normally, the error is io.EOF. Otherwise, the error indicates the
// nature of the abnormal termination of the stream.
func (s *BidiStream) RecvObject() (*protoobject.Object, error) {
	return s.stub.recv(s.stream, s.respType)
}
