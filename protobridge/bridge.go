package protobridge

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/jhump/protogeneric/generic"
	"github.com/jhump/protogeneric/protoobject"
)

// InterpretationName is the name under which messages wrapped by Message
// expose their conversion to and from generic objects.
const InterpretationName = "protobuf"

// PointerMessage is a pointer type that implements [proto.Message].
type PointerMessage[T any] interface {
	*T
	proto.Message
}

// Bridge converts statically typed messages to and from generic values
// using a particular registry.
type Bridge struct {
	reg *protoobject.Registry
}

// Default is the bridge that uses protoobject.Global.
var Default = New()

// BridgeOption is an option that can be used to customize a Bridge.
type BridgeOption interface {
	apply(*Bridge)
}

type bridgeOptionFunc func(*Bridge)

func (f bridgeOptionFunc) apply(b *Bridge) {
	f(b)
}

// WithRegistry returns a BridgeOption that causes the bridge to use the given
// registry for classes. If not specified, protoobject.Global is used.
func WithRegistry(reg *protoobject.Registry) BridgeOption {
	return bridgeOptionFunc(func(b *Bridge) {
		b.reg = reg
	})
}

// New creates a bridge.
func New(opts ...BridgeOption) *Bridge {
	b := &Bridge{reg: protoobject.Global}
	for _, opt := range opts {
		opt.apply(b)
	}
	return b
}

// Registry returns the registry used by the bridge.
func (b *Bridge) Registry() *protoobject.Registry {
	return b.reg
}

// ToGeneric converts msg to a generic object value. A typed nil message
// converts to an absent value of the message's class.
func (b *Bridge) ToGeneric(msg proto.Message) (generic.Value, error) {
	if msg == nil {
		return generic.Value{}, errors.New("cannot convert nil message: type unknown")
	}
	ref := msg.ProtoReflect()
	if !ref.IsValid() {
		return generic.Absent(b.reg.ClassOf(ref.Type())), nil
	}
	obj, err := b.reg.Decode(ref)
	if err != nil {
		return generic.Value{}, err
	}
	return generic.ObjectValue(obj), nil
}

// FromGenericInto encodes v into dst. An absent value leaves dst unchanged.
// The value must hold an object created by this bridge's registry, whose
// class is dst's message type.
func (b *Bridge) FromGenericInto(v generic.Value, dst proto.Message) error {
	if !v.IsValid() {
		return fmt.Errorf("%w: cannot convert invalid value", protoobject.ErrInvalidState)
	}
	if v.IsAbsent() {
		return nil
	}
	if v.Kind() != generic.ObjectKind {
		return fmt.Errorf("%w: cannot convert %s value to message %s",
			protoobject.ErrInvalidState, v.Kind(), dst.ProtoReflect().Descriptor().FullName())
	}
	obj, ok := v.Object().(*protoobject.Object)
	if !ok {
		return fmt.Errorf("%w: object of type %T is not a protobuf object", protoobject.ErrInvalidState, v.Object())
	}
	return b.reg.Encode(obj, dst.ProtoReflect())
}

// ToGeneric converts msg to a generic value using the Default bridge.
func ToGeneric(msg proto.Message) (generic.Value, error) {
	return Default.ToGeneric(msg)
}

// FromGeneric reconstructs a message of type M from v using the Default
// bridge. An absent value yields a nil message.
func FromGeneric[M PointerMessage[T], T any](v generic.Value) (M, error) {
	return FromGenericWith[M](Default, v)
}

// FromGenericWith is like FromGeneric, but uses the given bridge.
func FromGenericWith[M PointerMessage[T], T any](b *Bridge, v generic.Value) (M, error) {
	if v.IsValid() && v.IsAbsent() {
		return nil, nil
	}
	dst := M(new(T))
	if err := b.FromGenericInto(v, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
