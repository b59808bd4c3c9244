package protobridge

import (
	"github.com/jhump/protogeneric/generic"
	"github.com/jhump/protogeneric/protoobject"
)

// Message wraps a generated message so that codecs that understand
// generic.Interpreted can serialize it through its generic form. The
// wrapped message may be nil.
type Message[M PointerMessage[T], T any] struct {
	msg    M
	bridge *Bridge
}

// NewMessage wraps msg. Without options, conversions use the Default bridge.
func NewMessage[M PointerMessage[T], T any](msg M, opts ...BridgeOption) *Message[M, T] {
	b := Default
	if len(opts) > 0 {
		b = New(opts...)
	}
	return &Message[M, T]{msg: msg, bridge: b}
}

// Get returns the wrapped message.
func (m *Message[M, T]) Get() M {
	return m.msg
}

// Set replaces the wrapped message.
func (m *Message[M, T]) Set(msg M) {
	m.msg = msg
}

// Class returns the class of M in the wrapper's registry.
func (m *Message[M, T]) Class() *protoobject.Class {
	return m.bridge.reg.ClassOf(M(new(T)).ProtoReflect().Type())
}

// Interpretation implements generic.Interpreted. The only interpretation
// supported is InterpretationName.
func (m *Message[M, T]) Interpretation(name string) (generic.Interpretation, bool) {
	if name != InterpretationName {
		return nil, false
	}
	return messageInterpretation[M, T]{m: m}, true
}

type messageInterpretation[M PointerMessage[T], T any] struct {
	m *Message[M, T]
}

func (i messageInterpretation[M, T]) Type() generic.Type {
	return i.m.Class()
}

func (i messageInterpretation[M, T]) ToGeneric() (generic.Value, error) {
	if i.m.msg == nil {
		return generic.Absent(i.m.Class()), nil
	}
	return i.m.bridge.ToGeneric(i.m.msg)
}

func (i messageInterpretation[M, T]) FromGeneric(v generic.Value) error {
	msg, err := FromGenericWith[M](i.m.bridge, v)
	if err != nil {
		return err
	}
	i.m.msg = msg
	return nil
}
