package protoobject

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protogeneric/generic"
)

// Class describes the generic shape of one message type: the ordered list of
// properties that instances of the type have. It is the generic.ObjectType
// for objects decoded from messages of that type.
//
// Classes are created by a Registry and live as long as it does. The
// properties and vector type of a class are computed on first use and then
// never change.
type Class struct {
	reg  *Registry
	name protoreflect.FullName

	typeMu sync.Mutex
	mt     protoreflect.MessageType

	propsMu sync.Mutex
	props   atomic.Pointer[[]generic.Property]

	vectorOnce sync.Once
	vector     *VectorClass
}

var _ generic.ObjectType = (*Class)(nil)

func newClass(reg *Registry, name protoreflect.FullName) *Class {
	return &Class{reg: reg, name: name}
}

// Name returns the fully-qualified name of the class's message type.
func (c *Class) Name() string {
	return string(c.name)
}

// FullName returns the fully-qualified name of the class's message type.
func (c *Class) FullName() protoreflect.FullName {
	return c.name
}

// Kind always returns generic.ObjectKind.
func (c *Class) Kind() generic.Kind {
	return generic.ObjectKind
}

// Registry returns the registry that owns the class.
func (c *Class) Registry() *Registry {
	return c.reg
}

func (c *Class) hasType() bool {
	c.typeMu.Lock()
	defer c.typeMu.Unlock()
	return c.mt != nil
}

func (c *Class) seed(mt protoreflect.MessageType) {
	c.typeMu.Lock()
	defer c.typeMu.Unlock()
	if c.mt == nil {
		c.mt = mt
	}
}

func (c *Class) messageType() (protoreflect.MessageType, error) {
	c.typeMu.Lock()
	defer c.typeMu.Unlock()
	if c.mt != nil {
		return c.mt, nil
	}
	mt, err := c.reg.resolver.FindMessageByName(c.name)
	if err != nil {
		return nil, &SchemaNotFoundError{Name: c.name, Err: err}
	}
	c.mt = mt
	return mt, nil
}

// NewMessage returns a new, empty message of the class's type.
func (c *Class) NewMessage() (protoreflect.Message, error) {
	mt, err := c.messageType()
	if err != nil {
		return nil, err
	}
	return mt.New(), nil
}

// NewObject returns a blank instance of the class: the result of decoding an
// empty message of the class's type.
func (c *Class) NewObject() (*Object, error) {
	msg, err := c.NewMessage()
	if err != nil {
		return nil, err
	}
	return c.reg.decodeMessage(c, msg)
}

// CreateObject implements generic.ObjectType. It is the same as NewObject.
func (c *Class) CreateObject() (generic.Object, error) {
	obj, err := c.NewObject()
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Properties returns the class's properties, in field order. The list is
// computed once, by decoding a blank message and recording the type of value
// in each slot. This is how the element type of a repeated field, or the
// class of a message field, is learned: it is whatever the decoder boxes
// those fields as.
//
// The returned slice is shared and must not be modified.
func (c *Class) Properties() ([]generic.Property, error) {
	if props := c.props.Load(); props != nil {
		return *props, nil
	}
	c.propsMu.Lock()
	defer c.propsMu.Unlock()
	if props := c.props.Load(); props != nil {
		return *props, nil
	}

	msg, err := c.NewMessage()
	if err != nil {
		return nil, err
	}
	probe, err := c.reg.decodeMessage(c, msg)
	if err != nil {
		return nil, err
	}
	fields := msg.Descriptor().Fields()
	if fields.Len() != len(probe.values) {
		return nil, invalidState("class %s: schema has %d fields but probe has %d values", c.name, fields.Len(), len(probe.values))
	}
	props := make([]generic.Property, fields.Len())
	for i := range props {
		props[i] = generic.NewProperty(i, string(fields.Get(i).Name()), probe.values[i].Type())
	}
	c.props.Store(&props)
	c.reg.logger.Debug("computed class properties",
		zap.String("class", string(c.name)),
		zap.Int("count", len(props)))
	return props, nil
}

// PropertyByName returns the property with the given name.
func (c *Class) PropertyByName(name string) (generic.Property, bool, error) {
	props, err := c.Properties()
	if err != nil {
		return generic.Property{}, false, err
	}
	for _, p := range props {
		if p.Name == name {
			return p, true, nil
		}
	}
	return generic.Property{}, false, nil
}

// VectorType returns the collection type for lists of this class's
// instances.
func (c *Class) VectorType() *VectorClass {
	c.vectorOnce.Do(func() {
		c.vector = &VectorClass{class: c, name: "[]" + string(c.name)}
	})
	return c.vector
}

// ListType implements generic.ObjectType. It returns VectorType.
func (c *Class) ListType() generic.CollectionType {
	return c.VectorType()
}
