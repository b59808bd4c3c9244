package protoresolve

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"
)

// GlobalTypes resolves message types that are linked into the program, via
// protoregistry.GlobalTypes.
var GlobalTypes protoregistry.MessageTypeResolver = protoregistry.GlobalTypes

// FromFiles returns a resolver that provides dynamic message types for all
// messages described by the given files. Message types are created on demand
// with dynamicpb.
func FromFiles(files *protoregistry.Files) protoregistry.MessageTypeResolver {
	return filesResolver{files: files}
}

type filesResolver struct {
	files *protoregistry.Files
}

func (r filesResolver) FindMessageByName(name protoreflect.FullName) (protoreflect.MessageType, error) {
	d, err := r.files.FindDescriptorByName(name)
	if err != nil {
		return nil, err
	}
	md, ok := d.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("descriptor %q is %s, not a message", name, descType(d))
	}
	return dynamicpb.NewMessageType(md), nil
}

func (r filesResolver) FindMessageByURL(url string) (protoreflect.MessageType, error) {
	return r.FindMessageByName(TypeNameFromURL(url))
}

// Combine returns a resolver that iterates through the given resolvers to find
// message types. The first resolver given is the first one checked, so will
// always be the preferred resolver. When that returns a protoregistry.NotFound
// error, the next resolver will be checked, and so on.
func Combine(res ...protoregistry.MessageTypeResolver) protoregistry.MessageTypeResolver {
	return combined(res)
}

type combined []protoregistry.MessageTypeResolver

func (c combined) FindMessageByName(name protoreflect.FullName) (protoreflect.MessageType, error) {
	for _, res := range c {
		mt, err := res.FindMessageByName(name)
		if errors.Is(err, protoregistry.NotFound) {
			continue
		}
		return mt, err
	}
	return nil, protoregistry.NotFound
}

func (c combined) FindMessageByURL(url string) (protoreflect.MessageType, error) {
	for _, res := range c {
		mt, err := res.FindMessageByURL(url)
		if errors.Is(err, protoregistry.NotFound) {
			continue
		}
		return mt, err
	}
	return nil, protoregistry.NotFound
}

// TypeNameFromURL extracts the fully-qualified type name from the given URL.
// The URL is one that could be used with a google.protobuf.Any message. The
// last path component is the fully-qualified name.
func TypeNameFromURL(url string) protoreflect.FullName {
	pos := strings.LastIndexByte(url, '/')
	return protoreflect.FullName(url[pos+1:])
}

func descType(d protoreflect.Descriptor) string {
	switch d := d.(type) {
	case protoreflect.FileDescriptor:
		return "a file"
	case protoreflect.MessageDescriptor:
		return "a message"
	case protoreflect.FieldDescriptor:
		if d.IsExtension() {
			return "an extension"
		}
		return "a field"
	case protoreflect.OneofDescriptor:
		return "a oneof"
	case protoreflect.EnumDescriptor:
		return "an enum"
	case protoreflect.EnumValueDescriptor:
		return "an enum value"
	case protoreflect.ServiceDescriptor:
		return "a service"
	case protoreflect.MethodDescriptor:
		return "a method"
	default:
		return fmt.Sprintf("a %T", d)
	}
}
