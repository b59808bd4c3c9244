package protoobject

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Global is the process-wide registry. It resolves message types using
// protoregistry.GlobalTypes.
var Global = NewRegistry()

// Registry maps fully-qualified message names to classes. Entries are never
// removed: the set of message types a process sees is assumed to be bounded.
//
// A Registry is safe for concurrent use. Looking up a class that already
// exists does not acquire any lock.
type Registry struct {
	mu       sync.Mutex // serializes inserts
	classes  sync.Map   // map[protoreflect.FullName]*Class
	resolver protoregistry.MessageTypeResolver
	logger   *zap.Logger
}

// RegistryOption is an option that can be used to customize a Registry.
type RegistryOption interface {
	apply(*Registry)
}

type registryOptionFunc func(*Registry)

func (f registryOptionFunc) apply(r *Registry) {
	f(r)
}

// WithResolver returns a RegistryOption that causes the registry to use the
// given resolver to find message types by name. If not specified,
// protoregistry.GlobalTypes is used.
//
// Classes for messages that are decoded directly do not need the resolver:
// they use the type of the decoded message.
func WithResolver(res protoregistry.MessageTypeResolver) RegistryOption {
	return registryOptionFunc(func(r *Registry) {
		r.resolver = res
	})
}

// WithLogger returns a RegistryOption that sets the logger used to report
// class creation and property computation. The default discards all output.
func WithLogger(logger *zap.Logger) RegistryOption {
	return registryOptionFunc(func(r *Registry) {
		r.logger = logger
	})
}

// NewRegistry creates a new, empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		resolver: protoregistry.GlobalTypes,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt.apply(r)
	}
	return r
}

// GetOrCreate returns the class for the given message name, creating it if
// this is the first request for that name. It never fails: resolving the
// name to a message type is deferred until the class is first used.
func (r *Registry) GetOrCreate(name protoreflect.FullName) *Class {
	if c, ok := r.classes.Load(name); ok {
		return c.(*Class)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.classes.Load(name); ok {
		return c.(*Class)
	}
	c := newClass(r, name)
	r.classes.Store(name, c)
	r.logger.Debug("created class", zap.String("class", string(name)))
	return c
}

// ClassOf returns the class for the given message type. If the class did not
// yet know how to instantiate messages, it will use mt from now on.
func (r *Registry) ClassOf(mt protoreflect.MessageType) *Class {
	c := r.GetOrCreate(mt.Descriptor().FullName())
	c.seed(mt)
	return c
}

// ClassForDescriptor returns the class for the given message descriptor. If
// the class does not yet have a message type, it will use a dynamic message
// type built from md.
func (r *Registry) ClassForDescriptor(md protoreflect.MessageDescriptor) *Class {
	return r.classFor(md, func() protoreflect.MessageType {
		return dynamicpb.NewMessageType(md)
	})
}

// classFor is like ClassOf, but only calls newType when the class does not
// already have a message type.
func (r *Registry) classFor(md protoreflect.MessageDescriptor, newType func() protoreflect.MessageType) *Class {
	c := r.GetOrCreate(md.FullName())
	if !c.hasType() {
		c.seed(newType())
	}
	return c
}

// Len returns the number of classes in the registry.
func (r *Registry) Len() int {
	var n int
	r.classes.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Range calls fn for each class in the registry, in no particular order,
// until fn returns false.
func (r *Registry) Range(fn func(*Class) bool) {
	r.classes.Range(func(_, c any) bool {
		return fn(c.(*Class))
	})
}

// Preload computes the properties of the named classes, concurrently. It
// returns the first error encountered. Classes are visited at most once per
// call, and not at all once ctx is done.
func (r *Registry) Preload(ctx context.Context, names ...protoreflect.FullName) error {
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	seen := make(map[protoreflect.FullName]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := r.GetOrCreate(name).Properties()
			return err
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}
	r.logger.Debug("preloaded classes", zap.Int("count", len(seen)))
	return nil
}

// Decode converts the given message to a generic object.
func (r *Registry) Decode(msg protoreflect.Message) (*Object, error) {
	return r.decodeMessage(r.ClassOf(msg.Type()), msg)
}

// Encode writes the contents of obj into target. Absent slots leave the
// corresponding fields of target untouched; every other field described by
// obj is cleared and then set from obj.
//
// The object is validated before anything is written, and on any error the
// target is left as it was.
func (r *Registry) Encode(obj *Object, target protoreflect.Message) error {
	if obj == nil {
		return invalidState("cannot encode nil object into %s", target.Descriptor().FullName())
	}
	return r.encodeMessage(obj, target)
}

// Decode converts the given message to a generic object, using the Global
// registry.
func Decode(msg proto.Message) (*Object, error) {
	return Global.Decode(msg.ProtoReflect())
}

// Encode writes the contents of obj into target, using the Global registry.
func Encode(obj *Object, target proto.Message) error {
	return Global.Encode(obj, target.ProtoReflect())
}

// GetOrCreate returns the class with the given name from the Global registry.
func GetOrCreate(name protoreflect.FullName) *Class {
	return Global.GetOrCreate(name)
}
