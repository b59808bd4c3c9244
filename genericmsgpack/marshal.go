package genericmsgpack

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/jhump/protogeneric/generic"
)

// Config controls how values are serialized and deserialized.
type Config struct {
	// EnableInterpretations lists the interpretations that may be used to
	// convert statically typed values, in order of preference.
	EnableInterpretations []string
	// OmitAbsent causes map entries whose values are absent to be left out
	// instead of written as nil.
	OmitAbsent bool
	// DiscardUnknown causes map keys that do not match any property to be
	// skipped instead of reported as an error.
	DiscardUnknown bool
}

func (c *Config) orDefault() *Config {
	if c == nil {
		return &Config{}
	}
	return c
}

// MarshalStream writes the msgpack form of v to w. See generic.ToValue for
// what v can be.
func MarshalStream(w io.Writer, v any, cfg *Config) error {
	cfg = cfg.orDefault()
	gv, err := generic.ToValue(v, cfg.EnableInterpretations)
	if err != nil {
		return err
	}
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	enc.Reset(w)
	enc.UseCompactInts(true)
	return (&encoder{enc: enc, cfg: cfg}).value(gv)
}

// Marshal returns the msgpack form of v.
func Marshal(v any, cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := MarshalStream(&buf, v, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encoder struct {
	enc *msgpack.Encoder
	cfg *Config
}

func (e *encoder) value(v generic.Value) error {
	if !v.IsValid() {
		return fmt.Errorf("%w: cannot serialize invalid value", generic.ErrKindMismatch)
	}
	if v.IsAbsent() {
		return e.enc.EncodeNil()
	}
	switch v.Kind() {
	case generic.StringKind:
		return e.enc.EncodeString(v.String())
	case generic.EnumKind:
		return e.enc.EncodeString(v.Enum())
	case generic.BytesKind:
		return e.enc.EncodeBytes(v.Bytes())
	case generic.Int32Kind:
		return e.enc.EncodeInt(int64(v.Int32()))
	case generic.Uint32Kind:
		return e.enc.EncodeUint(uint64(v.Uint32()))
	case generic.Int64Kind:
		return e.enc.EncodeInt(v.Int64())
	case generic.Uint64Kind:
		return e.enc.EncodeUint(v.Uint64())
	case generic.Float32Kind:
		return e.enc.EncodeFloat32(v.Float32())
	case generic.Float64Kind:
		return e.enc.EncodeFloat64(v.Float64())
	case generic.BoolKind:
		return e.enc.EncodeBool(v.Bool())
	case generic.ObjectKind:
		return e.object(v.Object())
	case generic.ListKind:
		return e.list(v.List())
	default:
		return fmt.Errorf("%w: cannot serialize value of kind %s", generic.ErrKindMismatch, v.Kind())
	}
}

func (e *encoder) object(obj generic.Object) error {
	props, err := obj.ObjectType().Properties()
	if err != nil {
		return err
	}
	if len(props) != obj.Len() {
		return fmt.Errorf("%w: %s has %d properties but object has %d slots",
			generic.ErrKindMismatch, obj.ObjectType().Name(), len(props), obj.Len())
	}
	count := len(props)
	if e.cfg.OmitAbsent {
		count = 0
		for _, p := range props {
			if !obj.Get(p.Index).IsAbsent() {
				count++
			}
		}
	}
	if err := e.enc.EncodeMapLen(count); err != nil {
		return err
	}
	for _, p := range props {
		v := obj.Get(p.Index)
		if e.cfg.OmitAbsent && v.IsAbsent() {
			continue
		}
		if err := e.enc.EncodeString(p.Name); err != nil {
			return err
		}
		if err := e.value(v); err != nil {
			return fmt.Errorf("%s.%s: %w", obj.ObjectType().Name(), p.Name, err)
		}
	}
	return nil
}

func (e *encoder) list(list *generic.List) error {
	if err := e.enc.EncodeArrayLen(list.Len()); err != nil {
		return err
	}
	it := list.Iterator()
	for i := 0; it.Next(); i++ {
		if err := e.value(it.Value()); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}
