package genericjson

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/jhump/protogeneric/generic"
)

// Config controls how values are serialized and deserialized.
type Config struct {
	// EnableInterpretations lists the interpretations that may be used to
	// convert statically typed values, in order of preference.
	EnableInterpretations []string
	// Indent, if not empty, causes output to be beautified, with each
	// nesting level indented by this string. Output never ends in a newline.
	Indent string
	// OmitAbsent causes object members whose values are absent to be left
	// out instead of written as null.
	OmitAbsent bool
	// DiscardUnknown causes members of JSON objects that do not match any
	// property to be ignored instead of reported as an error.
	DiscardUnknown bool
}

func (c *Config) orDefault() *Config {
	if c == nil {
		return &Config{}
	}
	return c
}

// Marshal returns the JSON form of v. See generic.ToValue for what v can be.
func Marshal(v any, cfg *Config) ([]byte, error) {
	cfg = cfg.orDefault()
	gv, err := generic.ToValue(v, cfg.EnableInterpretations)
	if err != nil {
		return nil, err
	}
	e := encoder{cfg: cfg}
	if err := e.value(gv); err != nil {
		return nil, err
	}
	if cfg.Indent != "" {
		out := pretty.PrettyOptions(e.buf, &pretty.Options{Width: 80, Indent: cfg.Indent})
		return bytes.TrimSuffix(out, []byte{'\n'}), nil
	}
	return e.buf, nil
}

// MarshalValue returns the JSON form of v.
func MarshalValue(v generic.Value) ([]byte, error) {
	return Marshal(v, nil)
}

type encoder struct {
	cfg *Config
	buf []byte
}

func (e *encoder) value(v generic.Value) error {
	if !v.IsValid() {
		return fmt.Errorf("%w: cannot serialize invalid value", generic.ErrKindMismatch)
	}
	if v.IsAbsent() {
		e.buf = append(e.buf, "null"...)
		return nil
	}
	switch v.Kind() {
	case generic.StringKind:
		e.buf = gjson.AppendJSONString(e.buf, v.String())
	case generic.EnumKind:
		e.buf = gjson.AppendJSONString(e.buf, v.Enum())
	case generic.BytesKind:
		e.buf = append(e.buf, '"')
		e.buf = base64.StdEncoding.AppendEncode(e.buf, v.Bytes())
		e.buf = append(e.buf, '"')
	case generic.Int32Kind:
		e.buf = strconv.AppendInt(e.buf, int64(v.Int32()), 10)
	case generic.Uint32Kind:
		e.buf = strconv.AppendUint(e.buf, uint64(v.Uint32()), 10)
	case generic.Int64Kind:
		e.buf = strconv.AppendInt(e.buf, v.Int64(), 10)
	case generic.Uint64Kind:
		e.buf = strconv.AppendUint(e.buf, v.Uint64(), 10)
	case generic.Float32Kind:
		e.float(float64(v.Float32()), 32)
	case generic.Float64Kind:
		e.float(v.Float64(), 64)
	case generic.BoolKind:
		e.buf = strconv.AppendBool(e.buf, v.Bool())
	case generic.ObjectKind:
		return e.object(v.Object())
	case generic.ListKind:
		return e.list(v.List())
	default:
		return fmt.Errorf("%w: cannot serialize value of kind %s", generic.ErrKindMismatch, v.Kind())
	}
	return nil
}

func (e *encoder) float(f float64, bits int) {
	switch {
	case math.IsNaN(f):
		e.buf = append(e.buf, `"NaN"`...)
	case math.IsInf(f, 1):
		e.buf = append(e.buf, `"Infinity"`...)
	case math.IsInf(f, -1):
		e.buf = append(e.buf, `"-Infinity"`...)
	default:
		e.buf = strconv.AppendFloat(e.buf, f, 'g', -1, bits)
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
	e.buf = append(e.buf, '{')
	first := true
	for _, p := range props {
		v := obj.Get(p.Index)
		if e.cfg.OmitAbsent && v.IsValid() && v.IsAbsent() {
			continue
		}
		if !first {
			e.buf = append(e.buf, ',')
		}
		first = false
		e.buf = gjson.AppendJSONString(e.buf, p.Name)
		e.buf = append(e.buf, ':')
		if err := e.value(v); err != nil {
			return fmt.Errorf("%s.%s: %w", obj.ObjectType().Name(), p.Name, err)
		}
	}
	e.buf = append(e.buf, '}')
	return nil
}

func (e *encoder) list(list *generic.List) error {
	e.buf = append(e.buf, '[')
	it := list.Iterator()
	for i := 0; it.Next(); i++ {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		if err := e.value(it.Value()); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	e.buf = append(e.buf, ']')
	return nil
}
