package genericmsgpack

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/jhump/protogeneric/generic"
)

// Unmarshal decodes data into dst. See generic.Assign for what dst can be.
func Unmarshal(data []byte, dst any, cfg *Config) error {
	cfg = cfg.orDefault()
	return generic.Assign(dst, cfg.EnableInterpretations, func(t generic.Type) (generic.Value, error) {
		return decode(data, t, cfg)
	})
}

// UnmarshalValue decodes data as a value of type t.
func UnmarshalValue(data []byte, t generic.Type) (generic.Value, error) {
	return decode(data, t, &Config{})
}

func decode(data []byte, t generic.Type, cfg *Config) (generic.Value, error) {
	r := bytes.NewReader(data)
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(r)

	d := decoder{dec: dec, cfg: cfg}
	v, err := d.value(t, "")
	if err != nil {
		return generic.Value{}, err
	}
	if r.Len() > 0 {
		return generic.Value{}, fmt.Errorf("genericmsgpack: %d trailing bytes after %s", r.Len(), t.Name())
	}
	return v, nil
}

type decoder struct {
	dec *msgpack.Decoder
	cfg *Config
}

func (d *decoder) value(t generic.Type, path string) (generic.Value, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return generic.Value{}, d.errorf(path, t, err)
	}
	if c == msgpcode.Nil {
		if err := d.dec.DecodeNil(); err != nil {
			return generic.Value{}, d.errorf(path, t, err)
		}
		return generic.Absent(t), nil
	}
	v, err := d.nonNil(c, t, path)
	if err != nil {
		if _, ok := err.(*decodeError); ok {
			return generic.Value{}, err
		}
		return generic.Value{}, d.errorf(path, t, err)
	}
	return v, nil
}

func (d *decoder) nonNil(c byte, t generic.Type, path string) (generic.Value, error) {
	switch t.Kind() {
	case generic.StringKind:
		s, err := d.dec.DecodeString()
		return generic.StringValue(s), err
	case generic.EnumKind:
		if !msgpcode.IsString(c) {
			n, err := d.signed(c, 32)
			return generic.EnumValue(strconv.FormatInt(n, 10)), err
		}
		s, err := d.dec.DecodeString()
		return generic.EnumValue(s), err
	case generic.BytesKind:
		b, err := d.dec.DecodeBytes()
		return generic.BytesValue(b), err
	case generic.Int32Kind:
		n, err := d.signed(c, 32)
		return generic.Int32Value(int32(n)), err
	case generic.Uint32Kind:
		n, err := d.unsigned(c, 32)
		return generic.Uint32Value(uint32(n)), err
	case generic.Int64Kind:
		n, err := d.signed(c, 64)
		return generic.Int64Value(n), err
	case generic.Uint64Kind:
		n, err := d.unsigned(c, 64)
		return generic.Uint64Value(n), err
	case generic.Float32Kind:
		f, err := d.dec.DecodeFloat32()
		return generic.Float32Value(f), err
	case generic.Float64Kind:
		f, err := d.dec.DecodeFloat64()
		return generic.Float64Value(f), err
	case generic.BoolKind:
		b, err := d.dec.DecodeBool()
		return generic.BoolValue(b), err
	case generic.ObjectKind:
		ot, ok := t.(generic.ObjectType)
		if !ok {
			return generic.Value{}, fmt.Errorf("type %T is not an object type", t)
		}
		return d.object(ot, path)
	case generic.ListKind:
		ct, ok := t.(generic.CollectionType)
		if !ok {
			return generic.Value{}, fmt.Errorf("type %T is not a collection type", t)
		}
		return d.list(ct, path)
	default:
		return generic.Value{}, fmt.Errorf("unsupported kind %s", t.Kind())
	}
}

// signed reads an integer that must fit in the given number of bits. The
// msgpack decoder narrows and reinterprets silently, so the range is checked
// against the value as encoded.
func (d *decoder) signed(c byte, bits int) (int64, error) {
	hi := int64(math.MaxInt64 >> (64 - bits))
	if c == msgpcode.Uint64 {
		u, err := d.dec.DecodeUint64()
		if err != nil {
			return 0, err
		}
		if u > uint64(hi) {
			return 0, fmt.Errorf("value %d out of range for int%d", u, bits)
		}
		return int64(u), nil
	}
	n, err := d.dec.DecodeInt64()
	if err != nil {
		return 0, err
	}
	if n > hi || n < -hi-1 {
		return 0, fmt.Errorf("value %d out of range for int%d", n, bits)
	}
	return n, nil
}

func (d *decoder) unsigned(c byte, bits int) (uint64, error) {
	hi := uint64(math.MaxUint64 >> (64 - bits))
	var u uint64
	if isSignedCode(c) {
		n, err := d.dec.DecodeInt64()
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, fmt.Errorf("value %d out of range for uint%d", n, bits)
		}
		u = uint64(n)
	} else {
		var err error
		if u, err = d.dec.DecodeUint64(); err != nil {
			return 0, err
		}
	}
	if u > hi {
		return 0, fmt.Errorf("value %d out of range for uint%d", u, bits)
	}
	return u, nil
}

func isSignedCode(c byte) bool {
	return c >= msgpcode.NegFixedNumLow || (c >= msgpcode.Int8 && c <= msgpcode.Int64)
}

func (d *decoder) object(ot generic.ObjectType, path string) (generic.Value, error) {
	n, err := d.dec.DecodeMapLen()
	if err != nil {
		return generic.Value{}, err
	}
	obj, err := ot.CreateObject()
	if err != nil {
		return generic.Value{}, err
	}
	props, err := ot.Properties()
	if err != nil {
		return generic.Value{}, err
	}
	byName := make(map[string]generic.Property, len(props))
	for _, p := range props {
		byName[p.Name] = p
	}
	for i := 0; i < n; i++ {
		key, err := d.dec.DecodeString()
		if err != nil {
			return generic.Value{}, fmt.Errorf("reading key %d: %w", i, err)
		}
		p, ok := byName[key]
		if !ok {
			if !d.cfg.DiscardUnknown {
				return generic.Value{}, fmt.Errorf("%s has no property %q", ot.Name(), key)
			}
			if err := d.dec.Skip(); err != nil {
				return generic.Value{}, err
			}
			continue
		}
		v, err := d.value(p.Type, join(path, p.Name))
		if err != nil {
			return generic.Value{}, err
		}
		if err := obj.Set(p.Index, v); err != nil {
			return generic.Value{}, err
		}
	}
	return generic.ObjectValue(obj), nil
}

func (d *decoder) list(ct generic.CollectionType, path string) (generic.Value, error) {
	n, err := d.dec.DecodeArrayLen()
	if err != nil {
		return generic.Value{}, err
	}
	list := ct.CreateObject()
	for i := 0; i < n; i++ {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		v, err := d.value(ct.ItemType(), itemPath)
		if err != nil {
			return generic.Value{}, err
		}
		if err := ct.AddItem(list, v); err != nil {
			return generic.Value{}, d.errorf(itemPath, ct.ItemType(), err)
		}
	}
	return generic.ListValue(list), nil
}

type decodeError struct {
	path string
	typ  string
	err  error
}

func (e *decodeError) Error() string {
	path := e.path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("genericmsgpack: %s: cannot decode %s: %v", path, e.typ, e.err)
}

func (e *decodeError) Unwrap() error {
	return e.err
}

func (d *decoder) errorf(path string, t generic.Type, err error) error {
	return &decodeError{path: path, typ: t.Name(), err: err}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
