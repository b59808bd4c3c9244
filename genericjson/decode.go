package genericjson

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/jhump/protogeneric/generic"
)

// ErrSyntax is returned when the input is not valid JSON.
var ErrSyntax = errors.New("genericjson: invalid JSON")

// DecodeError describes a JSON value that cannot be converted to the type
// expected at its position.
type DecodeError struct {
	// Path locates the value, like "image.width" or "images[1]".
	Path string
	// Type is the name of the expected type.
	Type string
	Err  error
}

func (e *DecodeError) Error() string {
	path := e.Path
	if path == "" {
		path = "<root>"
	}
	return fmt.Sprintf("genericjson: %s: cannot decode %s: %v", path, e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

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
	if !gjson.ValidBytes(data) {
		return generic.Value{}, ErrSyntax
	}
	d := decoder{cfg: cfg}
	return d.value(gjson.ParseBytes(data), t, "")
}

type decoder struct {
	cfg *Config
}

func (d *decoder) value(r gjson.Result, t generic.Type, path string) (generic.Value, error) {
	if r.Type == gjson.Null {
		return generic.Absent(t), nil
	}
	v, err := d.nonNull(r, t, path)
	if err != nil {
		var decErr *DecodeError
		if errors.As(err, &decErr) {
			return generic.Value{}, err
		}
		return generic.Value{}, &DecodeError{Path: path, Type: t.Name(), Err: err}
	}
	return v, nil
}

func (d *decoder) nonNull(r gjson.Result, t generic.Type, path string) (generic.Value, error) {
	switch t.Kind() {
	case generic.StringKind:
		s, err := str(r)
		return generic.StringValue(s), err
	case generic.EnumKind:
		if r.Type == gjson.Number {
			return generic.EnumValue(r.Raw), nil
		}
		s, err := str(r)
		return generic.EnumValue(s), err
	case generic.BytesKind:
		s, err := str(r)
		if err != nil {
			return generic.Value{}, err
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			if b, err = base64.URLEncoding.DecodeString(s); err != nil {
				return generic.Value{}, err
			}
		}
		return generic.BytesValue(b), nil
	case generic.Int32Kind:
		i, err := strconv.ParseInt(num(r), 10, 32)
		return generic.Int32Value(int32(i)), err
	case generic.Uint32Kind:
		u, err := strconv.ParseUint(num(r), 10, 32)
		return generic.Uint32Value(uint32(u)), err
	case generic.Int64Kind:
		i, err := strconv.ParseInt(num(r), 10, 64)
		return generic.Int64Value(i), err
	case generic.Uint64Kind:
		u, err := strconv.ParseUint(num(r), 10, 64)
		return generic.Uint64Value(u), err
	case generic.Float32Kind:
		f, err := float(r, 32)
		return generic.Float32Value(float32(f)), err
	case generic.Float64Kind:
		f, err := float(r, 64)
		return generic.Float64Value(f), err
	case generic.BoolKind:
		if !r.IsBool() {
			return generic.Value{}, fmt.Errorf("expecting boolean, got %s", r.Type)
		}
		return generic.BoolValue(r.Bool()), nil
	case generic.ObjectKind:
		ot, ok := t.(generic.ObjectType)
		if !ok {
			return generic.Value{}, fmt.Errorf("type %T is not an object type", t)
		}
		return d.object(r, ot, path)
	case generic.ListKind:
		ct, ok := t.(generic.CollectionType)
		if !ok {
			return generic.Value{}, fmt.Errorf("type %T is not a collection type", t)
		}
		return d.list(r, ct, path)
	default:
		return generic.Value{}, fmt.Errorf("unsupported kind %s", t.Kind())
	}
}

func (d *decoder) object(r gjson.Result, ot generic.ObjectType, path string) (generic.Value, error) {
	if !r.IsObject() {
		return generic.Value{}, fmt.Errorf("expecting object, got %s", r.Type)
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
	var iterErr error
	r.ForEach(func(key, val gjson.Result) bool {
		p, ok := byName[key.Str]
		if !ok {
			if !d.cfg.DiscardUnknown {
				iterErr = fmt.Errorf("%s has no property %q", ot.Name(), key.Str)
			}
			return iterErr == nil
		}
		v, err := d.value(val, p.Type, join(path, p.Name))
		if err != nil {
			iterErr = err
			return false
		}
		if err := obj.Set(p.Index, v); err != nil {
			iterErr = err
			return false
		}
		return true
	})
	if iterErr != nil {
		return generic.Value{}, iterErr
	}
	return generic.ObjectValue(obj), nil
}

func (d *decoder) list(r gjson.Result, ct generic.CollectionType, path string) (generic.Value, error) {
	if !r.IsArray() {
		return generic.Value{}, fmt.Errorf("expecting array, got %s", r.Type)
	}
	list := ct.CreateObject()
	for i, item := range r.Array() {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		v, err := d.value(item, ct.ItemType(), itemPath)
		if err != nil {
			return generic.Value{}, err
		}
		if err := ct.AddItem(list, v); err != nil {
			return generic.Value{}, &DecodeError{Path: itemPath, Type: ct.ItemType().Name(), Err: err}
		}
	}
	return generic.ListValue(list), nil
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func str(r gjson.Result) (string, error) {
	if r.Type != gjson.String {
		return "", fmt.Errorf("expecting string, got %s", r.Type)
	}
	return r.Str, nil
}

// num returns the text of a number, which may also be given as a string.
func num(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.Str
	}
	if r.Type == gjson.Number {
		return r.Raw
	}
	return ""
}

func float(r gjson.Result, bits int) (float64, error) {
	if r.Type == gjson.String {
		switch r.Str {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
	}
	return strconv.ParseFloat(num(r), bits)
}
