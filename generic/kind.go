package generic

import "fmt"

// Kind identifies the variant held by a Value.
type Kind int

// The set of kinds is closed. Code that switches over a Kind should handle
// every constant below.
const (
	InvalidKind Kind = iota
	StringKind
	BytesKind
	Int32Kind
	Uint32Kind
	Int64Kind
	Uint64Kind
	Float32Kind
	Float64Kind
	BoolKind
	EnumKind
	ObjectKind
	ListKind
)

var kindNames = [...]string{
	InvalidKind: "invalid",
	StringKind:  "string",
	BytesKind:   "bytes",
	Int32Kind:   "int32",
	Uint32Kind:  "uint32",
	Int64Kind:   "int64",
	Uint64Kind:  "uint64",
	Float32Kind: "float32",
	Float64Kind: "float64",
	BoolKind:    "bool",
	EnumKind:    "enum",
	ObjectKind:  "object",
	ListKind:    "list",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsScalar returns true for every kind other than ObjectKind and ListKind.
func (k Kind) IsScalar() bool {
	return k > InvalidKind && k < ObjectKind
}
