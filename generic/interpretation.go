package generic

// Interpreted is implemented by statically typed values that can be routed
// through the generic model by a codec.
type Interpreted interface {
	// Interpretation returns the hook registered under the given name, or
	// false if the value has no such interpretation.
	Interpretation(name string) (Interpretation, bool)
}

// Interpretation is a named, bidirectional conversion between a statically
// typed value and a generic Value. An Interpretation is bound to the
// statically typed value it was obtained from: FromGeneric replaces that
// value's contents.
type Interpretation interface {
	// Type returns the generic type produced by ToGeneric and accepted by
	// FromGeneric.
	Type() Type
	// ToGeneric converts the bound value to a generic value. A nil bound
	// value converts to an absent value of Type().
	ToGeneric() (Value, error)
	// FromGeneric reconstructs the bound value from a generic value. An
	// absent value clears it.
	FromGeneric(v Value) error
}

// FindInterpretation returns the first of the enabled interpretations that
// v supports. It returns false if v is not Interpreted or supports none of
// them.
func FindInterpretation(v any, enabled []string) (Interpretation, bool) {
	in, ok := v.(Interpreted)
	if !ok {
		return nil, false
	}
	for _, name := range enabled {
		if interp, ok := in.Interpretation(name); ok {
			return interp, true
		}
	}
	return nil, false
}
