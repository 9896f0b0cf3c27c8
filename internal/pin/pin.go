package pin

import (
	"errors"
	"strconv"
)

// ErrMalformed is returned when a pin string cannot be parsed.
// A malformed address is distinct from a syntactically valid address that
// no widget is bound to; callers must not conflate the two.
var ErrMalformed = errors.New("pin: malformed address")

// Type identifies the kind of pin a widget is bound to.
type Type int

// Supported pin types.
const (
	Digital Type = iota
	Analog
	Virtual
)

// Tag returns the one-character wire tag for the pin type.
func (t Type) Tag() byte {
	switch t {
	case Digital:
		return 'd'
	case Analog:
		return 'a'
	case Virtual:
		return 'v'
	default:
		return '?'
	}
}

// typeFromTag maps a tag character to a pin type. Both cases are accepted.
func typeFromTag(c byte) (Type, bool) {
	switch c {
	case 'd', 'D':
		return Digital, true
	case 'a', 'A':
		return Analog, true
	case 'v', 'V':
		return Virtual, true
	default:
		return 0, false
	}
}

// Address identifies a single control point: a pin type plus a small
// non-negative pin number.
type Address struct {
	Type   Type
	Number uint8
}

// Parse converts the external representation into an Address.
// It fails with ErrMalformed when the tag is unrecognised or the numeric
// part is missing or not a valid non-negative integer.
func Parse(s string) (Address, error) {
	if len(s) < 2 {
		return Address{}, ErrMalformed
	}
	t, ok := typeFromTag(s[0])
	if !ok {
		return Address{}, ErrMalformed
	}
	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil {
		return Address{}, ErrMalformed
	}
	return Address{Type: t, Number: uint8(n)}, nil
}

// String returns the canonical external representation, e.g. "v5".
// Parse(a.String()) always yields a back.
func (a Address) String() string {
	return string(a.Type.Tag()) + strconv.Itoa(int(a.Number))
}
