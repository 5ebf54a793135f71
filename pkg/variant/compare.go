package variant

import (
	"bytes"
	"fmt"
	"strings"
)

// ErrIncomparable is returned by [Compare] for value pairs that have no
// defined ordering.
type ErrIncomparable struct {
	Left  Type
	Right Type
}

// Error implements [error].
func (e ErrIncomparable) Error() string {
	return fmt.Sprintf("values of types %s and %s are not comparable", e.Left, e.Right)
}

// Compare orders a before, equal to or after b, returning -1, 0 or 1.
// Numeric kinds compare cross-type through float64; strings, bools, uuids and
// tuples compare within their own kind; null orders equal to null and before
// everything else. Every other pairing is an [ErrIncomparable].
func Compare(a, b Variant) (int, error) {
	if a.typ.IsNumeric() && b.typ.IsNumeric() {
		return compareFloats(a.Float(), b.Float()), nil
	}
	if a.typ == TypeNull || b.typ == TypeNull {
		switch {
		case a.typ == b.typ:
			return 0, nil
		case a.typ == TypeNull:
			return -1, nil
		default:
			return 1, nil
		}
	}
	if a.typ != b.typ {
		return 0, ErrIncomparable{Left: a.typ, Right: b.typ}
	}
	switch a.typ {
	case TypeString:
		return strings.Compare(a.s, b.s), nil
	case TypeBool:
		switch {
		case a.b == b.b:
			return 0, nil
		case !a.b:
			return -1, nil
		default:
			return 1, nil
		}
	case TypeUuid:
		return bytes.Compare(a.u[:], b.u[:]), nil
	case TypeTuple, TypeComposite:
		return compareTuples(a.sub, b.sub)
	}
	return 0, ErrIncomparable{Left: a.typ, Right: b.typ}
}

// Equal reports whether a and b compare as equal. Incomparable pairs are not
// equal.
func Equal(a, b Variant) bool {
	c, err := Compare(a, b)
	return err == nil && c == 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTuples(a, b Array) (int, error) {
	for n := range a {
		if n >= len(b) {
			return 1, nil
		}
		c, err := Compare(a[n], b[n])
		if err != nil || c != 0 {
			return c, err
		}
	}
	if len(a) < len(b) {
		return -1, nil
	}
	return 0, nil
}
