// Package variant contains the tagged value model shared by query
// conditions, sort orders, aggregations and update payloads.
package variant

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-reflect"
	"github.com/google/uuid"
)

// Type tags a [Variant] payload. The numeric values double as the value-kind
// tags written to the binary buffer, so they must never be renumbered.
type Type int

const (
	TypeInt64     Type = 0
	TypeDouble    Type = 1
	TypeString    Type = 2
	TypeBool      Type = 3
	TypeNull      Type = 4
	TypeInt       Type = 8
	TypeUndefined Type = 9
	TypeComposite Type = 10
	TypeTuple     Type = 11
	TypeUuid      Type = 12
)

// String implements [fmt.Stringer].
func (t Type) String() string {
	switch t {
	case TypeInt64:
		return "int64"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeNull:
		return "null"
	case TypeInt:
		return "int"
	case TypeUndefined:
		return "undefined"
	case TypeComposite:
		return "composite"
	case TypeTuple:
		return "tuple"
	case TypeUuid:
		return "uuid"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// IsNumeric reports whether values of t take part in relaxed numeric
// comparison.
func (t Type) IsNumeric() bool {
	return t == TypeInt || t == TypeInt64 || t == TypeDouble
}

// Variant is a small immutable tagged union. The zero value is an int64
// zero, since [TypeInt64] is the zero tag.
type Variant struct {
	typ Type
	i   int64
	f   float64
	s   string
	b   bool
	u   uuid.UUID
	sub Array
}

// NewInt returns an int Variant.
func NewInt(v int) Variant { return Variant{typ: TypeInt, i: int64(v)} }

// NewInt64 returns an int64 Variant.
func NewInt64(v int64) Variant { return Variant{typ: TypeInt64, i: v} }

// NewDouble returns a double Variant.
func NewDouble(v float64) Variant { return Variant{typ: TypeDouble, f: v} }

// NewString returns a string Variant.
func NewString(v string) Variant { return Variant{typ: TypeString, s: v} }

// NewBool returns a bool Variant.
func NewBool(v bool) Variant { return Variant{typ: TypeBool, b: v} }

// NewNull returns the null Variant.
func NewNull() Variant { return Variant{typ: TypeNull} }

// NewUuid returns a uuid Variant.
func NewUuid(v uuid.UUID) Variant { return Variant{typ: TypeUuid, u: v} }

// NewTuple returns a tuple Variant holding vals.
func NewTuple(vals ...Variant) Variant {
	return Variant{typ: TypeTuple, sub: Array(vals)}
}

// NewComposite returns a composite Variant holding the sub-values of a
// composite index field.
func NewComposite(vals ...Variant) Variant {
	return Variant{typ: TypeComposite, sub: Array(vals)}
}

// FromInterface converts a plain Go value into a Variant. Slices become
// tuples, nil becomes null.
func FromInterface(v any) (Variant, error) {
	switch t := v.(type) {
	case nil:
		return NewNull(), nil
	case Variant:
		return t, nil
	case bool:
		return NewBool(t), nil
	case int:
		return NewInt(t), nil
	case int8:
		return NewInt64(int64(t)), nil
	case int16:
		return NewInt64(int64(t)), nil
	case int32:
		return NewInt64(int64(t)), nil
	case int64:
		return NewInt64(t), nil
	case uint:
		return NewInt64(int64(t)), nil
	case uint8:
		return NewInt64(int64(t)), nil
	case uint16:
		return NewInt64(int64(t)), nil
	case uint32:
		return NewInt64(int64(t)), nil
	case uint64:
		return NewInt64(int64(t)), nil
	case float32:
		return NewDouble(float64(t)), nil
	case float64:
		return NewDouble(t), nil
	case string:
		return NewString(t), nil
	case uuid.UUID:
		return NewUuid(t), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		sub := make(Array, 0, rv.Len())
		for n := 0; n < rv.Len(); n++ {
			el, err := FromInterface(rv.Index(n).Interface())
			if err != nil {
				return Variant{}, err
			}
			sub = append(sub, el)
		}
		return NewTuple(sub...), nil
	case reflect.Bool:
		return NewBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NewInt64(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return NewDouble(rv.Float()), nil
	case reflect.String:
		return NewString(rv.String()), nil
	}
	return Variant{}, fmt.Errorf("cannot convert %T to a variant", v)
}

// Type returns the payload tag.
func (v Variant) Type() Type { return v.typ }

// Int64 returns the integer payload of an int or int64 Variant.
func (v Variant) Int64() int64 { return v.i }

// Float returns the numeric payload widened to float64. Bool widens to 0/1.
func (v Variant) Float() float64 {
	switch v.typ {
	case TypeInt, TypeInt64:
		return float64(v.i)
	case TypeDouble:
		return v.f
	case TypeBool:
		if v.b {
			return 1
		}
		return 0
	}
	return 0
}

// Str returns the string payload.
func (v Variant) Str() string { return v.s }

// Bool returns the bool payload.
func (v Variant) Bool() bool { return v.b }

// Uuid returns the uuid payload.
func (v Variant) Uuid() uuid.UUID { return v.u }

// Tuple returns the sub-values of a tuple or composite Variant.
func (v Variant) Tuple() Array { return v.sub }

// Interface converts the Variant back into a plain Go value.
func (v Variant) Interface() any {
	switch v.typ {
	case TypeInt:
		return int(v.i)
	case TypeInt64:
		return v.i
	case TypeDouble:
		return v.f
	case TypeString:
		return v.s
	case TypeBool:
		return v.b
	case TypeNull:
		return nil
	case TypeUuid:
		return v.u
	case TypeTuple, TypeComposite:
		out := make([]any, len(v.sub))
		for n, el := range v.sub {
			out[n] = el.Interface()
		}
		return out
	}
	return nil
}

// String implements [fmt.Stringer].
func (v Variant) String() string {
	switch v.typ {
	case TypeInt, TypeInt64:
		return strconv.FormatInt(v.i, 10)
	case TypeDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeString:
		return v.s
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeNull:
		return "null"
	case TypeUuid:
		return v.u.String()
	case TypeTuple, TypeComposite:
		return fmt.Sprint(v.Interface())
	}
	return "<undefined>"
}
