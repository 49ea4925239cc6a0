// Package value holds the GraphQL value model shared by argument coercion,
// field resolution and response serialization.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindVariable
	KindNumber
	KindString
	KindBoolean
	KindEnum
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindVariable:
		return "Variable"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindEnum:
		return "Enum"
	case KindList:
		return "List"
	case KindObject:
		return "Object"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is any GraphQL value. A nil Value is treated as Null everywhere.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the zero value.
type Null struct{}

// Variable is a reference to an operation variable. It never appears in a
// resolved value.
type Variable string

// String holds a GraphQL String or ID.
type String string

// Boolean holds a GraphQL Boolean.
type Boolean bool

// Enum holds an enum value by name.
type Enum string

// List is an ordered sequence of values.
type List []Value

// Number holds an Int or a Float in its canonical textual form so that
// integers outside the float64 mantissa survive a round trip.
type Number struct {
	raw string
}

func (Null) Kind() Kind     { return KindNull }
func (Variable) Kind() Kind { return KindVariable }
func (String) Kind() Kind   { return KindString }
func (Boolean) Kind() Kind  { return KindBoolean }
func (Enum) Kind() Kind     { return KindEnum }
func (List) Kind() Kind     { return KindList }
func (Number) Kind() Kind   { return KindNumber }

func (Null) isValue()     {}
func (Variable) isValue() {}
func (String) isValue()   {}
func (Boolean) isValue()  {}
func (Enum) isValue()     {}
func (List) isValue()     {}
func (Number) isValue()   {}

// KindOf returns the kind of v, mapping nil to KindNull.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	return KindOf(v) == KindNull
}

func NewInt(i int64) Number {
	return Number{raw: strconv.FormatInt(i, 10)}
}

func NewUint(u uint64) Number {
	return Number{raw: strconv.FormatUint(u, 10)}
}

func NewFloat(f float64) Number {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return Number{raw: strconv.FormatFloat(f, 'f', -1, 64)}
	}
	return Number{raw: strconv.FormatFloat(f, 'g', -1, 64)}
}

// ParseNumber validates raw as a JSON/GraphQL number literal.
func ParseNumber(raw string) (Number, error) {
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return Number{}, fmt.Errorf("invalid number %q", raw)
	}
	return Number{raw: raw}, nil
}

func (n Number) String() string {
	if n.raw == "" {
		return "0"
	}
	return n.raw
}

// IsInteger reports whether the literal has no fraction or exponent part,
// or has one that still denotes a whole number.
func (n Number) IsInteger() bool {
	if !strings.ContainsAny(n.raw, ".eE") {
		return true
	}
	f, err := n.Float64()
	return err == nil && f == math.Trunc(f) && !math.IsInf(f, 0)
}

func (n Number) Int64() (int64, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%s is not an integer", n.raw)
	}
	return int64(f), nil
}

func (n Number) Uint64() (uint64, error) {
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return u, nil
	}
	i, err := n.Int64()
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("%s is negative", n.raw)
	}
	return uint64(i), nil
}

func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(n.String(), 64)
}

// Equal reports structural equality. Numbers compare by numeric value and
// objects compare independent of key order.
func Equal(a, b Value) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch a := a.(type) {
	case nil, Null:
		return true
	case Number:
		b := b.(Number)
		if a.raw == b.raw {
			return true
		}
		af, aerr := a.Float64()
		bf, berr := b.Float64()
		return aerr == nil && berr == nil && af == bf
	case List:
		b := b.(List)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case *Object:
		b := b.(*Object)
		if a.Len() != b.Len() {
			return false
		}
		for _, f := range a.Fields() {
			other, ok := b.Get(f.Name)
			if !ok || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Literal renders v as a GraphQL literal.
func Literal(v Value) string {
	var b strings.Builder
	writeLiteral(&b, v)
	return b.String()
}

func writeLiteral(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case Variable:
		b.WriteString("$" + string(v))
	case Number:
		b.WriteString(v.String())
	case String:
		b.WriteString(strconv.Quote(string(v)))
	case Boolean:
		b.WriteString(strconv.FormatBool(bool(v)))
	case Enum:
		b.WriteString(string(v))
	case List:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeLiteral(b, item)
		}
		b.WriteByte(']')
	case *Object:
		b.WriteByte('{')
		for i, f := range v.Fields() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			writeLiteral(b, f.Value)
		}
		b.WriteByte('}')
	}
}
