package resolver

import (
	"fmt"
	"math"
	"sort"

	"github.com/hanpama/gqlcore/internal/value"
)

// Built-in scalar resolvers. Each one resolves to itself and converts from
// and to value.Value for use as an argument type.
type (
	Int     int
	Int8    int8
	Int16   int16
	Int32   int32
	Int64   int64
	Uint    uint
	Uint8   uint8
	Uint16  uint16
	Uint32  uint32
	Uint64  uint64
	Float   float64
	Float32 float32
	Boolean bool
	String  string
	ID      string
)

func (v Int) ResolveField(*FieldContext) (value.Value, error)     { return value.NewInt(int64(v)), nil }
func (v Int8) ResolveField(*FieldContext) (value.Value, error)    { return value.NewInt(int64(v)), nil }
func (v Int16) ResolveField(*FieldContext) (value.Value, error)   { return value.NewInt(int64(v)), nil }
func (v Int32) ResolveField(*FieldContext) (value.Value, error)   { return value.NewInt(int64(v)), nil }
func (v Int64) ResolveField(*FieldContext) (value.Value, error)   { return value.NewInt(int64(v)), nil }
func (v Uint) ResolveField(*FieldContext) (value.Value, error)    { return value.NewUint(uint64(v)), nil }
func (v Uint8) ResolveField(*FieldContext) (value.Value, error)   { return value.NewUint(uint64(v)), nil }
func (v Uint16) ResolveField(*FieldContext) (value.Value, error)  { return value.NewUint(uint64(v)), nil }
func (v Uint32) ResolveField(*FieldContext) (value.Value, error)  { return value.NewUint(uint64(v)), nil }
func (v Uint64) ResolveField(*FieldContext) (value.Value, error)  { return value.NewUint(uint64(v)), nil }
func (v Float) ResolveField(*FieldContext) (value.Value, error)   { return v.MarshalValue() }
func (v Float32) ResolveField(*FieldContext) (value.Value, error) { return v.MarshalValue() }
func (v Boolean) ResolveField(*FieldContext) (value.Value, error) { return value.Boolean(v), nil }
func (v String) ResolveField(*FieldContext) (value.Value, error)  { return value.String(v), nil }
func (v ID) ResolveField(*FieldContext) (value.Value, error)      { return value.String(v), nil }

func (v Int) MarshalValue() (value.Value, error)     { return value.NewInt(int64(v)), nil }
func (v Int8) MarshalValue() (value.Value, error)    { return value.NewInt(int64(v)), nil }
func (v Int16) MarshalValue() (value.Value, error)   { return value.NewInt(int64(v)), nil }
func (v Int32) MarshalValue() (value.Value, error)   { return value.NewInt(int64(v)), nil }
func (v Int64) MarshalValue() (value.Value, error)   { return value.NewInt(int64(v)), nil }
func (v Uint) MarshalValue() (value.Value, error)    { return value.NewUint(uint64(v)), nil }
func (v Uint8) MarshalValue() (value.Value, error)   { return value.NewUint(uint64(v)), nil }
func (v Uint16) MarshalValue() (value.Value, error)  { return value.NewUint(uint64(v)), nil }
func (v Uint32) MarshalValue() (value.Value, error)  { return value.NewUint(uint64(v)), nil }
func (v Uint64) MarshalValue() (value.Value, error)  { return value.NewUint(uint64(v)), nil }
func (v Boolean) MarshalValue() (value.Value, error) { return value.Boolean(v), nil }
func (v String) MarshalValue() (value.Value, error)  { return value.String(v), nil }
func (v ID) MarshalValue() (value.Value, error)      { return value.String(v), nil }

func (v Float) MarshalValue() (value.Value, error) {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		return nil, fmt.Errorf("Float cannot represent non numeric value: %v", float64(v))
	}
	return value.NewFloat(float64(v)), nil
}

func (v Float32) MarshalValue() (value.Value, error) {
	return Float(v).MarshalValue()
}

func (v *Int) UnmarshalValue(in value.Value) error    { return unmarshalSigned(in, v, math.MinInt, math.MaxInt) }
func (v *Int8) UnmarshalValue(in value.Value) error   { return unmarshalSigned(in, v, math.MinInt8, math.MaxInt8) }
func (v *Int16) UnmarshalValue(in value.Value) error  { return unmarshalSigned(in, v, math.MinInt16, math.MaxInt16) }
func (v *Int32) UnmarshalValue(in value.Value) error  { return unmarshalSigned(in, v, math.MinInt32, math.MaxInt32) }
func (v *Int64) UnmarshalValue(in value.Value) error  { return unmarshalSigned(in, v, math.MinInt64, math.MaxInt64) }
func (v *Uint) UnmarshalValue(in value.Value) error   { return unmarshalUnsigned(in, v, math.MaxUint) }
func (v *Uint8) UnmarshalValue(in value.Value) error  { return unmarshalUnsigned(in, v, math.MaxUint8) }
func (v *Uint16) UnmarshalValue(in value.Value) error { return unmarshalUnsigned(in, v, math.MaxUint16) }
func (v *Uint32) UnmarshalValue(in value.Value) error { return unmarshalUnsigned(in, v, math.MaxUint32) }
func (v *Uint64) UnmarshalValue(in value.Value) error { return unmarshalUnsigned(in, v, math.MaxUint64) }

func (v *Float) UnmarshalValue(in value.Value) error {
	n, ok := in.(value.Number)
	if !ok {
		return fmt.Errorf("expected a number, found %s", value.Literal(in))
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	*v = Float(f)
	return nil
}

func (v *Float32) UnmarshalValue(in value.Value) error {
	var f Float
	if err := f.UnmarshalValue(in); err != nil {
		return err
	}
	if math.Abs(float64(f)) > math.MaxFloat32 {
		return fmt.Errorf("%v overflows a 32-bit float", float64(f))
	}
	*v = Float32(f)
	return nil
}

func (v *Boolean) UnmarshalValue(in value.Value) error {
	b, ok := in.(value.Boolean)
	if !ok {
		return fmt.Errorf("expected a boolean, found %s", value.Literal(in))
	}
	*v = Boolean(b)
	return nil
}

func (v *String) UnmarshalValue(in value.Value) error {
	s, ok := in.(value.String)
	if !ok {
		return fmt.Errorf("expected a string, found %s", value.Literal(in))
	}
	*v = String(s)
	return nil
}

// UnmarshalValue accepts strings and integers.
func (v *ID) UnmarshalValue(in value.Value) error {
	switch in := in.(type) {
	case value.String:
		*v = ID(in)
		return nil
	case value.Number:
		if in.IsInteger() {
			*v = ID(in.String())
			return nil
		}
	}
	return fmt.Errorf("expected an ID, found %s", value.Literal(in))
}

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func unmarshalSigned[T signed](in value.Value, dst *T, lo, hi int64) error {
	n, ok := in.(value.Number)
	if !ok {
		return fmt.Errorf("expected an integer, found %s", value.Literal(in))
	}
	i, err := n.Int64()
	if err != nil {
		return err
	}
	if i < lo || i > hi {
		return fmt.Errorf("%d overflows %T", i, *dst)
	}
	*dst = T(i)
	return nil
}

func unmarshalUnsigned[T unsigned](in value.Value, dst *T, hi uint64) error {
	n, ok := in.(value.Number)
	if !ok {
		return fmt.Errorf("expected an integer, found %s", value.Literal(in))
	}
	u, err := n.Uint64()
	if err != nil {
		return err
	}
	if u > hi {
		return fmt.Errorf("%d overflows %T", u, *dst)
	}
	*dst = T(u)
	return nil
}

// List resolves each item in order. Items that are composite resolve the
// field's selection set each. A failed nullable item becomes null.
type List[T FieldResolver] []T

func (l List[T]) ResolveField(ctx *FieldContext) (value.Value, error) {
	out := make(value.List, len(l))
	for i, item := range l {
		v, err := ResolveItem(ctx, i, item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Option is a value that may be absent; absent resolves to null.
type Option[T FieldResolver] struct {
	value T
	ok    bool
}

func Some[T FieldResolver](v T) Option[T] { return Option[T]{value: v, ok: true} }

func None[T FieldResolver]() Option[T] { return Option[T]{} }

func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

func (o Option[T]) ResolveField(ctx *FieldContext) (value.Value, error) {
	if !o.ok {
		return value.Null{}, nil
	}
	return Resolve(ctx, o.value)
}

// Map resolves to an object by converting each entry with value.FromGo.
// Keys are sorted.
type Map[V any] map[string]V

func (m Map[V]) ResolveField(*FieldContext) (value.Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := value.NewObject()
	for _, k := range keys {
		v, err := value.FromGo(m[k])
		if err != nil {
			return nil, fmt.Errorf("map entry %q: %w", k, err)
		}
		out.Set(k, v)
	}
	return out, nil
}

// Raw resolves to a precomputed value.
type Raw struct {
	Value value.Value
}

func (r Raw) ResolveField(*FieldContext) (value.Value, error) {
	if r.Value == nil {
		return value.Null{}, nil
	}
	return r.Value, nil
}

// Any resolves an arbitrary Go value through value.FromGo.
func Any(v any) FieldResolver {
	return anyResolver{v}
}

type anyResolver struct{ v any }

func (a anyResolver) ResolveField(*FieldContext) (value.Value, error) {
	return value.FromGo(a.v)
}

// FieldFunc resolves a field with a function.
type FieldFunc func(ctx *FieldContext) (value.Value, error)

func (f FieldFunc) ResolveField(ctx *FieldContext) (value.Value, error) { return f(ctx) }

// Object is a hand-written object resolver dispatching on field name.
// Fields missing from the map resolve to null.
type Object struct {
	Name   string
	Fields map[string]FieldFunc
}

func (o *Object) TypeName() string { return o.Name }

func (o *Object) ResolveField(ctx *FieldContext) (value.Value, error) {
	f, ok := o.Fields[ctx.Field.Name]
	if !ok {
		return value.Null{}, nil
	}
	return f(ctx)
}

func (o *Object) ResolveSelectionSet(ctx *SelectionSetContext) (value.Value, error) {
	return ResolveSelectionSet(ctx, o, true)
}
