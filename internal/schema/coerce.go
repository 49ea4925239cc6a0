package schema

import (
	"fmt"
	"math"

	"github.com/hanpama/gqlcore/internal/value"
)

// CoerceInput coerces v to the input type ref: non-null and list wrappers,
// built-in scalars, enums and input objects with their defaults. Custom
// scalars pass through unchanged. Variable references are left in place so
// literals can be checked before variables are known.
func (s *Schema) CoerceInput(v value.Value, ref *TypeRef) (value.Value, error) {
	if _, ok := v.(value.Variable); ok {
		return v, nil
	}

	// Handle Non-Null wrapper
	if ref.IsNonNull() {
		if value.IsNull(v) {
			return nil, fmt.Errorf("Expected value of non-null type %q, found null", ref.String())
		}
		return s.CoerceInput(v, ref.OfType)
	}

	// Handle null for nullable types
	if value.IsNull(v) {
		return value.Null{}, nil
	}

	if ref.Kind == TypeRefKindList {
		return s.coerceList(v, ref)
	}

	t := s.Types[ref.Named]
	if t == nil {
		return nil, fmt.Errorf("Unknown type %q", ref.Named)
	}
	switch t.Kind {
	case TypeKindScalar:
		return coerceScalar(v, t.Name)
	case TypeKindEnum:
		return coerceEnum(v, t)
	case TypeKindInputObject:
		return s.coerceInputObject(v, t)
	}
	return nil, fmt.Errorf("Type %q is not an input type", t.Name)
}

// coerceList coerces each item; a single value becomes a list of one.
func (s *Schema) coerceList(v value.Value, ref *TypeRef) (value.Value, error) {
	list, ok := v.(value.List)
	if !ok {
		item, err := s.CoerceInput(v, ref.OfType)
		if err != nil {
			return nil, err
		}
		return value.List{item}, nil
	}
	out := make(value.List, len(list))
	for i, item := range list {
		ci, err := s.CoerceInput(item, ref.OfType)
		if err != nil {
			return nil, fmt.Errorf("In element #%d: %w", i, err)
		}
		out[i] = ci
	}
	return out, nil
}

func (s *Schema) coerceInputObject(v value.Value, t *Type) (value.Value, error) {
	obj, ok := v.(*value.Object)
	if !ok {
		return nil, fmt.Errorf("Expected type %q to be an object, found %s", t.Name, value.Literal(v))
	}
	for _, name := range obj.Keys() {
		if t.InputField(name) == nil {
			return nil, fmt.Errorf("Field %q is not defined by type %q", name, t.Name)
		}
	}

	out := value.NewObject()
	for _, field := range t.InputFields {
		fv, ok := obj.Get(field.Name)
		if !ok {
			if field.DefaultValue != nil {
				out.Set(field.Name, field.DefaultValue)
			} else if field.Type.IsNonNull() {
				return nil, fmt.Errorf("Field %q of required type %q was not provided", field.Name, field.Type.String())
			}
			continue
		}
		cv, err := s.CoerceInput(fv, field.Type)
		if err != nil {
			return nil, fmt.Errorf("In field %q: %w", field.Name, err)
		}
		out.Set(field.Name, cv)
	}

	if t.OneOf {
		set := 0
		for _, f := range out.Fields() {
			if !value.IsNull(f.Value) {
				set++
			}
		}
		if set != 1 || out.Len() != 1 {
			return nil, fmt.Errorf("OneOf input object %q must specify exactly one non-null field", t.Name)
		}
	}
	return out, nil
}

func coerceEnum(v value.Value, t *Type) (value.Value, error) {
	var name string
	switch v := v.(type) {
	case value.Enum:
		name = string(v)
	case value.String:
		// Variables arrive as JSON strings.
		name = string(v)
	default:
		return nil, fmt.Errorf("Enum %q cannot represent non-enum value: %s", t.Name, value.Literal(v))
	}
	if t.EnumValue(name) == nil {
		return nil, fmt.Errorf("Value %q does not exist in %q enum", name, t.Name)
	}
	return value.Enum(name), nil
}

// Basic scalar coercion
func coerceScalar(v value.Value, name string) (value.Value, error) {
	switch name {
	case "Int":
		return coerceToInt(v)
	case "Float":
		return coerceToFloat(v)
	case "String":
		return coerceToString(v)
	case "Boolean":
		return coerceToBoolean(v)
	case "ID":
		return coerceToID(v)
	default:
		// For custom scalars and other types, return as-is
		return v, nil
	}
}

func coerceToInt(v value.Value) (value.Value, error) {
	n, ok := v.(value.Number)
	if !ok || !n.IsInteger() {
		return nil, fmt.Errorf("Int cannot represent non-integer value: %s", value.Literal(v))
	}
	i, err := n.Int64()
	if err != nil || i > math.MaxInt32 || i < math.MinInt32 {
		return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %s", value.Literal(v))
	}
	return value.NewInt(i), nil
}

func coerceToFloat(v value.Value) (value.Value, error) {
	n, ok := v.(value.Number)
	if !ok {
		return nil, fmt.Errorf("Float cannot represent non numeric value: %s", value.Literal(v))
	}
	if _, err := n.Float64(); err != nil {
		return nil, fmt.Errorf("Float cannot represent non numeric value: %s", value.Literal(v))
	}
	return n, nil
}

func coerceToString(v value.Value) (value.Value, error) {
	if s, ok := v.(value.String); ok {
		return s, nil
	}
	return nil, fmt.Errorf("String cannot represent a non string value: %s", value.Literal(v))
}

func coerceToBoolean(v value.Value) (value.Value, error) {
	if b, ok := v.(value.Boolean); ok {
		return b, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %s", value.Literal(v))
}

func coerceToID(v value.Value) (value.Value, error) {
	switch v := v.(type) {
	case value.String:
		return v, nil
	case value.Number:
		if v.IsInteger() {
			i, err := v.Int64()
			if err == nil {
				return value.String(value.NewInt(i).String()), nil
			}
		}
	}
	return nil, fmt.Errorf("ID cannot represent value: %s", value.Literal(v))
}
