package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Marshaler is implemented by types that render themselves as a Value.
type Marshaler interface {
	MarshalValue() (Value, error)
}

// Unmarshaler is implemented by input types that can be built from a
// coerced Value.
type Unmarshaler interface {
	UnmarshalValue(Value) error
}

// FromGo converts a Go value into a Value. Common scalar, slice and map
// types are converted directly; anything else goes through encoding/json.
// Map keys are sorted so the output does not depend on map iteration.
func FromGo(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case Marshaler:
		return v.MarshalValue()
	case bool:
		return Boolean(v), nil
	case string:
		return String(v), nil
	case int:
		return NewInt(int64(v)), nil
	case int8:
		return NewInt(int64(v)), nil
	case int16:
		return NewInt(int64(v)), nil
	case int32:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case uint:
		return NewUint(uint64(v)), nil
	case uint8:
		return NewUint(uint64(v)), nil
	case uint16:
		return NewUint(uint64(v)), nil
	case uint32:
		return NewUint(uint64(v)), nil
	case uint64:
		return NewUint(v), nil
	case float32:
		return floatValue(float64(v))
	case float64:
		return floatValue(v)
	case json.Number:
		return ParseNumber(v.String())
	case []any:
		list := make(List, 0, len(v))
		for _, item := range v {
			iv, err := FromGo(item)
			if err != nil {
				return nil, err
			}
			list = append(list, iv)
		}
		return list, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			iv, err := FromGo(v[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, iv)
		}
		return obj, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert %T: %w", v, err)
	}
	return Unmarshal(data)
}

func floatValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("float %v is not representable", f)
	}
	return NewFloat(f), nil
}

// ToGo converts v into plain Go values: nil, bool, string, int64 or float64,
// []any and map[string]any. Variables and enums become strings.
func ToGo(v Value) any {
	switch v := v.(type) {
	case nil, Null:
		return nil
	case Boolean:
		return bool(v)
	case String:
		return string(v)
	case Enum:
		return string(v)
	case Variable:
		return "$" + string(v)
	case Number:
		if i, err := v.Int64(); err == nil && v.IsInteger() {
			return i
		}
		f, _ := v.Float64()
		return f
	case List:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = ToGo(item)
		}
		return out
	case *Object:
		out := make(map[string]any, v.Len())
		for _, f := range v.Fields() {
			out[f.Name] = ToGo(f.Value)
		}
		return out
	}
	return nil
}

// Decode stores v into dst. Unmarshaler destinations are called directly,
// everything else is filled through encoding/json.
func Decode(v Value, dst any) error {
	if u, ok := dst.(Unmarshaler); ok {
		return u.UnmarshalValue(v)
	}
	if v == nil {
		v = Null{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
