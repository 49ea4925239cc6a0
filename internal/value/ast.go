package value

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// FromAST converts a literal into a Value. Variable references are looked
// up in vars; with a nil vars map they are kept as Variable so that
// validation can inspect them. A reference to a variable missing from a
// non-nil map becomes Null, except as an input object field, where the
// field is left out so that its default applies.
func FromAST(v *ast.Value, vars map[string]Value) (Value, error) {
	if v == nil {
		return Null{}, nil
	}
	switch v.Kind {
	case ast.Variable:
		if vars == nil {
			return Variable(v.Raw), nil
		}
		if val, ok := vars[v.Raw]; ok && val != nil {
			return val, nil
		}
		return Null{}, nil
	case ast.IntValue, ast.FloatValue:
		return ParseNumber(v.Raw)
	case ast.StringValue, ast.BlockValue:
		return String(v.Raw), nil
	case ast.BooleanValue:
		switch v.Raw {
		case "true":
			return Boolean(true), nil
		case "false":
			return Boolean(false), nil
		}
		return nil, fmt.Errorf("invalid boolean %q", v.Raw)
	case ast.NullValue:
		return Null{}, nil
	case ast.EnumValue:
		return Enum(v.Raw), nil
	case ast.ListValue:
		list := make(List, 0, len(v.Children))
		for _, child := range v.Children {
			item, err := FromAST(child.Value, vars)
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		return list, nil
	case ast.ObjectValue:
		obj := NewObject()
		for _, child := range v.Children {
			if missingVariable(child.Value, vars) {
				continue
			}
			item, err := FromAST(child.Value, vars)
			if err != nil {
				return nil, err
			}
			obj.Set(child.Name, item)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unknown value kind %d", v.Kind)
}

func missingVariable(v *ast.Value, vars map[string]Value) bool {
	if v == nil || v.Kind != ast.Variable || vars == nil {
		return false
	}
	val, ok := vars[v.Raw]
	return !ok || val == nil
}

// HasVariables reports whether v references any variable.
func HasVariables(v Value) bool {
	switch v := v.(type) {
	case Variable:
		return true
	case List:
		for _, item := range v {
			if HasVariables(item) {
				return true
			}
		}
	case *Object:
		for _, f := range v.Fields() {
			if HasVariables(f.Value) {
				return true
			}
		}
	}
	return false
}
