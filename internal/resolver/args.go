package resolver

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

// coerceArguments coerces argument values for a field or directive. An
// argument bound to a variable that was not provided counts as absent, so
// the declared default applies.
func coerceArguments(
	s *schema.Schema,
	defs []*schema.InputValue,
	arguments ast.ArgumentList,
	variables map[string]value.Value,
) (map[string]value.Value, error) {
	coerced := make(map[string]value.Value, len(defs))
	for _, def := range defs {
		var (
			raw     value.Value
			present bool
		)
		if arg := arguments.ForName(def.Name); arg != nil && arg.Value != nil {
			if arg.Value.Kind == ast.Variable {
				raw, present = variables[arg.Value.Raw]
			} else {
				v, err := value.FromAST(arg.Value, variables)
				if err != nil {
					return nil, fmt.Errorf("Argument %q has invalid value: %w", def.Name, err)
				}
				raw, present = v, true
			}
		}
		if !present {
			if def.DefaultValue != nil {
				coerced[def.Name] = def.DefaultValue
			} else if def.Type.IsNonNull() {
				return nil, fmt.Errorf("Argument %q of required type %q was not provided.", def.Name, def.Type.String())
			}
			continue
		}
		cv, err := s.CoerceInput(raw, def.Type)
		if err != nil {
			return nil, fmt.Errorf("Argument %q has invalid value %s: %w", def.Name, value.Literal(raw), err)
		}
		coerced[def.Name] = cv
	}
	return coerced, nil
}
