package executor

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

// variablesFromGo converts decoded JSON variables into values.
func variablesFromGo(raw map[string]any) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(raw))
	for name, v := range raw {
		cv, err := value.FromGo(v)
		if err != nil {
			return nil, gqlerror.Errorf("Variable \"$%s\" cannot be decoded: %v", name, err)
		}
		out[name] = cv
	}
	return out, nil
}

// coerceVariableValues coerces the supplied variables to the types the
// operation declares. Missing variables take their default; a missing
// non-null variable without a default is an error. Variables the
// operation does not declare are dropped.
func coerceVariableValues(
	s *schema.Schema,
	op *ast.OperationDefinition,
	variables map[string]value.Value,
) (map[string]value.Value, error) {
	coerced := make(map[string]value.Value, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		ref := schema.FromAST(def.Type)
		v, ok := variables[def.Variable]
		if !ok {
			switch {
			case def.DefaultValue != nil:
				dv, err := value.FromAST(def.DefaultValue, nil)
				if err != nil {
					return nil, gqlerror.ErrorPosf(def.Position, "Variable \"$%s\" has invalid default value: %v", def.Variable, err)
				}
				v = dv
			case ref.IsNonNull():
				return nil, gqlerror.ErrorPosf(def.Position, "Variable \"$%s\" of required type %q was not provided.", def.Variable, ref.String())
			default:
				continue
			}
		}
		cv, err := s.CoerceInput(v, ref)
		if err != nil {
			return nil, gqlerror.ErrorPosf(def.Position, "Variable \"$%s\" got invalid value %s; %v", def.Variable, value.Literal(v), err)
		}
		coerced[def.Variable] = cv
	}
	return coerced, nil
}
