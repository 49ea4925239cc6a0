package validation

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

// argumentsOfCorrectType checks literal argument values against the
// argument types. Each nested value is checked on its own hook, so list
// items and input object fields report individually.
type argumentsOfCorrectType struct{ Base }

func (argumentsOfCorrectType) EnterValue(ctx *Context, v *ast.Value) {
	if ctx.VariableDefinition() == nil {
		checkLiteral(ctx, v, ctx.InputType())
	}
}

// defaultValuesOfCorrectType checks variable default values against the
// variable types.
type defaultValuesOfCorrectType struct{ Base }

func (defaultValuesOfCorrectType) EnterValue(ctx *Context, v *ast.Value) {
	if ctx.VariableDefinition() == nil {
		return
	}
	if v.Kind == ast.Variable {
		ctx.Report(v.Position, "Default value of variable \"$%s\" cannot reference variable \"$%s\".", ctx.VariableDefinition().Variable, v.Raw)
		return
	}
	checkLiteral(ctx, v, ctx.InputType())
}

func checkLiteral(ctx *Context, v *ast.Value, expected *schema.TypeRef) {
	if expected == nil || v.Kind == ast.Variable {
		return
	}
	if v.Kind == ast.NullValue {
		if expected.IsNonNull() {
			ctx.Report(v.Position, "Expected value of type %q, found null.", expected.String())
		}
		return
	}

	t := expected.Nullable()
	if v.Kind == ast.ListValue {
		if !t.IsList() {
			ctx.Report(v.Position, "Expected value of type %q, found %s.", expected.String(), v.String())
		}
		return
	}
	// A single value is accepted where a list is expected.
	for t.IsList() {
		t = t.Nullable().OfType.Nullable()
	}

	def := ctx.Schema.Types[t.Named]
	if def == nil {
		return
	}
	switch def.Kind {
	case schema.TypeKindInputObject:
		checkObjectLiteral(ctx, v, def, expected)
	case schema.TypeKindEnum:
		if v.Kind != ast.EnumValue {
			ctx.Report(v.Position, "Enum %q cannot represent non-enum value: %s.", def.Name, v.String())
		} else if def.EnumValue(v.Raw) == nil {
			ctx.Report(v.Position, "Value %q does not exist in %q enum.", v.Raw, def.Name)
		}
	case schema.TypeKindScalar:
		lit, err := value.FromAST(v, nil)
		if err == nil {
			_, err = ctx.Schema.CoerceInput(lit, schema.NamedType(def.Name))
		}
		if err != nil {
			ctx.Report(v.Position, "Expected value of type %q, found %s.", expected.String(), v.String())
		}
	}
}

func checkObjectLiteral(ctx *Context, v *ast.Value, def *schema.Type, expected *schema.TypeRef) {
	if v.Kind != ast.ObjectValue {
		ctx.Report(v.Position, "Expected value of type %q, found %s.", expected.String(), v.String())
		return
	}
	for _, child := range v.Children {
		if def.InputField(child.Name) == nil {
			ctx.Report(child.Position, "Field %q is not defined by type %q.", child.Name, def.Name)
		}
	}
	for _, f := range def.InputFields {
		if !f.Type.IsNonNull() || f.DefaultValue != nil {
			continue
		}
		if v.Children.ForName(f.Name) == nil {
			ctx.Report(v.Position, "Field \"%s.%s\" of required type %q was not provided.", def.Name, f.Name, f.Type.String())
		}
	}
	if def.OneOf {
		nonNull := 0
		for _, child := range v.Children {
			if child.Value != nil && child.Value.Kind != ast.NullValue {
				nonNull++
			}
		}
		if len(v.Children) != 1 || nonNull != 1 {
			ctx.Report(v.Position, "OneOf Input Object %q must specify exactly one key.", def.Name)
		}
	}
}
