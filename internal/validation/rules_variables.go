package validation

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

type uniqueVariableNames struct{ Base }

func (uniqueVariableNames) EnterOperation(ctx *Context, op *ast.OperationDefinition) {
	seen := make(map[string]bool, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		if seen[def.Variable] {
			ctx.Report(def.Position, "There can be only one variable named \"$%s\".", def.Variable)
		}
		seen[def.Variable] = true
	}
}

type variablesAreInputTypes struct{ Base }

func (variablesAreInputTypes) EnterVariableDefinition(ctx *Context, def *ast.VariableDefinition) {
	if def.Type == nil {
		return
	}
	if t := ctx.Schema.Types[def.Type.Name()]; t != nil && !t.IsInput() {
		ctx.Report(def.Position, "Variable \"$%s\" cannot be non-input type %q.", def.Variable, def.Type.String())
	}
}

type noUndefinedVariables struct{ Base }

func (noUndefinedVariables) ExitDocument(ctx *Context, doc *ast.QueryDocument) {
	for _, op := range doc.Operations {
		reported := make(map[string]bool)
		for _, usage := range ctx.VariableUsages(op) {
			if op.VariableDefinitions.ForName(usage.Name) != nil || reported[usage.Name] {
				continue
			}
			reported[usage.Name] = true
			if op.Name != "" {
				ctx.Report(usage.Position, "Variable \"$%s\" is not defined by operation %q.", usage.Name, op.Name)
			} else {
				ctx.Report(usage.Position, "Variable \"$%s\" is not defined.", usage.Name)
			}
		}
	}
}

type noUnusedVariables struct{ Base }

func (noUnusedVariables) ExitDocument(ctx *Context, doc *ast.QueryDocument) {
	for _, op := range doc.Operations {
		used := make(map[string]bool)
		for _, usage := range ctx.VariableUsages(op) {
			used[usage.Name] = true
		}
		for _, def := range op.VariableDefinitions {
			if used[def.Variable] {
				continue
			}
			if op.Name != "" {
				ctx.Report(def.Position, "Variable \"$%s\" is never used in operation %q.", def.Variable, op.Name)
			} else {
				ctx.Report(def.Position, "Variable \"$%s\" is never used.", def.Variable)
			}
		}
	}
}

type variablesInAllowedPosition struct{ Base }

func (variablesInAllowedPosition) ExitDocument(ctx *Context, doc *ast.QueryDocument) {
	for _, op := range doc.Operations {
		for _, usage := range ctx.VariableUsages(op) {
			def := op.VariableDefinitions.ForName(usage.Name)
			if def == nil || usage.Type == nil || def.Type == nil {
				continue
			}
			varType := schema.FromAST(def.Type)
			if !allowedPosition(ctx.Schema, varType, def.DefaultValue, usage) {
				ctx.Report(usage.Position, "Variable \"$%s\" of type %q used in position expecting type %q.", usage.Name, varType.String(), usage.Type.String())
			}
		}
	}
}

// allowedPosition reports whether a variable of varType may be used where
// usage.Type is expected. A nullable variable may fill a non-null position
// when either side supplies a non-null default.
func allowedPosition(s *schema.Schema, varType *schema.TypeRef, varDefault *ast.Value, usage VariableUsage) bool {
	locType := usage.Type
	if locType.IsNonNull() && !varType.IsNonNull() {
		hasVarDefault := varDefault != nil && varDefault.Kind != ast.NullValue
		if !hasVarDefault && !usage.HasDefault {
			return false
		}
		locType = locType.Nullable()
	}
	return typeCanBeUsedAs(s, varType, locType)
}

func typeCanBeUsedAs(s *schema.Schema, t, as *schema.TypeRef) bool {
	if as.IsNonNull() {
		if !t.IsNonNull() {
			return false
		}
		return typeCanBeUsedAs(s, t.OfType, as.OfType)
	}
	t = t.Nullable()
	if as.Kind == schema.TypeRefKindList {
		return t.Kind == schema.TypeRefKindList && typeCanBeUsedAs(s, t.OfType, as.OfType)
	}
	if t.Kind == schema.TypeRefKindList {
		return false
	}
	return s.IsSubType(as.Named, t.Named)
}

// variablesOfCorrectType checks the supplied variable values of the
// selected operation against their declared types.
type variablesOfCorrectType struct{ Base }

func (variablesOfCorrectType) EnterOperation(ctx *Context, op *ast.OperationDefinition) {
	if ctx.Variables == nil || !selected(ctx, op) {
		return
	}
	for _, def := range op.VariableDefinitions {
		if def.Type == nil {
			continue
		}
		ref := schema.FromAST(def.Type)
		if t := ctx.Schema.Types[ref.GetNamedType()]; t == nil || !t.IsInput() {
			continue
		}
		v, ok := ctx.Variables[def.Variable]
		if !ok {
			if def.DefaultValue == nil && ref.IsNonNull() {
				ctx.Report(def.Position, "Variable \"$%s\" of required type %q was not provided.", def.Variable, ref.String())
			}
			continue
		}
		if _, err := ctx.Schema.CoerceInput(v, ref); err != nil {
			ctx.Report(def.Position, "Variable \"$%s\" got invalid value %s; %v", def.Variable, value.Literal(v), err)
		}
	}
}

func selected(ctx *Context, op *ast.OperationDefinition) bool {
	if ctx.OperationName != "" {
		return op.Name == ctx.OperationName
	}
	return len(ctx.Document.Operations) == 1
}
