package validation

import (
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
)

type uniqueOperationNames struct {
	Base
	seen map[string]bool
}

func (r *uniqueOperationNames) EnterOperation(ctx *Context, op *ast.OperationDefinition) {
	if op.Name == "" {
		return
	}
	if r.seen[op.Name] {
		ctx.Report(op.Position, "There can be only one operation named %q.", op.Name)
		return
	}
	r.seen[op.Name] = true
}

type loneAnonymousOperation struct{ Base }

func (loneAnonymousOperation) EnterOperation(ctx *Context, op *ast.OperationDefinition) {
	if op.Name == "" && len(ctx.Document.Operations) > 1 {
		ctx.Report(op.Position, "This anonymous operation must be the only defined operation.")
	}
}

type knownOperationTypes struct{ Base }

func (knownOperationTypes) EnterOperation(ctx *Context, op *ast.OperationDefinition) {
	if ctx.Schema.RootType(op.Operation) == "" {
		ctx.Report(op.Position, "Schema is not configured to execute %s operation.", op.Operation)
	}
}

type singleFieldSubscriptions struct{ Base }

func (singleFieldSubscriptions) EnterOperation(ctx *Context, op *ast.OperationDefinition) {
	if op.Operation != ast.Subscription || len(op.SelectionSet) <= 1 {
		return
	}
	if op.Name != "" {
		ctx.Report(op.Position, "Subscription %q must select only one top level field.", op.Name)
	} else {
		ctx.Report(op.Position, "Anonymous Subscription must select only one top level field.")
	}
}

type uniqueFragmentNames struct {
	Base
	seen map[string]bool
}

func (r *uniqueFragmentNames) EnterFragment(ctx *Context, frag *ast.FragmentDefinition) {
	if r.seen[frag.Name] {
		ctx.Report(frag.Position, "There can be only one fragment named %q.", frag.Name)
		return
	}
	r.seen[frag.Name] = true
}

type uniqueArgumentNames struct{ Base }

func (uniqueArgumentNames) EnterField(ctx *Context, field *ast.Field) {
	checkUniqueArguments(ctx, field.Arguments)
}

func (uniqueArgumentNames) EnterDirective(ctx *Context, dir *ast.Directive) {
	checkUniqueArguments(ctx, dir.Arguments)
}

func checkUniqueArguments(ctx *Context, args ast.ArgumentList) {
	seen := make(map[string]bool, len(args))
	for _, arg := range args {
		if seen[arg.Name] {
			ctx.Report(arg.Position, "There can be only one argument named %q.", arg.Name)
		}
		seen[arg.Name] = true
	}
}

type uniqueInputFieldNames struct{ Base }

func (uniqueInputFieldNames) EnterValue(ctx *Context, v *ast.Value) {
	if v.Kind != ast.ObjectValue {
		return
	}
	seen := make(map[string]bool, len(v.Children))
	for _, child := range v.Children {
		if seen[child.Name] {
			ctx.Report(child.Position, "There can be only one input field named %q.", child.Name)
		}
		seen[child.Name] = true
	}
}

type uniqueDirectivesPerLocation struct{ Base }

func (uniqueDirectivesPerLocation) EnterOperation(ctx *Context, op *ast.OperationDefinition) {
	checkUniqueDirectives(ctx, op.Directives)
}

func (uniqueDirectivesPerLocation) EnterField(ctx *Context, field *ast.Field) {
	checkUniqueDirectives(ctx, field.Directives)
}

func (uniqueDirectivesPerLocation) EnterFragmentSpread(ctx *Context, spread *ast.FragmentSpread) {
	checkUniqueDirectives(ctx, spread.Directives)
}

func (uniqueDirectivesPerLocation) EnterInlineFragment(ctx *Context, frag *ast.InlineFragment) {
	checkUniqueDirectives(ctx, frag.Directives)
}

func (uniqueDirectivesPerLocation) EnterFragment(ctx *Context, frag *ast.FragmentDefinition) {
	checkUniqueDirectives(ctx, frag.Directives)
}

func checkUniqueDirectives(ctx *Context, dirs ast.DirectiveList) {
	seen := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		if seen[dir.Name] {
			if def := ctx.Schema.Directives[dir.Name]; def != nil && def.IsRepeatable {
				continue
			}
			ctx.Report(dir.Position, "The directive \"@%s\" can only be used once at this location.", dir.Name)
		}
		seen[dir.Name] = true
	}
}

type knownDirectives struct{ Base }

func (knownDirectives) EnterDirective(ctx *Context, dir *ast.Directive) {
	def := ctx.DirectiveDef()
	if def == nil {
		ctx.Report(dir.Position, "Unknown directive \"@%s\".", dir.Name)
		return
	}
	if loc := ctx.DirectiveLocation(); !slices.Contains(def.Locations, loc) {
		ctx.Report(dir.Position, "Directive \"@%s\" may not be used on %s.", dir.Name, loc)
	}
}

type knownArgumentNames struct{ Base }

func (knownArgumentNames) EnterArgument(ctx *Context, arg *ast.Argument) {
	if dir := ctx.Directive(); dir != nil {
		if def := ctx.DirectiveDef(); def != nil && def.Argument(arg.Name) == nil {
			ctx.Report(arg.Position, "Unknown argument %q on directive \"@%s\".", arg.Name, dir.Name)
		}
		return
	}
	if def := ctx.FieldDef(); def != nil && def.Argument(arg.Name) == nil {
		ctx.Report(arg.Position, "Unknown argument %q on field \"%s.%s\".", arg.Name, ctx.ParentType(), def.Name)
	}
}

type knownTypeNames struct{ Base }

func (knownTypeNames) EnterVariableDefinition(ctx *Context, def *ast.VariableDefinition) {
	if def.Type == nil {
		return
	}
	checkKnownType(ctx, def.Type.Name(), def.Position)
}

func (knownTypeNames) EnterFragment(ctx *Context, frag *ast.FragmentDefinition) {
	checkKnownType(ctx, frag.TypeCondition, frag.Position)
}

func (knownTypeNames) EnterInlineFragment(ctx *Context, frag *ast.InlineFragment) {
	if frag.TypeCondition != "" {
		checkKnownType(ctx, frag.TypeCondition, frag.Position)
	}
}

func checkKnownType(ctx *Context, name string, pos *ast.Position) {
	if _, ok := ctx.Schema.Types[name]; !ok {
		ctx.Report(pos, "Unknown type %q.", name)
	}
}
