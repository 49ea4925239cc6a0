package validation

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlcore/internal/schema"
)

// Walk traverses the document of ctx once, calling v at every node.
// Operations are walked before fragment definitions.
func Walk(ctx *Context, v Visitor) {
	doc := ctx.Document
	v.EnterDocument(ctx, doc)
	for _, op := range doc.Operations {
		walkOperation(ctx, v, op)
	}
	for _, frag := range doc.Fragments {
		walkFragment(ctx, v, frag)
	}
	v.ExitDocument(ctx, doc)
}

func walkOperation(ctx *Context, v Visitor, op *ast.OperationDefinition) {
	ctx.operation = op
	ctx.current = scope{op: op}
	ctx.parentTypes = append(ctx.parentTypes, ctx.compositeType(ctx.Schema.RootType(op.Operation)))

	v.EnterOperation(ctx, op)
	for _, def := range op.VariableDefinitions {
		ctx.variableDef = def
		v.EnterVariableDefinition(ctx, def)
		walkDirectives(ctx, v, def.Directives, "VARIABLE_DEFINITION")
		if def.DefaultValue != nil {
			ctx.inputs = append(ctx.inputs, inputFrame{typ: schema.FromAST(def.Type)})
			walkValue(ctx, v, def.DefaultValue)
			ctx.inputs = ctx.inputs[:len(ctx.inputs)-1]
		}
		v.ExitVariableDefinition(ctx, def)
		ctx.variableDef = nil
	}
	walkDirectives(ctx, v, op.Directives, operationLocation(op.Operation))
	walkSelectionSet(ctx, v, op.SelectionSet)
	v.ExitOperation(ctx, op)

	ctx.parentTypes = ctx.parentTypes[:len(ctx.parentTypes)-1]
	ctx.operation = nil
}

func operationLocation(op ast.Operation) string {
	switch op {
	case ast.Mutation:
		return "MUTATION"
	case ast.Subscription:
		return "SUBSCRIPTION"
	}
	return "QUERY"
}

func walkFragment(ctx *Context, v Visitor, frag *ast.FragmentDefinition) {
	ctx.fragment = frag
	ctx.current = scope{frag: frag.Name}
	ctx.parentTypes = append(ctx.parentTypes, ctx.compositeType(frag.TypeCondition))

	v.EnterFragment(ctx, frag)
	walkDirectives(ctx, v, frag.Directives, "FRAGMENT_DEFINITION")
	walkSelectionSet(ctx, v, frag.SelectionSet)
	v.ExitFragment(ctx, frag)

	ctx.parentTypes = ctx.parentTypes[:len(ctx.parentTypes)-1]
	ctx.fragment = nil
}

func walkSelectionSet(ctx *Context, v Visitor, set ast.SelectionSet) {
	v.EnterSelectionSet(ctx, set)
	for _, sel := range set {
		v.EnterSelection(ctx, sel)
		switch sel := sel.(type) {
		case *ast.Field:
			walkField(ctx, v, sel)
		case *ast.FragmentSpread:
			ctx.spreads[ctx.current] = append(ctx.spreads[ctx.current], sel)
			v.EnterFragmentSpread(ctx, sel)
			walkDirectives(ctx, v, sel.Directives, "FRAGMENT_SPREAD")
			v.ExitFragmentSpread(ctx, sel)
		case *ast.InlineFragment:
			parent := ctx.ParentType()
			if sel.TypeCondition != "" {
				parent = ctx.compositeType(sel.TypeCondition)
			}
			ctx.parentTypes = append(ctx.parentTypes, parent)
			v.EnterInlineFragment(ctx, sel)
			walkDirectives(ctx, v, sel.Directives, "INLINE_FRAGMENT")
			walkSelectionSet(ctx, v, sel.SelectionSet)
			v.ExitInlineFragment(ctx, sel)
			ctx.parentTypes = ctx.parentTypes[:len(ctx.parentTypes)-1]
		}
		v.ExitSelection(ctx, sel)
	}
	v.ExitSelectionSet(ctx, set)
}

func walkField(ctx *Context, v Visitor, field *ast.Field) {
	var def *schema.Field
	if parent := ctx.ParentType(); parent != "" {
		def = ctx.Schema.FieldDefinition(parent, field.Name)
	}
	ctx.fields = append(ctx.fields, def)

	v.EnterField(ctx, field)
	walkArguments(ctx, v, field.Arguments, func(name string) *schema.InputValue {
		if def == nil {
			return nil
		}
		return def.Argument(name)
	})
	walkDirectives(ctx, v, field.Directives, "FIELD")
	if len(field.SelectionSet) > 0 {
		child := ""
		if def != nil {
			child = ctx.compositeType(def.Type.GetNamedType())
		}
		ctx.parentTypes = append(ctx.parentTypes, child)
		walkSelectionSet(ctx, v, field.SelectionSet)
		ctx.parentTypes = ctx.parentTypes[:len(ctx.parentTypes)-1]
	}
	v.ExitField(ctx, field)

	ctx.fields = ctx.fields[:len(ctx.fields)-1]
}

func walkDirectives(ctx *Context, v Visitor, dirs ast.DirectiveList, location string) {
	for _, dir := range dirs {
		def := ctx.Schema.Directives[dir.Name]
		ctx.directives = append(ctx.directives, directiveFrame{node: dir, def: def, location: location})
		v.EnterDirective(ctx, dir)
		walkArguments(ctx, v, dir.Arguments, func(name string) *schema.InputValue {
			if def == nil {
				return nil
			}
			return def.Argument(name)
		})
		v.ExitDirective(ctx, dir)
		ctx.directives = ctx.directives[:len(ctx.directives)-1]
	}
}

func walkArguments(ctx *Context, v Visitor, args ast.ArgumentList, lookup func(string) *schema.InputValue) {
	for _, arg := range args {
		frame := inputFrame{}
		if def := lookup(arg.Name); def != nil {
			frame = inputFrame{typ: def.Type, hasDefault: def.DefaultValue != nil}
		}
		ctx.argument = arg
		ctx.inputs = append(ctx.inputs, frame)
		v.EnterArgument(ctx, arg)
		walkValue(ctx, v, arg.Value)
		v.ExitArgument(ctx, arg)
		ctx.inputs = ctx.inputs[:len(ctx.inputs)-1]
		ctx.argument = nil
	}
}

func walkValue(ctx *Context, v Visitor, val *ast.Value) {
	if val == nil {
		return
	}
	expected := ctx.inputs[len(ctx.inputs)-1]
	if val.Kind == ast.Variable && ctx.variableDef == nil {
		ctx.usages[ctx.current] = append(ctx.usages[ctx.current], VariableUsage{
			Name:       val.Raw,
			Type:       expected.typ,
			HasDefault: expected.hasDefault,
			Position:   val.Position,
		})
	}

	v.EnterValue(ctx, val)
	switch val.Kind {
	case ast.ListValue:
		var item *schema.TypeRef
		if t := expected.typ.Nullable(); t.IsList() {
			item = t.OfType
		}
		for _, child := range val.Children {
			ctx.inputs = append(ctx.inputs, inputFrame{typ: item})
			walkValue(ctx, v, child.Value)
			ctx.inputs = ctx.inputs[:len(ctx.inputs)-1]
		}
	case ast.ObjectValue:
		var def *schema.Type
		if expected.typ != nil {
			def = ctx.Schema.Types[expected.typ.GetNamedType()]
		}
		for _, child := range val.Children {
			frame := inputFrame{}
			if def != nil && def.Kind == schema.TypeKindInputObject {
				if f := def.InputField(child.Name); f != nil {
					frame = inputFrame{typ: f.Type, hasDefault: f.DefaultValue != nil}
				}
			}
			ctx.inputs = append(ctx.inputs, frame)
			walkValue(ctx, v, child.Value)
			ctx.inputs = ctx.inputs[:len(ctx.inputs)-1]
		}
	}
	v.ExitValue(ctx, val)
}
