package validation

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlcore/internal/schema"
)

type fieldsOnCorrectType struct{ Base }

func (fieldsOnCorrectType) EnterField(ctx *Context, field *ast.Field) {
	if parent := ctx.ParentType(); parent != "" && ctx.FieldDef() == nil {
		ctx.Report(field.Position, "Cannot query field %q on type %q.", field.Name, parent)
	}
}

type scalarLeafs struct{ Base }

func (scalarLeafs) EnterField(ctx *Context, field *ast.Field) {
	def := ctx.FieldDef()
	if def == nil {
		return
	}
	t := ctx.Schema.Types[def.Type.GetNamedType()]
	if t == nil {
		return
	}
	switch {
	case t.IsLeaf() && len(field.SelectionSet) > 0:
		ctx.Report(field.Position, "Field %q must not have a selection since type %q has no subfields.", field.Name, def.Type.String())
	case !t.IsLeaf() && len(field.SelectionSet) == 0:
		ctx.Report(field.Position, "Field %q of type %q must have a selection of subfields. Did you mean \"%s { ... }\"?", field.Name, def.Type.String(), field.Name)
	}
}

type providedRequiredArguments struct{ Base }

func (providedRequiredArguments) EnterField(ctx *Context, field *ast.Field) {
	def := ctx.FieldDef()
	if def == nil {
		return
	}
	for _, arg := range def.Arguments {
		if isRequired(arg) && field.Arguments.ForName(arg.Name) == nil {
			ctx.Report(field.Position, "Field %q argument %q of type %q is required, but it was not provided.", field.Name, arg.Name, arg.Type.String())
		}
	}
}

func (providedRequiredArguments) EnterDirective(ctx *Context, dir *ast.Directive) {
	def := ctx.DirectiveDef()
	if def == nil {
		return
	}
	for _, arg := range def.Arguments {
		if isRequired(arg) && dir.Arguments.ForName(arg.Name) == nil {
			ctx.Report(dir.Position, "Directive \"@%s\" argument %q of type %q is required, but it was not provided.", dir.Name, arg.Name, arg.Type.String())
		}
	}
}

func isRequired(arg *schema.InputValue) bool {
	return arg.Type.IsNonNull() && arg.DefaultValue == nil
}

type fragmentsOnCompositeTypes struct{ Base }

func (fragmentsOnCompositeTypes) EnterFragment(ctx *Context, frag *ast.FragmentDefinition) {
	if t := ctx.Schema.Types[frag.TypeCondition]; t != nil && !t.IsComposite() {
		ctx.Report(frag.Position, "Fragment %q cannot condition on non composite type %q.", frag.Name, frag.TypeCondition)
	}
}

func (fragmentsOnCompositeTypes) EnterInlineFragment(ctx *Context, frag *ast.InlineFragment) {
	if frag.TypeCondition == "" {
		return
	}
	if t := ctx.Schema.Types[frag.TypeCondition]; t != nil && !t.IsComposite() {
		ctx.Report(frag.Position, "Fragment cannot condition on non composite type %q.", frag.TypeCondition)
	}
}

// possibleFragmentSpreads rejects fragments whose type condition can never
// apply to the type they are spread into.
type possibleFragmentSpreads struct{ Base }

func (possibleFragmentSpreads) EnterFragmentSpread(ctx *Context, spread *ast.FragmentSpread) {
	frag := ctx.Fragment(spread.Name)
	parent := ctx.ParentType()
	if frag == nil || parent == "" || ctx.compositeType(frag.TypeCondition) == "" {
		return
	}
	if !ctx.Schema.Overlaps(parent, frag.TypeCondition) {
		ctx.Report(spread.Position, "Fragment %q cannot be spread here as objects of type %q can never be of type %q.", spread.Name, parent, frag.TypeCondition)
	}
}

func (possibleFragmentSpreads) EnterInlineFragment(ctx *Context, frag *ast.InlineFragment) {
	if frag.TypeCondition == "" || ctx.compositeType(frag.TypeCondition) == "" {
		return
	}
	// The walker has already pushed the condition; the enclosing type sits
	// one below it.
	n := len(ctx.parentTypes)
	if n < 2 {
		return
	}
	parent := ctx.parentTypes[n-2]
	if parent != "" && !ctx.Schema.Overlaps(parent, frag.TypeCondition) {
		ctx.Report(frag.Position, "Fragment cannot be spread here as objects of type %q can never be of type %q.", parent, frag.TypeCondition)
	}
}

// maxDepth limits how deeply fields may nest, counting through fragments.
type maxDepth struct {
	Base
	limit int
}

func (r *maxDepth) EnterOperation(ctx *Context, op *ast.OperationDefinition) {
	r.check(ctx, op.SelectionSet, 1, map[string]bool{})
}

func (r *maxDepth) check(ctx *Context, set ast.SelectionSet, depth int, visiting map[string]bool) bool {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			if depth > r.limit {
				ctx.Report(sel.Position, "Field %q has depth %d that exceeds max depth %d.", sel.Name, depth, r.limit)
				return false
			}
			if !r.check(ctx, sel.SelectionSet, depth+1, visiting) {
				return false
			}
		case *ast.InlineFragment:
			if !r.check(ctx, sel.SelectionSet, depth, visiting) {
				return false
			}
		case *ast.FragmentSpread:
			frag := ctx.Fragment(sel.Name)
			if frag == nil || visiting[sel.Name] {
				continue
			}
			visiting[sel.Name] = true
			ok := r.check(ctx, frag.SelectionSet, depth, visiting)
			delete(visiting, sel.Name)
			if !ok {
				return false
			}
		}
	}
	return true
}
