package resolver

import (
	"context"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

// CollectAllFields walks the selection set of ctx and returns one task per
// selected field in document order. Fragment spreads and inline fragments
// are spliced into the same list; fields skipped by @skip or @include are
// left out and __typename is answered without calling parent.
func CollectAllFields(ctx *SelectionSetContext, parent FieldResolver) ([]FieldTask, error) {
	var tasks []FieldTask
	visited := make(map[string]bool)
	if err := collectFields(ctx, parent, ctx.SelectionSet, visited, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func collectFields(ctx *SelectionSetContext, parent FieldResolver, set ast.SelectionSet, visited map[string]bool, tasks *[]FieldTask) error {
	vars := ctx.req.variables
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			skip, err := shouldSkip(sel.Directives, vars)
			if err != nil {
				return fieldError(ctx, sel.Position, err)
			}
			if skip {
				continue
			}
			if sel.Name == schema.TypenameFieldName {
				typeName := ctx.TypeName
				*tasks = append(*tasks, FieldTask{
					Key:   responseKey(sel),
					Field: sel,
					Run: func(context.Context) (value.Value, gqlerror.List, error) {
						return value.String(typeName), nil, nil
					},
				})
				continue
			}
			*tasks = append(*tasks, fieldTask(ctx, parent, sel))

		case *ast.FragmentSpread:
			skip, err := shouldSkip(sel.Directives, vars)
			if err != nil {
				return fieldError(ctx, sel.Position, err)
			}
			if skip {
				continue
			}
			frag := ctx.req.operation.Fragment(sel.Name)
			if frag == nil {
				return fieldError(ctx, sel.Position, fmt.Errorf("Unknown fragment %q.", sel.Name))
			}
			if visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true
			if !ctx.typeConditionApplies(frag.TypeCondition) {
				continue
			}
			if err := collectFields(ctx, parent, frag.SelectionSet, visited, tasks); err != nil {
				return err
			}

		case *ast.InlineFragment:
			skip, err := shouldSkip(sel.Directives, vars)
			if err != nil {
				return fieldError(ctx, sel.Position, err)
			}
			if skip || !ctx.typeConditionApplies(sel.TypeCondition) {
				continue
			}
			if err := collectFields(ctx, parent, sel.SelectionSet, visited, tasks); err != nil {
				return err
			}
		}
	}
	return nil
}

// typeConditionApplies narrows fragments only when the selection set's
// type is a known object type. For abstract or unknown types every
// fragment applies and the resolver is responsible for the fields.
func (c *SelectionSetContext) typeConditionApplies(cond string) bool {
	if cond == "" || cond == c.TypeName {
		return true
	}
	s := c.req.schema
	t := s.Types[c.TypeName]
	if t == nil || t.Kind != schema.TypeKindObject {
		return true
	}
	return s.IsPossibleType(cond, c.TypeName)
}

// shouldSkip evaluates @skip and @include with the request variables. A
// node is skipped when @skip(if: true) or @include(if: false) applies.
func shouldSkip(dirs ast.DirectiveList, vars map[string]value.Value) (bool, error) {
	for _, d := range dirs {
		switch d.Name {
		case "skip":
			cond, err := directiveCondition(d, vars)
			if err != nil {
				return false, err
			}
			if cond {
				return true, nil
			}
		case "include":
			cond, err := directiveCondition(d, vars)
			if err != nil {
				return false, err
			}
			if !cond {
				return true, nil
			}
		}
	}
	return false, nil
}

func directiveCondition(d *ast.Directive, vars map[string]value.Value) (bool, error) {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, fmt.Errorf("Directive \"@%s\" argument \"if\" of type \"Boolean!\" is required, but it was not provided.", d.Name)
	}
	v, err := value.FromAST(arg.Value, vars)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Boolean)
	if !ok {
		return false, fmt.Errorf("Directive \"@%s\" argument \"if\" must be a Boolean, found %s.", d.Name, value.Literal(v))
	}
	return bool(b), nil
}

func fieldError(ctx *SelectionSetContext, pos *ast.Position, err error) *gqlerror.Error {
	e := &gqlerror.Error{Err: err, Message: err.Error(), Path: ctx.path.AST()}
	if pos != nil {
		e.Locations = []gqlerror.Location{{Line: pos.Line, Column: pos.Column}}
	}
	return e
}
