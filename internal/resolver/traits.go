package resolver

import (
	"context"
	"reflect"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/value"
)

// FieldResolver resolves the field of ctx. Objects dispatch on
// ctx.Field.Name; leaves and containers produce their own value as the
// result of the field. A nil Value means null.
type FieldResolver interface {
	ResolveField(ctx *FieldContext) (value.Value, error)
}

// SelectionSetResolver is implemented by composite values that answer a
// selection set of their own fields.
type SelectionSetResolver interface {
	FieldResolver
	ResolveSelectionSet(ctx *SelectionSetContext) (value.Value, error)
}

// FieldCollector replaces the default field collection of a selection set.
// Union wrappers use it to delegate to the member they hold.
type FieldCollector interface {
	CollectFields(ctx *SelectionSetContext) ([]FieldTask, error)
}

// TypeNamer reports the concrete object type of a value. Members of
// interfaces and unions implement it so that __typename and fragment type
// conditions see the runtime type.
type TypeNamer interface {
	TypeName() string
}

// FieldTask is one deferred field resolution produced by the collect
// phase. Run returns the field value together with the field errors
// recorded while resolving it.
type FieldTask struct {
	Key   string
	Field *ast.Field
	Run   func(ctx context.Context) (value.Value, gqlerror.List, error)
}

// Next continues normal resolution of a field.
type Next func(ctx *FieldContext) (value.Value, error)

// DirectiveHandler is field middleware bound to a directive name. It may
// call next, skip it or transform its result.
type DirectiveHandler interface {
	ResolveField(ctx *FieldContext, args map[string]value.Value, next Next) (value.Value, error)
}

// DirectiveFunc adapts a function to DirectiveHandler.
type DirectiveFunc func(ctx *FieldContext, args map[string]value.Value, next Next) (value.Value, error)

func (f DirectiveFunc) ResolveField(ctx *FieldContext, args map[string]value.Value, next Next) (value.Value, error) {
	return f(ctx, args, next)
}

// Resolve completes v as the result of the field in ctx: composite values
// resolve the field's selection set, everything else resolves itself.
func Resolve(ctx *FieldContext, v FieldResolver) (value.Value, error) {
	if isNil(v) {
		return value.Null{}, nil
	}
	if ss, ok := v.(SelectionSetResolver); ok {
		if len(ctx.Field.SelectionSet) == 0 {
			return nil, Errorf("Field %q of type %q must have a selection of subfields.", ctx.Field.Name, typeNameOf(v, ctx))
		}
		return ss.ResolveSelectionSet(ctx.WithSelectionSet(typeNameOf(v, ctx)))
	}
	return v.ResolveField(ctx)
}

// ResolveObject resolves the selection set of the field in ctx against
// parent, running sibling fields concurrently.
func (c *FieldContext) ResolveObject(parent FieldResolver) (value.Value, error) {
	if isNil(parent) {
		return value.Null{}, nil
	}
	return ResolveSelectionSet(c.WithSelectionSet(typeNameOf(parent, c)), parent, true)
}

func typeNameOf(v any, ctx *FieldContext) string {
	if tn, ok := v.(TypeNamer); ok && tn.TypeName() != "" {
		return tn.TypeName()
	}
	if ctx.Definition != nil {
		return ctx.Definition.Type.GetNamedType()
	}
	return ""
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
