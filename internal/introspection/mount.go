// Package introspection answers the __schema and __type meta fields from
// the type registry.
package introspection

import (
	"fmt"

	"github.com/hanpama/gqlcore/internal/resolver"
	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

// Mount returns a query root that resolves __schema and __type itself and
// hands every other field to next.
func Mount(s *schema.Schema, next resolver.FieldResolver) resolver.FieldResolver {
	return &root{schema: s, next: next}
}

type root struct {
	schema *schema.Schema
	next   resolver.FieldResolver
}

func (r *root) TypeName() string {
	if tn, ok := r.next.(resolver.TypeNamer); ok && tn.TypeName() != "" {
		return tn.TypeName()
	}
	return r.schema.QueryType
}

// CollectFields keeps the collection of next when it has its own and
// routes the meta fields back to r.
func (r *root) CollectFields(ctx *resolver.SelectionSetContext) ([]resolver.FieldTask, error) {
	collector, ok := r.next.(resolver.FieldCollector)
	if !ok {
		return resolver.CollectAllFields(ctx, r)
	}
	tasks, err := collector.CollectFields(ctx)
	if err != nil {
		return nil, err
	}
	for i, task := range tasks {
		if task.Field != nil && isMeta(task.Field.Name) {
			tasks[i] = resolver.ResolveFieldTask(ctx, r, task.Field)
		}
	}
	return tasks, nil
}

func (r *root) ResolveField(ctx *resolver.FieldContext) (value.Value, error) {
	switch ctx.Field.Name {
	case schema.SchemaFieldName:
		return resolver.Resolve(ctx, &schemaResolver{schema: r.schema})
	case schema.TypeFieldName:
		name, _ := ctx.Arg("name").(value.String)
		if r.schema.Types[string(name)] == nil {
			return value.Null{}, nil
		}
		return resolver.Resolve(ctx, newType(r.schema, schema.NamedType(string(name))))
	}
	if r.next == nil {
		return nil, fmt.Errorf("no resolver for %s.%s", ctx.ParentType, ctx.Field.Name)
	}
	return r.next.ResolveField(ctx)
}

func isMeta(name string) bool {
	return name == schema.SchemaFieldName || name == schema.TypeFieldName
}
