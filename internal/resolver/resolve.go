package resolver

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/eventbus"
	"github.com/hanpama/gqlcore/internal/events"
	"github.com/hanpama/gqlcore/internal/value"
)

// ResolveSelectionSet resolves the selection set of ctx against parent and
// merges the results into one object. With parallel set, sibling fields
// run concurrently; otherwise they run one at a time in document order.
//
// By default a failed field becomes null with its error recorded, and only
// failures of non-null fields reach the caller. With Options.FailFast the
// first error aborts the whole set and is returned.
func ResolveSelectionSet(ctx *SelectionSetContext, parent FieldResolver, parallel bool) (value.Value, error) {
	if tn, ok := parent.(TypeNamer); ok && tn.TypeName() != "" {
		ctx = ctx.WithTypeName(tn.TypeName())
	}

	var tasks []FieldTask
	var err error
	if collector, ok := parent.(FieldCollector); ok {
		tasks, err = collector.CollectFields(ctx)
	} else {
		tasks, err = CollectAllFields(ctx, parent)
	}
	if err != nil {
		return nil, err
	}

	results := make([]value.Value, len(tasks))
	taskErrs := make([]gqlerror.List, len(tasks))
	if parallel && len(tasks) > 1 {
		err = runParallel(ctx, tasks, results, taskErrs)
	} else {
		err = runSerial(ctx, tasks, results, taskErrs)
	}
	for _, errs := range taskErrs {
		*ctx.errs = append(*ctx.errs, errs...)
	}
	if err != nil {
		return nil, err
	}

	out := value.NewObject()
	for i, task := range tasks {
		Merge(out, task.Key, results[i])
	}
	return out, nil
}

func runSerial(ctx *SelectionSetContext, tasks []FieldTask, results []value.Value, taskErrs []gqlerror.List) error {
	for i, task := range tasks {
		v, errs, err := task.Run(ctx.ctx)
		taskErrs[i] = errs
		if err != nil {
			return err
		}
		results[i] = v
	}
	return nil
}

// runParallel writes each task's outcome to its own slot, so the errors
// keep document order whatever order the tasks finish in.
func runParallel(ctx *SelectionSetContext, tasks []FieldTask, results []value.Value, taskErrs []gqlerror.List) error {
	var g *errgroup.Group
	goctx := ctx.ctx
	if ctx.req.options.FailFast {
		g, goctx = errgroup.WithContext(goctx)
	} else {
		g = &errgroup.Group{}
	}
	for i, task := range tasks {
		g.Go(func() error {
			v, errs, err := task.Run(goctx)
			taskErrs[i] = errs
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	return g.Wait()
}

func fieldTask(ctx *SelectionSetContext, parent FieldResolver, field *ast.Field) FieldTask {
	return FieldTask{
		Key:   responseKey(field),
		Field: field,
		Run: func(goctx context.Context) (value.Value, gqlerror.List, error) {
			var errs gqlerror.List
			v, err := ctx.forTask(goctx, &errs).WithField(field).resolveOn(parent)
			return v, errs, err
		},
	}
}

// ResolveFieldTask returns the task that resolves field against parent.
// Custom FieldCollector implementations use it to build their task list.
func ResolveFieldTask(ctx *SelectionSetContext, parent FieldResolver, field *ast.Field) FieldTask {
	return fieldTask(ctx, parent, field)
}

func (c *FieldContext) resolveOn(parent FieldResolver) (value.Value, error) {
	start := time.Now()
	v, err := c.invoke(parent)
	eventbus.Publish(c.ctx, events.FieldResolved{
		TypeName:  c.ParentType,
		FieldName: c.Field.Name,
		Path:      c.path.String(),
		Start:     start,
		Duration:  time.Since(start),
		Err:       err,
	})
	return c.complete(v, err)
}

func (c *FieldContext) invoke(parent FieldResolver) (value.Value, error) {
	if c.Definition == nil {
		return nil, fmt.Errorf("Cannot query field %q on type %q.", c.Field.Name, c.ParentType)
	}
	args, err := coerceArguments(c.req.schema, c.Definition.Arguments, c.Field.Arguments, c.req.variables)
	if err != nil {
		return nil, err
	}
	c.args = args

	next := Next(func(fc *FieldContext) (value.Value, error) {
		return parent.ResolveField(fc)
	})
	next, err = c.wrapDirectives(next)
	if err != nil {
		return nil, err
	}
	return next(c)
}

// wrapDirectives chains the handlers of the field's directives around next.
// Directives in the query run outside those declared on the field
// definition, each list in order of appearance.
func (c *FieldContext) wrapDirectives(next Next) (Next, error) {
	handlers := c.req.options.Directives
	if len(handlers) == 0 {
		return next, nil
	}
	var dirs ast.DirectiveList
	dirs = append(dirs, c.Field.Directives...)
	dirs = append(dirs, c.Definition.Directives...)
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		h, ok := handlers[d.Name]
		if !ok {
			continue
		}
		args, err := c.directiveArgs(d)
		if err != nil {
			return nil, err
		}
		inner := next
		next = func(fc *FieldContext) (value.Value, error) {
			return h.ResolveField(fc, args, inner)
		}
	}
	return next, nil
}

func (c *FieldContext) directiveArgs(d *ast.Directive) (map[string]value.Value, error) {
	if def := c.req.schema.Directives[d.Name]; def != nil {
		return coerceArguments(c.req.schema, def.Arguments, d.Arguments, c.req.variables)
	}
	args := make(map[string]value.Value, len(d.Arguments))
	for _, arg := range d.Arguments {
		v, err := value.FromAST(arg.Value, c.req.variables)
		if err != nil {
			return nil, err
		}
		args[arg.Name] = v
	}
	return args, nil
}

// ResolveItem resolves the i-th item of the list result of ctx and applies
// the nullability of the item type.
func ResolveItem(ctx *FieldContext, i int, item FieldResolver) (value.Value, error) {
	ic := ctx.WithIndex(i)
	v, err := Resolve(ic, item)
	return ic.complete(v, err)
}

// complete applies non-null checks and error handling to the result at the
// current path.
func (c *FieldContext) complete(v value.Value, err error) (value.Value, error) {
	nonNull := c.typ.IsNonNull()
	if err == nil {
		if !value.IsNull(v) {
			return v, nil
		}
		if !nonNull {
			return value.Null{}, nil
		}
		err = fmt.Errorf("Cannot return null for non-nullable field %s.%s.", c.ParentType, c.Field.Name)
	}

	if IsNullPropagation(err) {
		if nonNull {
			return nil, err
		}
		return value.Null{}, nil
	}

	located := LocateError(err, c.Field, c.path)
	if c.req.options.FailFast {
		return nil, located
	}
	c.addError(located)
	c.req.logger.Warn("field resolution failed",
		"type", c.ParentType,
		"field", c.Field.Name,
		"path", c.path.String(),
		"error", located.Message,
	)
	if nonNull {
		return nil, errNullPropagated
	}
	return value.Null{}, nil
}
