package resolver

import (
	"context"
	"log/slog"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/operation"
	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

// Options control how a request resolves.
type Options struct {
	// FailFast aborts a selection set on the first field error instead of
	// nulling the failed field and resolving its siblings.
	FailFast bool
	// Directives maps directive names to field middleware.
	Directives map[string]DirectiveHandler
	Logger     *slog.Logger
}

// request is shared by every context of one execution and is read-only
// after construction.
type request struct {
	schema    *schema.Schema
	operation *operation.Operation
	variables map[string]value.Value
	options   Options
	logger    *slog.Logger
}

// ExecutionContext is the part shared by field and selection set contexts.
// Contexts are values: every step down the tree makes a new one.
//
// errs collects the field errors of the field task the context belongs to.
// Each task owns its list, so a context must not be shared between
// goroutines that resolve fields.
type ExecutionContext struct {
	ctx  context.Context
	req  *request
	path *Path
	errs *gqlerror.List
}

// NewContext returns the context for the root selection set of op.
// Variables must already be coerced.
func NewContext(ctx context.Context, s *schema.Schema, op *operation.Operation, variables map[string]value.Value, opts Options) *SelectionSetContext {
	if variables == nil {
		variables = map[string]value.Value{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	req := &request{
		schema:    s,
		operation: op,
		variables: variables,
		options:   opts,
		logger:    logger,
	}
	return &SelectionSetContext{
		ExecutionContext: ExecutionContext{ctx: ctx, req: req, errs: &gqlerror.List{}},
		SelectionSet:     op.SelectionSet,
		TypeName:         s.RootType(op.Type),
	}
}

func (c *ExecutionContext) Context() context.Context { return c.ctx }

func (c *ExecutionContext) Schema() *schema.Schema { return c.req.schema }

func (c *ExecutionContext) Operation() *operation.Operation { return c.req.operation }

// Variables returns the coerced variables. The map must not be modified.
func (c *ExecutionContext) Variables() map[string]value.Value { return c.req.variables }

func (c *ExecutionContext) Variable(name string) (value.Value, bool) {
	v, ok := c.req.variables[name]
	return v, ok
}

func (c *ExecutionContext) Path() *Path { return c.path }

func (c *ExecutionContext) Logger() *slog.Logger { return c.req.logger }

// Errors returns the field errors recorded below this context so far, in
// document order.
func (c *ExecutionContext) Errors() gqlerror.List {
	return append(gqlerror.List(nil), (*c.errs)...)
}

func (c *ExecutionContext) addError(err *gqlerror.Error) {
	*c.errs = append(*c.errs, err)
}

// FieldContext is the context of one field being resolved.
type FieldContext struct {
	ExecutionContext
	Field      *ast.Field
	ParentType string
	Definition *schema.Field // nil for fields unknown to the schema
	args       map[string]value.Value
	// typ is the type expected at the current path: the field type, or an
	// item type below a list index.
	typ *schema.TypeRef
}

// Type returns the type expected at the current path.
func (c *FieldContext) Type() *schema.TypeRef { return c.typ }

// Args returns the coerced arguments, defaults included. The map must not
// be modified.
func (c *FieldContext) Args() map[string]value.Value { return c.args }

// Arg returns the named argument or nil when it was not given and has no
// default.
func (c *FieldContext) Arg(name string) value.Value { return c.args[name] }

func (c *FieldContext) HasArg(name string) bool {
	_, ok := c.args[name]
	return ok
}

// DecodeArg stores the named argument into dst. See value.Decode.
func (c *FieldContext) DecodeArg(name string, dst any) error {
	return value.Decode(c.args[name], dst)
}

// Arg decodes the named argument of ctx into a T.
func Arg[T any](ctx *FieldContext, name string) (T, error) {
	var out T
	err := value.Decode(ctx.args[name], &out)
	return out, err
}

// WithContext returns a copy of c that carries ctx.
func (c *FieldContext) WithContext(ctx context.Context) *FieldContext {
	cp := *c
	cp.ctx = ctx
	return &cp
}

// WithIndex returns the context of the i-th item of a list result.
func (c *FieldContext) WithIndex(i int) *FieldContext {
	cp := *c
	cp.path = c.path.AppendIndex(i)
	if t := c.typ.Nullable(); t.IsList() {
		cp.typ = t.OfType
	} else {
		cp.typ = nil
	}
	return &cp
}

// WithSelectionSet returns the context for the sub-selection of the field.
// An empty typeName falls back to the field's declared type.
func (c *FieldContext) WithSelectionSet(typeName string) *SelectionSetContext {
	if typeName == "" && c.Definition != nil {
		typeName = c.Definition.Type.GetNamedType()
	}
	return &SelectionSetContext{
		ExecutionContext: c.ExecutionContext,
		SelectionSet:     c.Field.SelectionSet,
		TypeName:         typeName,
	}
}

// SelectionSetContext is the context of a selection set on TypeName. The
// type is concrete when the resolver reported one and may otherwise be the
// declared interface or union.
type SelectionSetContext struct {
	ExecutionContext
	SelectionSet ast.SelectionSet
	TypeName     string
}

// WithField returns the context of a field selected in this set.
func (c *SelectionSetContext) WithField(field *ast.Field) *FieldContext {
	fc := &FieldContext{
		ExecutionContext: ExecutionContext{
			ctx:  c.ctx,
			req:  c.req,
			path: c.path.Append(responseKey(field), c.TypeName),
			errs: c.errs,
		},
		Field:      field,
		ParentType: c.TypeName,
		Definition: c.req.schema.FieldDefinition(c.TypeName, field.Name),
	}
	if fc.Definition != nil {
		fc.typ = fc.Definition.Type
	}
	return fc
}

// WithTypeName returns a copy of c narrowed to the concrete type name.
func (c *SelectionSetContext) WithTypeName(name string) *SelectionSetContext {
	cp := *c
	cp.TypeName = name
	return &cp
}

// forTask returns a copy of c running under ctx that records errors into
// errs.
func (c *SelectionSetContext) forTask(ctx context.Context, errs *gqlerror.List) *SelectionSetContext {
	cp := *c
	cp.ctx = ctx
	cp.errs = errs
	return &cp
}

func responseKey(f *ast.Field) string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}
