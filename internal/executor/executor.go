package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/eventbus"
	"github.com/hanpama/gqlcore/internal/events"
	"github.com/hanpama/gqlcore/internal/introspection"
	"github.com/hanpama/gqlcore/internal/language"
	"github.com/hanpama/gqlcore/internal/logging"
	"github.com/hanpama/gqlcore/internal/operation"
	"github.com/hanpama/gqlcore/internal/reqid"
	"github.com/hanpama/gqlcore/internal/resolver"
	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/validation"
	"github.com/hanpama/gqlcore/internal/value"
)

// Request is one GraphQL request as received from a transport.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// Response is the result envelope. Data is nil (null) when the request
// failed before execution.
type Response struct {
	Data   value.Value   `json:"data"`
	Errors gqlerror.List `json:"errors,omitempty"`
}

// Container binds a schema to its root resolvers. It is immutable after New
// and safe for concurrent use.
type Container struct {
	schema       *schema.Schema
	query        resolver.FieldResolver
	mutation     resolver.FieldResolver
	subscription resolver.FieldResolver
	directives   map[string]resolver.DirectiveHandler
	logger       *slog.Logger
	failFast     bool
	rules        []validation.Rule
}

// Option configures a Container.
type Option func(*Container)

// WithMutation sets the root resolver of mutation operations.
func WithMutation(r resolver.FieldResolver) Option {
	return func(c *Container) { c.mutation = r }
}

// WithSubscription sets the root resolver of subscription operations.
// Subscriptions resolve once, like queries.
func WithSubscription(r resolver.FieldResolver) Option {
	return func(c *Container) { c.subscription = r }
}

// WithDirective registers h as the handler of the named directive.
func WithDirective(name string, h resolver.DirectiveHandler) Option {
	return func(c *Container) { c.directives[name] = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// WithFailFast aborts execution on the first field error instead of
// nulling the failed field.
func WithFailFast() Option {
	return func(c *Container) { c.failFast = true }
}

// WithMaxDepth rejects operations whose selections nest deeper than n.
func WithMaxDepth(n int) Option {
	return func(c *Container) { c.rules = append(c.rules, validation.MaxDepth(n)) }
}

// New returns a Container executing operations of s against query. The
// query root also answers __schema and __type.
func New(s *schema.Schema, query resolver.FieldResolver, opts ...Option) *Container {
	c := &Container{
		schema:     s,
		directives: make(map[string]resolver.DirectiveHandler),
		logger:     logging.Nop(),
		rules:      append([]validation.Rule(nil), validation.DefaultRules...),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.query = introspection.Mount(s, query)
	return c
}

func (c *Container) Schema() *schema.Schema { return c.schema }

// Execute runs req. Syntax, operation selection and validation errors are
// returned with null data and no resolver is called. The request ID in ctx
// is used for events and logs; one is generated when absent.
func (c *Container) Execute(ctx context.Context, req Request) *Response {
	start := time.Now()
	id, ok := reqid.FromContext(ctx)
	if !ok {
		ctx, id = reqid.NewContext(ctx)
	}
	logger := c.logger.With("request_id", id, "operation", req.OperationName)

	op, variables, resp := c.prepare(req)
	opType := ""
	if op != nil {
		opType = string(op.Type)
	}
	eventbus.Publish(ctx, events.GraphQLStart{
		RequestID:     id,
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Start:         start,
	})
	logger.Debug("operation started", "type", opType)

	if resp == nil {
		resp = c.execute(ctx, op, variables, logger)
	}

	duration := time.Since(start)
	errs := make([]error, len(resp.Errors))
	for i, err := range resp.Errors {
		errs[i] = err
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		RequestID:     id,
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Errors:        errs,
		Start:         start,
		Duration:      duration,
	})
	logger.Debug("operation finished", "type", opType, "errors", len(resp.Errors), "duration", duration)
	return resp
}

// prepare parses and validates req. A non-nil Response means the request
// must not execute.
func (c *Container) prepare(req Request) (*operation.Operation, map[string]value.Value, *Response) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return nil, nil, failed(err)
	}
	op, err := operation.Build(doc, c.schema, req.OperationName)
	if err != nil {
		return nil, nil, failed(err)
	}

	variables, err := variablesFromGo(req.Variables)
	if err != nil {
		return op, nil, failed(err)
	}
	if errs := validation.Validate(c.schema, doc, variables, nil, req.OperationName, c.rules...); len(errs) > 0 {
		return op, nil, &Response{Errors: errs}
	}
	return op, variables, nil
}

func (c *Container) execute(ctx context.Context, op *operation.Operation, variables map[string]value.Value, logger *slog.Logger) *Response {
	coerced, err := coerceVariableValues(c.schema, op.Definition, variables)
	if err != nil {
		return failed(err)
	}

	root, parallel := c.root(op.Type)
	if root == nil {
		return failed(gqlerror.Errorf("Schema is not configured to execute %s operation.", op.Type))
	}

	rctx := resolver.NewContext(ctx, c.schema, op, coerced, resolver.Options{
		FailFast:   c.failFast,
		Directives: c.directives,
		Logger:     logger,
	})
	data, err := resolver.ResolveSelectionSet(rctx, root, parallel)
	errs := rctx.Errors()
	if err != nil {
		if !resolver.IsNullPropagation(err) {
			errs = append(errs, resolver.LocateError(err, nil, nil))
			logger.Warn("operation failed", "error", err)
		}
		return &Response{Errors: errs}
	}
	return &Response{Data: data, Errors: errs}
}

// root returns the root resolver of an operation kind and whether its
// fields may resolve concurrently.
func (c *Container) root(op ast.Operation) (resolver.FieldResolver, bool) {
	switch op {
	case ast.Mutation:
		return c.mutation, false
	case ast.Subscription:
		return c.subscription, true
	default:
		return c.query, true
	}
}

func failed(err error) *Response {
	var errs gqlerror.List
	if list, ok := err.(gqlerror.List); ok {
		errs = list
	} else {
		errs = gqlerror.List{language.AsError(err)}
	}
	return &Response{Errors: errs}
}
