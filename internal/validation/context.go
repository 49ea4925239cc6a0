package validation

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

// VariableUsage is one place a variable is read.
type VariableUsage struct {
	Name string
	// Type is the type expected at the usage, nil when unknown.
	Type *schema.TypeRef
	// HasDefault is set when the argument or input field at the usage
	// declares a default value.
	HasDefault bool
	Position   *ast.Position
}

// scope is an operation or a named fragment.
type scope struct {
	op   *ast.OperationDefinition
	frag string
}

type inputFrame struct {
	typ        *schema.TypeRef
	hasDefault bool
}

type directiveFrame struct {
	node     *ast.Directive
	def      *schema.Directive
	location string
}

// Context is the state of one validation pass. Walk keeps the type stacks
// current while rules read them; errors accumulate for the whole document.
type Context struct {
	Schema        *schema.Schema
	Document      *ast.QueryDocument
	Variables     map[string]value.Value
	OperationName string

	fragments map[string]*ast.FragmentDefinition
	rule      string
	errors    gqlerror.List

	operation   *ast.OperationDefinition
	fragment    *ast.FragmentDefinition
	variableDef *ast.VariableDefinition
	argument    *ast.Argument
	parentTypes []string
	fields      []*schema.Field
	inputs      []inputFrame
	directives  []directiveFrame

	current scope
	spreads map[scope][]*ast.FragmentSpread
	usages  map[scope][]VariableUsage
}

// NewContext returns a context for validating doc. fragments takes
// precedence over the fragments of doc when looking names up.
func NewContext(s *schema.Schema, doc *ast.QueryDocument, variables map[string]value.Value, fragments map[string]*ast.FragmentDefinition, operationName string) *Context {
	return &Context{
		Schema:        s,
		Document:      doc,
		Variables:     variables,
		OperationName: operationName,
		fragments:     fragments,
		spreads:       make(map[scope][]*ast.FragmentSpread),
		usages:        make(map[scope][]VariableUsage),
	}
}

// Report records an error at pos for the rule being run.
func (c *Context) Report(pos *ast.Position, format string, args ...any) {
	c.reportAt([]*ast.Position{pos}, format, args...)
}

func (c *Context) reportAt(positions []*ast.Position, format string, args ...any) {
	err := &gqlerror.Error{Message: fmt.Sprintf(format, args...), Rule: c.rule}
	for _, pos := range positions {
		if pos != nil {
			err.Locations = append(err.Locations, gqlerror.Location{Line: pos.Line, Column: pos.Column})
		}
	}
	c.errors = append(c.errors, err)
}

func (c *Context) Errors() gqlerror.List { return c.errors }

// Fragment looks a fragment definition up by name.
func (c *Context) Fragment(name string) *ast.FragmentDefinition {
	if f, ok := c.fragments[name]; ok {
		return f
	}
	return c.Document.Fragments.ForName(name)
}

// Operation returns the operation being walked, nil inside fragments.
func (c *Context) Operation() *ast.OperationDefinition { return c.operation }

// CurrentFragment returns the fragment definition being walked.
func (c *Context) CurrentFragment() *ast.FragmentDefinition { return c.fragment }

// VariableDefinition returns the variable definition being walked.
func (c *Context) VariableDefinition() *ast.VariableDefinition { return c.variableDef }

// ParentType returns the composite type whose fields are being selected,
// or "" when it is unknown.
func (c *Context) ParentType() string {
	if len(c.parentTypes) == 0 {
		return ""
	}
	return c.parentTypes[len(c.parentTypes)-1]
}

// FieldDef returns the definition of the field being walked, nil when the
// field is unknown.
func (c *Context) FieldDef() *schema.Field {
	if len(c.fields) == 0 {
		return nil
	}
	return c.fields[len(c.fields)-1]
}

// InputType returns the type expected for the value being walked.
func (c *Context) InputType() *schema.TypeRef {
	if len(c.inputs) == 0 {
		return nil
	}
	return c.inputs[len(c.inputs)-1].typ
}

// Argument returns the argument being walked.
func (c *Context) Argument() *ast.Argument { return c.argument }

// Directive returns the directive being walked, nil outside directives.
func (c *Context) Directive() *ast.Directive {
	if len(c.directives) == 0 {
		return nil
	}
	return c.directives[len(c.directives)-1].node
}

// DirectiveDef returns the definition of the directive being walked.
func (c *Context) DirectiveDef() *schema.Directive {
	if len(c.directives) == 0 {
		return nil
	}
	return c.directives[len(c.directives)-1].def
}

// DirectiveLocation returns the location of the directive being walked,
// such as FIELD or QUERY.
func (c *Context) DirectiveLocation() string {
	if len(c.directives) == 0 {
		return ""
	}
	return c.directives[len(c.directives)-1].location
}

// ReachableFragments returns the fragments spread by op, directly or
// through other fragments, each once. It is complete only after the walk
// has visited every definition, so rules call it from ExitDocument.
func (c *Context) ReachableFragments(op *ast.OperationDefinition) []*ast.FragmentDefinition {
	var out []*ast.FragmentDefinition
	seen := make(map[string]bool)
	var visit func(s scope)
	visit = func(s scope) {
		for _, spread := range c.spreads[s] {
			if seen[spread.Name] {
				continue
			}
			seen[spread.Name] = true
			frag := c.Fragment(spread.Name)
			if frag == nil {
				continue
			}
			out = append(out, frag)
			visit(scope{frag: spread.Name})
		}
	}
	visit(scope{op: op})
	return out
}

// FragmentSpreads returns the spreads made directly by the named fragment.
func (c *Context) FragmentSpreads(name string) []*ast.FragmentSpread {
	return c.spreads[scope{frag: name}]
}

// VariableUsages returns every variable read by op, including reads inside
// the fragments it reaches. Like ReachableFragments it is meant for
// ExitDocument.
func (c *Context) VariableUsages(op *ast.OperationDefinition) []VariableUsage {
	out := append([]VariableUsage(nil), c.usages[scope{op: op}]...)
	for _, frag := range c.ReachableFragments(op) {
		out = append(out, c.usages[scope{frag: frag.Name}]...)
	}
	return out
}

func (c *Context) compositeType(name string) string {
	if t := c.Schema.Types[name]; t != nil && t.IsComposite() {
		return name
	}
	return ""
}
