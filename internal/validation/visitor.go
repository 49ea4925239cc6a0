package validation

import "github.com/vektah/gqlparser/v2/ast"

// Visitor receives enter and exit hooks for every node of a query
// document. Walk calls them in document order, depth first.
type Visitor interface {
	EnterDocument(ctx *Context, doc *ast.QueryDocument)
	ExitDocument(ctx *Context, doc *ast.QueryDocument)
	EnterOperation(ctx *Context, op *ast.OperationDefinition)
	ExitOperation(ctx *Context, op *ast.OperationDefinition)
	EnterFragment(ctx *Context, frag *ast.FragmentDefinition)
	ExitFragment(ctx *Context, frag *ast.FragmentDefinition)
	EnterVariableDefinition(ctx *Context, def *ast.VariableDefinition)
	ExitVariableDefinition(ctx *Context, def *ast.VariableDefinition)
	EnterSelectionSet(ctx *Context, set ast.SelectionSet)
	ExitSelectionSet(ctx *Context, set ast.SelectionSet)
	EnterSelection(ctx *Context, sel ast.Selection)
	ExitSelection(ctx *Context, sel ast.Selection)
	EnterField(ctx *Context, field *ast.Field)
	ExitField(ctx *Context, field *ast.Field)
	EnterFragmentSpread(ctx *Context, spread *ast.FragmentSpread)
	ExitFragmentSpread(ctx *Context, spread *ast.FragmentSpread)
	EnterInlineFragment(ctx *Context, frag *ast.InlineFragment)
	ExitInlineFragment(ctx *Context, frag *ast.InlineFragment)
	EnterDirective(ctx *Context, dir *ast.Directive)
	ExitDirective(ctx *Context, dir *ast.Directive)
	EnterArgument(ctx *Context, arg *ast.Argument)
	ExitArgument(ctx *Context, arg *ast.Argument)
	EnterValue(ctx *Context, v *ast.Value)
	ExitValue(ctx *Context, v *ast.Value)
}

// Base implements every hook as a no-op. Rules embed it and override the
// hooks they need.
type Base struct{}

func (Base) EnterDocument(*Context, *ast.QueryDocument)                {}
func (Base) ExitDocument(*Context, *ast.QueryDocument)                 {}
func (Base) EnterOperation(*Context, *ast.OperationDefinition)         {}
func (Base) ExitOperation(*Context, *ast.OperationDefinition)          {}
func (Base) EnterFragment(*Context, *ast.FragmentDefinition)           {}
func (Base) ExitFragment(*Context, *ast.FragmentDefinition)            {}
func (Base) EnterVariableDefinition(*Context, *ast.VariableDefinition) {}
func (Base) ExitVariableDefinition(*Context, *ast.VariableDefinition)  {}
func (Base) EnterSelectionSet(*Context, ast.SelectionSet)              {}
func (Base) ExitSelectionSet(*Context, ast.SelectionSet)               {}
func (Base) EnterSelection(*Context, ast.Selection)                    {}
func (Base) ExitSelection(*Context, ast.Selection)                     {}
func (Base) EnterField(*Context, *ast.Field)                           {}
func (Base) ExitField(*Context, *ast.Field)                            {}
func (Base) EnterFragmentSpread(*Context, *ast.FragmentSpread)         {}
func (Base) ExitFragmentSpread(*Context, *ast.FragmentSpread)          {}
func (Base) EnterInlineFragment(*Context, *ast.InlineFragment)         {}
func (Base) ExitInlineFragment(*Context, *ast.InlineFragment)          {}
func (Base) EnterDirective(*Context, *ast.Directive)                   {}
func (Base) ExitDirective(*Context, *ast.Directive)                    {}
func (Base) EnterArgument(*Context, *ast.Argument)                     {}
func (Base) ExitArgument(*Context, *ast.Argument)                      {}
func (Base) EnterValue(*Context, *ast.Value)                           {}
func (Base) ExitValue(*Context, *ast.Value)                            {}

// Rule is a named validation rule. New is called once per validated
// document so that rules may keep state across hooks.
type Rule struct {
	Name string
	New  func() Visitor
}

type ruleVisitor struct {
	name string
	v    Visitor
}

// composite runs several rule visitors during a single walk. Errors
// reported from a hook are attributed to the rule that owns it.
type composite []ruleVisitor

// Compose instantiates rules into one visitor.
func Compose(rules ...Rule) Visitor {
	c := make(composite, len(rules))
	for i, r := range rules {
		c[i] = ruleVisitor{name: r.Name, v: r.New()}
	}
	return c
}

func (c composite) each(ctx *Context, fn func(Visitor)) {
	prev := ctx.rule
	for _, r := range c {
		ctx.rule = r.name
		fn(r.v)
	}
	ctx.rule = prev
}

func (c composite) EnterDocument(ctx *Context, doc *ast.QueryDocument) {
	c.each(ctx, func(v Visitor) { v.EnterDocument(ctx, doc) })
}

func (c composite) ExitDocument(ctx *Context, doc *ast.QueryDocument) {
	c.each(ctx, func(v Visitor) { v.ExitDocument(ctx, doc) })
}

func (c composite) EnterOperation(ctx *Context, op *ast.OperationDefinition) {
	c.each(ctx, func(v Visitor) { v.EnterOperation(ctx, op) })
}

func (c composite) ExitOperation(ctx *Context, op *ast.OperationDefinition) {
	c.each(ctx, func(v Visitor) { v.ExitOperation(ctx, op) })
}

func (c composite) EnterFragment(ctx *Context, frag *ast.FragmentDefinition) {
	c.each(ctx, func(v Visitor) { v.EnterFragment(ctx, frag) })
}

func (c composite) ExitFragment(ctx *Context, frag *ast.FragmentDefinition) {
	c.each(ctx, func(v Visitor) { v.ExitFragment(ctx, frag) })
}

func (c composite) EnterVariableDefinition(ctx *Context, def *ast.VariableDefinition) {
	c.each(ctx, func(v Visitor) { v.EnterVariableDefinition(ctx, def) })
}

func (c composite) ExitVariableDefinition(ctx *Context, def *ast.VariableDefinition) {
	c.each(ctx, func(v Visitor) { v.ExitVariableDefinition(ctx, def) })
}

func (c composite) EnterSelectionSet(ctx *Context, set ast.SelectionSet) {
	c.each(ctx, func(v Visitor) { v.EnterSelectionSet(ctx, set) })
}

func (c composite) ExitSelectionSet(ctx *Context, set ast.SelectionSet) {
	c.each(ctx, func(v Visitor) { v.ExitSelectionSet(ctx, set) })
}

func (c composite) EnterSelection(ctx *Context, sel ast.Selection) {
	c.each(ctx, func(v Visitor) { v.EnterSelection(ctx, sel) })
}

func (c composite) ExitSelection(ctx *Context, sel ast.Selection) {
	c.each(ctx, func(v Visitor) { v.ExitSelection(ctx, sel) })
}

func (c composite) EnterField(ctx *Context, field *ast.Field) {
	c.each(ctx, func(v Visitor) { v.EnterField(ctx, field) })
}

func (c composite) ExitField(ctx *Context, field *ast.Field) {
	c.each(ctx, func(v Visitor) { v.ExitField(ctx, field) })
}

func (c composite) EnterFragmentSpread(ctx *Context, spread *ast.FragmentSpread) {
	c.each(ctx, func(v Visitor) { v.EnterFragmentSpread(ctx, spread) })
}

func (c composite) ExitFragmentSpread(ctx *Context, spread *ast.FragmentSpread) {
	c.each(ctx, func(v Visitor) { v.ExitFragmentSpread(ctx, spread) })
}

func (c composite) EnterInlineFragment(ctx *Context, frag *ast.InlineFragment) {
	c.each(ctx, func(v Visitor) { v.EnterInlineFragment(ctx, frag) })
}

func (c composite) ExitInlineFragment(ctx *Context, frag *ast.InlineFragment) {
	c.each(ctx, func(v Visitor) { v.ExitInlineFragment(ctx, frag) })
}

func (c composite) EnterDirective(ctx *Context, dir *ast.Directive) {
	c.each(ctx, func(v Visitor) { v.EnterDirective(ctx, dir) })
}

func (c composite) ExitDirective(ctx *Context, dir *ast.Directive) {
	c.each(ctx, func(v Visitor) { v.ExitDirective(ctx, dir) })
}

func (c composite) EnterArgument(ctx *Context, arg *ast.Argument) {
	c.each(ctx, func(v Visitor) { v.EnterArgument(ctx, arg) })
}

func (c composite) ExitArgument(ctx *Context, arg *ast.Argument) {
	c.each(ctx, func(v Visitor) { v.ExitArgument(ctx, arg) })
}

func (c composite) EnterValue(ctx *Context, val *ast.Value) {
	c.each(ctx, func(v Visitor) { v.EnterValue(ctx, val) })
}

func (c composite) ExitValue(ctx *Context, val *ast.Value) {
	c.each(ctx, func(v Visitor) { v.ExitValue(ctx, val) })
}
