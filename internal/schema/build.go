package schema

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/hanpama/gqlcore/internal/value"
)

var introspectionDoc = mustParseBuiltin(introspectionSource)

func mustParseBuiltin(src *ast.Source) *ast.SchemaDocument {
	doc, err := parser.ParseSchema(src)
	if err != nil {
		panic(fmt.Sprintf("parse %s: %v", src.Name, err))
	}
	return doc
}

// Build parses the sources and builds a schema from them. See BuildDocuments.
func Build(sources ...*ast.Source) (*Schema, error) {
	docs := make([]*ast.SchemaDocument, 0, len(sources))
	for _, src := range sources {
		doc, err := parser.ParseSchema(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.Name, err)
		}
		docs = append(docs, doc)
	}
	return BuildDocuments(docs...)
}

// BuildSDL builds a schema from a single SDL string.
func BuildSDL(sdl string) (*Schema, error) {
	return Build(&ast.Source{Name: "schema.graphql", Input: sdl})
}

// BuildDocuments merges parsed schema documents into a Schema. Definitions
// from every document are registered first, then extensions are appended to
// their base definitions in the order they were encountered. Extending an
// undefined type and a missing Query root type are errors.
func BuildDocuments(docs ...*ast.SchemaDocument) (*Schema, error) {
	b := &builder{
		defs: make(map[string]*ast.Definition),
		schema: &Schema{
			Queries:       make(map[string]*Field),
			Mutations:     make(map[string]*Field),
			Subscriptions: make(map[string]*Field),
			Types:         make(map[string]*Type),
			Interfaces:    make(map[string]*Type),
			Directives:    make(map[string]*Directive),
		},
	}
	b.seedBuiltins()
	b.collect(introspectionDoc, true)
	for _, doc := range docs {
		b.collect(doc, false)
	}
	b.applyExtensions()
	b.populateTypes()
	b.resolveRootTypes()
	b.checkReferences()
	if len(b.violations) > 0 {
		return nil, BuildError(b.violations)
	}
	b.schema.computePossibleTypes()
	return b.schema, nil
}

type builder struct {
	schema     *Schema
	defs       map[string]*ast.Definition
	order      []string
	builtins   map[string]bool
	extensions []*ast.Definition
	schemaDefs []*ast.SchemaDefinition
	violations []*Violation
}

func (b *builder) addViolation(v ...*Violation) {
	b.violations = append(b.violations, v...)
}

func (b *builder) seedBuiltins() {
	b.builtins = make(map[string]bool)
	for _, t := range builtinScalars {
		b.schema.Types[t.Name] = t
	}
	for _, d := range builtinDirectives {
		b.schema.Directives[d.Name] = d
	}
}

func (b *builder) collect(doc *ast.SchemaDocument, builtIn bool) {
	b.schemaDefs = append(b.schemaDefs, doc.Schema...)
	b.schemaDefs = append(b.schemaDefs, doc.SchemaExtension...)

	for _, dir := range doc.Directives {
		if _, ok := b.schema.Directives[dir.Name]; ok {
			b.addViolation(violationDirectiveAlreadyExists(dir.Name, dir.Position))
			continue
		}
		b.schema.Directives[dir.Name] = buildDirective(dir)
	}

	for _, def := range doc.Definitions {
		if _, ok := b.schema.Types[def.Name]; ok {
			b.addViolation(violationDefinitionAlreadyExists(def.Name, def.Position))
			continue
		}
		if _, ok := b.defs[def.Name]; ok {
			b.addViolation(violationDefinitionAlreadyExists(def.Name, def.Position))
			continue
		}
		if !builtIn && strings.HasPrefix(def.Name, "__") {
			b.addViolation(violationReservedName("Type", def.Name, def.Position))
			continue
		}
		b.defs[def.Name] = def
		b.order = append(b.order, def.Name)
		if builtIn {
			b.builtins[def.Name] = true
		}
	}

	b.extensions = append(b.extensions, doc.Extensions...)
}

// applyExtensions replaces each extended definition with a copy whose lists
// are the base lists followed by the extension's. Duplicates are kept.
func (b *builder) applyExtensions() {
	for _, ext := range b.extensions {
		def, ok := b.defs[ext.Name]
		if !ok {
			if t, builtin := b.schema.Types[ext.Name]; builtin && t.Kind == TypeKindScalar && ext.Kind == ast.Scalar {
				continue
			}
			b.addViolation(violationDefinitionNotFoundForExtension(ext.Name, ext.Position))
			continue
		}
		if def.Kind != ext.Kind {
			b.addViolation(violationUnexpectedKindForExtension(ext, def.Kind))
			continue
		}
		merged := *def
		merged.Directives = concat(def.Directives, ext.Directives)
		merged.Interfaces = concat(def.Interfaces, ext.Interfaces)
		merged.Fields = concat(def.Fields, ext.Fields)
		merged.Types = concat(def.Types, ext.Types)
		merged.EnumValues = concat(def.EnumValues, ext.EnumValues)
		b.defs[ext.Name] = &merged
	}
}

func concat[S ~[]E, E any](base, ext S) S {
	if len(ext) == 0 {
		return base
	}
	out := make(S, 0, len(base)+len(ext))
	out = append(out, base...)
	return append(out, ext...)
}

func (b *builder) populateTypes() {
	for _, name := range b.order {
		def := b.defs[name]
		t := buildType(def)
		t.BuiltIn = b.builtins[name]
		b.schema.Types[name] = t
		if t.Kind == TypeKindInterface {
			b.schema.Interfaces[name] = t
		}
	}
}

func (b *builder) resolveRootTypes() {
	s := b.schema
	s.QueryType, s.MutationType, s.SubscriptionType = "Query", "Mutation", "Subscription"
	explicit := make(map[ast.Operation]*ast.OperationTypeDefinition)
	for _, sd := range b.schemaDefs {
		if sd.Description != "" {
			s.Description = sd.Description
		}
		for _, ot := range sd.OperationTypes {
			explicit[ot.Operation] = ot
			switch ot.Operation {
			case ast.Query:
				s.QueryType = ot.Type
			case ast.Mutation:
				s.MutationType = ot.Type
			case ast.Subscription:
				s.SubscriptionType = ot.Type
			}
		}
	}

	roots := []struct {
		op     ast.Operation
		name   string
		fields map[string]*Field
	}{
		{ast.Query, s.QueryType, s.Queries},
		{ast.Mutation, s.MutationType, s.Mutations},
		{ast.Subscription, s.SubscriptionType, s.Subscriptions},
	}
	for _, root := range roots {
		t := s.Types[root.name]
		if t == nil || t.Kind != TypeKindObject {
			var pos *ast.Position
			if ot := explicit[root.op]; ot != nil {
				pos = ot.Position
			}
			if root.op == ast.Query || explicit[root.op] != nil {
				b.addViolation(violationRootTypeNotFound(root.op, root.name, pos))
			}
			switch root.op {
			case ast.Mutation:
				s.MutationType = ""
			case ast.Subscription:
				s.SubscriptionType = ""
			}
			continue
		}
		for _, f := range t.Fields {
			if _, ok := root.fields[f.Name]; !ok {
				root.fields[f.Name] = f
			}
		}
	}
}

func (b *builder) checkReferences() {
	s := b.schema
	for _, name := range b.order {
		t := s.Types[name]
		owner := func(field string) string { return fmt.Sprintf("%s.%s", t.Name, field) }
		for _, f := range t.Fields {
			if !t.BuiltIn && strings.HasPrefix(f.Name, "__") {
				b.addViolation(violationReservedName("Field", owner(f.Name), f.Position))
			}
			b.checkOutputRef(f.Type, owner(f.Name), f.Position)
			for _, arg := range f.Arguments {
				b.checkInputRef(arg.Type, owner(f.Name)+"("+arg.Name+":)", arg.Position)
			}
		}
		for _, f := range t.InputFields {
			b.checkInputRef(f.Type, owner(f.Name), f.Position)
		}
		for _, iface := range t.Interfaces {
			it := s.Types[iface]
			if it == nil {
				b.addViolation(violationUnknownType(iface, t.Name, t.Position))
			} else if it.Kind != TypeKindInterface {
				b.addViolation(violationNotInterface(iface, t.Name, t.Position))
			}
		}
		for _, member := range t.PossibleTypes {
			mt := s.Types[member]
			if mt == nil {
				b.addViolation(violationUnknownType(member, t.Name, t.Position))
			} else if mt.Kind != TypeKindObject {
				b.addViolation(violationUnionMemberNotObject(member, t.Name, t.Position))
			}
		}
	}
	for _, d := range s.Directives {
		for _, arg := range d.Arguments {
			b.checkInputRef(arg.Type, "@"+d.Name+"("+arg.Name+":)", d.Position)
		}
	}
}

func (b *builder) checkInputRef(ref *TypeRef, owner string, pos *ast.Position) {
	name := ref.GetNamedType()
	t := b.schema.Types[name]
	switch {
	case t == nil:
		b.addViolation(violationUnknownType(name, owner, pos))
	case !t.IsInput():
		b.addViolation(violationNotInputType(name, owner, pos))
	}
}

func (b *builder) checkOutputRef(ref *TypeRef, owner string, pos *ast.Position) {
	name := ref.GetNamedType()
	t := b.schema.Types[name]
	switch {
	case t == nil:
		b.addViolation(violationUnknownType(name, owner, pos))
	case t.Kind == TypeKindInputObject:
		b.addViolation(violationNotOutputType(name, owner, pos))
	}
}

func buildType(def *ast.Definition) *Type {
	t := &Type{
		Name:        def.Name,
		Description: def.Description,
		Directives:  def.Directives,
		Position:    def.Position,
	}
	switch def.Kind {
	case ast.Object, ast.Interface:
		if def.Kind == ast.Object {
			t.Kind = TypeKindObject
		} else {
			t.Kind = TypeKindInterface
		}
		t.Interfaces = append(t.Interfaces, def.Interfaces...)
		for _, f := range def.Fields {
			t.Fields = append(t.Fields, buildField(f))
		}
	case ast.Union:
		t.Kind = TypeKindUnion
		t.PossibleTypes = append(t.PossibleTypes, def.Types...)
	case ast.Enum:
		t.Kind = TypeKindEnum
		for _, v := range def.EnumValues {
			t.EnumValues = append(t.EnumValues, buildEnumValue(v))
		}
	case ast.InputObject:
		t.Kind = TypeKindInputObject
		t.OneOf = def.Directives.ForName("oneOf") != nil
		for _, f := range def.Fields {
			t.InputFields = append(t.InputFields, buildInputField(f))
		}
	case ast.Scalar:
		t.Kind = TypeKindScalar
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		}
	}
	return t
}

func buildField(def *ast.FieldDefinition) *Field {
	f := &Field{
		Name:        def.Name,
		Description: def.Description,
		Type:        FromAST(def.Type),
		Directives:  def.Directives,
		Position:    def.Position,
	}
	f.IsDeprecated, f.DeprecationReason = deprecation(def.Directives)
	for _, arg := range def.Arguments {
		f.Arguments = append(f.Arguments, buildArgument(arg))
	}
	return f
}

func buildArgument(def *ast.ArgumentDefinition) *InputValue {
	iv := &InputValue{
		Name:         def.Name,
		Description:  def.Description,
		Type:         FromAST(def.Type),
		DefaultValue: defaultValue(def.DefaultValue),
		Directives:   def.Directives,
		Position:     def.Position,
	}
	iv.IsDeprecated, iv.DeprecationReason = deprecation(def.Directives)
	return iv
}

func buildInputField(def *ast.FieldDefinition) *InputValue {
	iv := &InputValue{
		Name:         def.Name,
		Description:  def.Description,
		Type:         FromAST(def.Type),
		DefaultValue: defaultValue(def.DefaultValue),
		Directives:   def.Directives,
		Position:     def.Position,
	}
	iv.IsDeprecated, iv.DeprecationReason = deprecation(def.Directives)
	return iv
}

func buildEnumValue(def *ast.EnumValueDefinition) *EnumValue {
	v := &EnumValue{
		Name:        def.Name,
		Description: def.Description,
		Directives:  def.Directives,
	}
	v.IsDeprecated, v.DeprecationReason = deprecation(def.Directives)
	return v
}

func buildDirective(def *ast.DirectiveDefinition) *Directive {
	d := &Directive{
		Name:         def.Name,
		Description:  def.Description,
		IsRepeatable: def.IsRepeatable,
		Position:     def.Position,
	}
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		d.Arguments = append(d.Arguments, buildArgument(arg))
	}
	return d
}

// defaultValue converts a default literal. Defaults are constant, so a
// conversion failure can only come from a malformed literal and is dropped.
func defaultValue(v *ast.Value) value.Value {
	if v == nil {
		return nil
	}
	dv, err := value.FromAST(v, nil)
	if err != nil {
		return nil
	}
	return dv
}

func deprecation(dirs ast.DirectiveList) (bool, string) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return true, arg.Value.Raw
	}
	return true, string(defaultDeprecationReason.(value.String))
}
