package schema

import (
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlcore/internal/value"
)

// Render prints the registry as SDL. Types and directive definitions are
// sorted by name and built-ins are left out. Extensions appear merged into
// the types they extend, and applied directives are printed as written.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	w := &sdlWriter{}
	w.schemaBlock(s)
	for _, name := range sortedNames(s.Types, func(t *Type) bool { return t.BuiltIn }) {
		w.typeDef(s.Types[name])
	}
	for _, name := range sortedNames(s.Directives, func(d *Directive) bool { return d.BuiltIn }) {
		w.directiveDef(s.Directives[name])
	}
	return strings.TrimRight(w.b.String(), "\n") + "\n"
}

func sortedNames[T any](m map[string]T, skip func(T) bool) []string {
	names := make([]string, 0, len(m))
	for name, v := range m {
		if !skip(v) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

var typeKeywords = map[TypeKind]string{
	TypeKindScalar:      "scalar",
	TypeKindObject:      "type",
	TypeKindInterface:   "interface",
	TypeKindUnion:       "union",
	TypeKindEnum:        "enum",
	TypeKindInputObject: "input",
}

type sdlWriter struct {
	b strings.Builder
}

func (w *sdlWriter) str(parts ...string) {
	for _, p := range parts {
		w.b.WriteString(p)
	}
}

// schemaBlock is only needed when a root type has a non-default name or
// the schema carries a description.
func (w *sdlWriter) schemaBlock(s *Schema) {
	roots := []struct{ op, name, conventional string }{
		{"query", s.QueryType, "Query"},
		{"mutation", s.MutationType, "Mutation"},
		{"subscription", s.SubscriptionType, "Subscription"},
	}
	conventional := s.Description == ""
	for _, r := range roots {
		if r.name != "" && r.name != r.conventional {
			conventional = false
		}
	}
	if conventional {
		return
	}
	w.description("", s.Description)
	w.str("schema {\n")
	for _, r := range roots {
		if r.name != "" {
			w.str("  ", r.op, ": ", r.name, "\n")
		}
	}
	w.str("}\n\n")
}

func (w *sdlWriter) typeDef(t *Type) {
	w.description("", t.Description)
	w.str(typeKeywords[t.Kind], " ", t.Name)
	if len(t.Interfaces) > 0 {
		w.str(" implements ", strings.Join(t.Interfaces, " & "))
	}
	w.directives(t.Directives)

	switch t.Kind {
	case TypeKindObject, TypeKindInterface:
		w.str(" {\n")
		for _, f := range t.Fields {
			w.description("  ", f.Description)
			w.str("  ", f.Name)
			w.arguments(f.Arguments)
			w.str(": ", f.Type.String())
			w.directives(f.Directives)
			w.str("\n")
		}
		w.str("}")
	case TypeKindInputObject:
		w.str(" {\n")
		for _, f := range t.InputFields {
			w.description("  ", f.Description)
			w.str("  ")
			w.inputValue(f)
			w.str("\n")
		}
		w.str("}")
	case TypeKindEnum:
		w.str(" {\n")
		for _, v := range t.EnumValues {
			w.description("  ", v.Description)
			w.str("  ", v.Name)
			w.directives(v.Directives)
			w.str("\n")
		}
		w.str("}")
	case TypeKindUnion:
		w.str(" = ", strings.Join(t.PossibleTypes, " | "))
	}
	w.str("\n\n")
}

func (w *sdlWriter) directiveDef(d *Directive) {
	w.description("", d.Description)
	w.str("directive @", d.Name)
	w.arguments(d.Arguments)
	if d.IsRepeatable {
		w.str(" repeatable")
	}
	w.str(" on ", strings.Join(d.Locations, " | "), "\n\n")
}

func (w *sdlWriter) arguments(args []*InputValue) {
	if len(args) == 0 {
		return
	}
	w.str("(")
	for i, arg := range args {
		if i > 0 {
			w.str(", ")
		}
		w.inputValue(arg)
	}
	w.str(")")
}

func (w *sdlWriter) inputValue(iv *InputValue) {
	w.str(iv.Name, ": ", iv.Type.String())
	if iv.DefaultValue != nil {
		w.str(" = ", value.Literal(iv.DefaultValue))
	}
	w.directives(iv.Directives)
}

// directives prints applied directives with their literal arguments.
func (w *sdlWriter) directives(list ast.DirectiveList) {
	for _, d := range list {
		w.str(" @", d.Name)
		if len(d.Arguments) == 0 {
			continue
		}
		w.str("(")
		for i, arg := range d.Arguments {
			if i > 0 {
				w.str(", ")
			}
			v, err := value.FromAST(arg.Value, nil)
			if err != nil {
				v = value.Null{}
			}
			w.str(arg.Name, ": ", value.Literal(v))
		}
		w.str(")")
	}
}

// description prints single-line text as a string literal and anything
// longer as a block string.
func (w *sdlWriter) description(indent, desc string) {
	if desc == "" {
		return
	}
	if !strings.Contains(desc, "\n") {
		w.str(indent, value.Literal(value.String(desc)), "\n")
		return
	}
	w.str(indent, `"""`, "\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		if line != "" {
			w.str(indent, line)
		}
		w.str("\n")
	}
	w.str(indent, `"""`, "\n")
}
