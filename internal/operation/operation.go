// Package operation selects the operation to execute from a query document
// and classifies it against the schema's root fields.
package operation

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/language"
	"github.com/hanpama/gqlcore/internal/schema"
)

// Operation is the selected operation of one request together with every
// fragment of its document. It is read-only once built.
type Operation struct {
	Name                string
	Type                ast.Operation
	RootField           *ast.Field // nil when the selection set starts with an unknown fragment
	SelectionSet        ast.SelectionSet
	VariableDefinitions ast.VariableDefinitionList
	Directives          ast.DirectiveList
	Fragments           map[string]*ast.FragmentDefinition
	Definition          *ast.OperationDefinition
	Document            *ast.QueryDocument
}

// Fragment returns the named fragment definition, or nil.
func (o *Operation) Fragment(name string) *ast.FragmentDefinition {
	return o.Fragments[name]
}

// Parse parses query and builds the operation named name.
func Parse(query string, s *schema.Schema, name string) (*Operation, error) {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	return Build(doc, s, name)
}

// Build selects an operation from doc. An empty name is allowed only when
// the document holds a single operation. Every operation's root field must
// be a query, mutation or subscription field of s.
func Build(doc *ast.QueryDocument, s *schema.Schema, name string) (*Operation, error) {
	if name == "" && len(doc.Operations) > 1 {
		return nil, gqlerror.Errorf("must provide operation name")
	}

	fragments := make(map[string]*ast.FragmentDefinition, len(doc.Fragments))
	for _, f := range doc.Fragments {
		if _, ok := fragments[f.Name]; !ok {
			fragments[f.Name] = f
		}
	}

	var selected *Operation
	for _, def := range doc.Operations {
		root := RootField(def.SelectionSet, fragments)
		typ, err := classify(s, def, root)
		if err != nil {
			return nil, err
		}
		if selected != nil {
			continue
		}
		if name == "" || def.Name == name {
			selected = &Operation{
				Name:                def.Name,
				Type:                typ,
				RootField:           root,
				SelectionSet:        def.SelectionSet,
				VariableDefinitions: def.VariableDefinitions,
				Directives:          def.Directives,
				Fragments:           fragments,
				Definition:          def,
				Document:            doc,
			}
		}
	}

	if selected == nil {
		if name != "" {
			return nil, gqlerror.Errorf("Unknown operation named %q.", name)
		}
		return nil, gqlerror.Errorf("document does not contain any operation")
	}
	return selected, nil
}

// RootField returns the first field of set, looking into leading fragments.
func RootField(set ast.SelectionSet, fragments map[string]*ast.FragmentDefinition) *ast.Field {
	return rootField(set, fragments, map[string]bool{})
}

func rootField(set ast.SelectionSet, fragments map[string]*ast.FragmentDefinition, seen map[string]bool) *ast.Field {
	if len(set) == 0 {
		return nil
	}
	switch sel := set[0].(type) {
	case *ast.Field:
		return sel
	case *ast.InlineFragment:
		return rootField(sel.SelectionSet, fragments, seen)
	case *ast.FragmentSpread:
		frag := fragments[sel.Name]
		if frag == nil || seen[sel.Name] {
			return nil
		}
		seen[sel.Name] = true
		return rootField(frag.SelectionSet, fragments, seen)
	}
	return nil
}

// classify decides the operation type from the root field. The declared
// keyword is tried first, then queries, mutations and subscriptions in
// that order. Without a root field the declared keyword is used and the
// validation rules report the problem.
func classify(s *schema.Schema, def *ast.OperationDefinition, root *ast.Field) (ast.Operation, error) {
	declared := def.Operation
	if declared == "" {
		declared = ast.Query
	}
	if root == nil {
		return declared, nil
	}
	switch root.Name {
	case schema.TypenameFieldName:
		if s.RootType(declared) != "" {
			return declared, nil
		}
		return ast.Query, nil
	case schema.SchemaFieldName, schema.TypeFieldName:
		return ast.Query, nil
	}
	if _, ok := s.RootFields(declared)[root.Name]; ok {
		return declared, nil
	}
	for _, op := range []ast.Operation{ast.Query, ast.Mutation, ast.Subscription} {
		if _, ok := s.RootFields(op)[root.Name]; ok {
			return op, nil
		}
	}
	return "", gqlerror.ErrorPosf(root.Position, "Cannot query field %q on any root type.", root.Name)
}
