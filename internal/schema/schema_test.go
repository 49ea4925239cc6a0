package schema

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/hanpama/gqlcore/internal/value"
)

func TestBuildMergesExtensions(t *testing.T) {
	s := mustBuild(t, "testdata/base.graphql", "testdata/extensions.graphql")

	require.Equal(t, "Query", s.QueryType)
	require.Equal(t, "Mutation", s.MutationType)
	require.Equal(t, "", s.SubscriptionType)

	require.Equal(t, []string{"node", "people", "person"}, sortedKeys(s.Queries))
	require.Equal(t, []string{"rename"}, sortedKeys(s.Mutations))
	require.Empty(t, s.Subscriptions)

	person := s.Types["Person"]
	require.Equal(t, []string{"id", "name", "age", "favoriteColor"}, fieldNames(person))
	color := person.Field("favoriteColor")
	require.True(t, color.IsDeprecated)
	require.Equal(t, "use colors", color.DeprecationReason)

	var colors []string
	for _, v := range s.Types["Color"].EnumValues {
		colors = append(colors, v.Name)
	}
	require.Equal(t, []string{"RED", "GREEN", "BLUE"}, colors)

	require.Equal(t, []string{"Person", "Pet"}, s.Types["SearchResult"].PossibleTypes)
	require.Equal(t, []string{"Person", "Pet"}, s.PossibleTypes("Node"))
	require.Contains(t, s.Interfaces, "Node")
	require.True(t, s.IsPossibleType("SearchResult", "Pet"))
	require.False(t, s.IsPossibleType("Node", "Query"))

	filter := s.Types["PersonFilter"]
	require.Equal(t, "10", value.Literal(filter.InputField("limit").DefaultValue))
	require.Nil(t, filter.InputField("name").DefaultValue)
}

func TestBuildWithoutExtensionsIsIdempotent(t *testing.T) {
	base := mustRead(t, "testdata/base.graphql")

	once, err := Build(base)
	require.NoError(t, err)

	doc, err := parser.ParseSchema(base)
	require.NoError(t, err)
	doc.Extensions = nil
	again, err := BuildDocuments(doc)
	require.NoError(t, err)

	if diff := cmp.Diff(once, again, cmp.AllowUnexported(Schema{}, value.Number{}, value.Object{})); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFailures(t *testing.T) {
	tests := []struct {
		name string
		sdl  string
		want string
	}{
		{
			name: "extension of undefined type",
			sdl:  "type Query { a: Int }\nextend type Missing { b: Int }",
			want: `Cannot extend type "Missing" because it is not defined`,
		},
		{
			name: "extension of undefined enum",
			sdl:  "type Query { a: Int }\nextend enum Missing { B }",
			want: `Cannot extend type "Missing" because it is not defined`,
		},
		{
			name: "extension kind mismatch",
			sdl:  "type Query { a: Int }\nenum E { A }\nextend type E { b: Int }",
			want: `Cannot extend enum "E" with a object extension`,
		},
		{
			name: "missing query type",
			sdl:  "type Mutation { a: Int }",
			want: `Root query type "Query" is not defined`,
		},
		{
			name: "explicit root type missing",
			sdl:  "schema { query: Query mutation: Writes }\ntype Query { a: Int }",
			want: `Root mutation type "Writes" is not defined`,
		},
		{
			name: "duplicate type",
			sdl:  "type Query { a: Int }\ntype Query { b: Int }",
			want: `Type "Query" is already defined`,
		},
		{
			name: "unknown field type",
			sdl:  "type Query { a: Missing }",
			want: `Unknown type "Missing" referenced by Query.a`,
		},
		{
			name: "input type as output",
			sdl:  "type Query { a: In }\ninput In { x: Int }",
			want: `Type "In" used by Query.a is not an output type`,
		},
		{
			name: "object as argument",
			sdl:  "type Query { a(x: Query): Int }",
			want: `Type "Query" used by Query.a(x:) is not an input type`,
		},
		{
			name: "union member is not an object",
			sdl:  "type Query { a: U }\nunion U = Int",
			want: `Union "U" member "Int" is not an object type`,
		},
		{
			name: "implements non interface",
			sdl:  "type Query implements Other { a: Int }\ntype Other { a: Int }",
			want: `Type "Other" implemented by "Query" is not an interface`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSDL(tt.sdl)
			require.Error(t, err)
			var buildErr BuildError
			require.ErrorAs(t, err, &buildErr)
			var messages []string
			for _, v := range buildErr {
				messages = append(messages, v.Message)
			}
			require.Contains(t, messages, tt.want)
		})
	}
}

func TestBuildCustomRootTypes(t *testing.T) {
	s, err := BuildSDL(`
		schema { query: Root mutation: Writes }
		type Root { hello: String }
		type Writes { save: Boolean }
	`)
	require.NoError(t, err)
	require.Equal(t, "Root", s.QueryType)
	require.Equal(t, "Writes", s.MutationType)
	require.Contains(t, s.Queries, "hello")
	require.Contains(t, s.Mutations, "save")
	require.NotNil(t, s.FieldDefinition("Root", SchemaFieldName))
	require.NotNil(t, s.FieldDefinition("Writes", TypenameFieldName))
	require.Nil(t, s.FieldDefinition("Writes", SchemaFieldName))
}

func TestBuildSeedsBuiltins(t *testing.T) {
	s, err := BuildSDL("type Query { a: Int }")
	require.NoError(t, err)
	for _, name := range []string{"String", "Int", "Float", "Boolean", "ID", "__Schema", "__Type"} {
		require.Contains(t, s.Types, name)
	}
	for _, name := range []string{"skip", "include", "deprecated"} {
		require.Contains(t, s.Directives, name)
	}
}

func TestRender(t *testing.T) {
	s := mustBuild(t, "testdata/base.graphql", "testdata/extensions.graphql")
	want := `enum Color {
  RED
  GREEN
  BLUE
}

type Mutation {
  rename(id: ID!, name: String!): Person
}

interface Node {
  id: ID!
}

"A person known to the system."
type Person implements Node {
  id: ID!
  name: String!
  age: Int
  favoriteColor: Color @deprecated(reason: "use colors")
}

input PersonFilter {
  name: String
  limit: Int = 10
}

type Pet implements Node {
  id: ID!
  owner: Person
}

type Query {
  person(id: ID!): Person
  node(id: ID!): Node
  people(filter: PersonFilter): [Person!]!
}

union SearchResult = Person | Pet
`
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Errorf("render mismatch (-want +got):\n%s", diff)
	}

	// Rendered SDL builds into the same registry shape.
	again, err := BuildSDL(Render(s))
	require.NoError(t, err)
	require.Equal(t, Render(s), Render(again))
}

func TestRenderKeepsAppliedDirectives(t *testing.T) {
	s, err := BuildSDL(`
schema { query: Root }

directive @upper(lang: String = "en") repeatable on FIELD_DEFINITION | ENUM_VALUE

"""
Entry point.
Says "hello" in \"""quotes\""".
"""
type Root {
  greet(name: String = "World" @deprecated): String @upper(lang: "tr") @upper
  at: Time
  find(by: Lookup): Mood
}

scalar Time @specifiedBy(url: "https://example.com/time")

input Lookup @oneOf {
  id: ID
  name: String
}

enum Mood {
  HAPPY @upper
  SAD @deprecated(reason: "cheer up")
}
`)
	require.NoError(t, err)

	want := `schema {
  query: Root
}

"""
Entry point.
Says "hello" in \"""quotes\""".
"""
type Root {
  greet(name: String = "World" @deprecated): String @upper(lang: "tr") @upper
  at: Time
  find(by: Lookup): Mood
}

input Lookup @oneOf {
  id: ID
  name: String
}

enum Mood {
  HAPPY @upper
  SAD @deprecated(reason: "cheer up")
}

scalar Time @specifiedBy(url: "https://example.com/time")

directive @upper(lang: String = "en") repeatable on FIELD_DEFINITION | ENUM_VALUE
`
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Errorf("render mismatch (-want +got):\n%s", diff)
	}

	again, err := BuildSDL(Render(s))
	require.NoError(t, err)
	require.Equal(t, Render(s), Render(again))
	require.True(t, again.Types["Lookup"].OneOf)
	require.Equal(t, "cheer up", again.Types["Mood"].EnumValue("SAD").DeprecationReason)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.graphql"), []byte("type Query { a: Int }"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.graphqls"), []byte("extend type Query { b: Int }"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, sortedKeys(s.Queries))

	_, err = Load(t.TempDir())
	require.Error(t, err)
}

func mustRead(t *testing.T, path string) *ast.Source {
	t.Helper()
	src, err := ReadSource(path)
	require.NoError(t, err)
	return src
}

func mustBuild(t *testing.T, paths ...string) *Schema {
	t.Helper()
	var sources []*ast.Source
	for _, p := range paths {
		sources = append(sources, mustRead(t, p))
	}
	s, err := Build(sources...)
	require.NoError(t, err)
	return s
}

func sortedKeys(m map[string]*Field) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldNames(t *Type) []string {
	var names []string
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}
