package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlcore/internal/language"
	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

const testSDL = `
directive @upper on FIELD

type Query {
  person(id: ID!): Person
  people(limit: Int = 10, filter: PersonFilter): [Person!]!
  node(id: ID!): Node
  search: [SearchResult]
  dog: Dog
}

type Mutation {
  rename(id: ID!, name: String!): Person
}

interface Node {
  id: ID!
}

type Person implements Node {
  id: ID!
  name: String
  nickname: String
  age: Int
  friends: [Person]
  color: Color
}

type Dog implements Node {
  id: ID!
  name: String!
  barks: Boolean
  owners: [Person]
}

union SearchResult = Person | Dog

enum Color {
  RED
  GREEN
}

input PersonFilter {
  name: String!
  minAge: Int = 0
  color: Color
}
`

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.BuildSDL(testSDL)
	require.NoError(t, err)
	return s
}

func validate(t *testing.T, query string, variables map[string]value.Value, rules ...Rule) gqlerror.List {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return Validate(testSchema(t), doc, variables, nil, "", rules...)
}

func messages(errs gqlerror.List) []string {
	var out []string
	for _, err := range errs {
		out = append(out, err.Message)
	}
	return out
}

const conflictSuffix = ". Use different aliases on the fields to fetch both if this was intentional."

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name: "valid document",
			query: `query Q($id: ID!, $lim: Int) {
  person(id: $id) { ...P friends { name } }
  ...Root
  search { __typename ... on Dog { barks } ... on Person { name } }
  dog @include(if: true) { name @upper }
}
fragment P on Person { id name }
fragment Root on Query { people(limit: $lim, filter: {name: "x", color: RED}) { name } }`,
		},
		{
			name:  "unknown fragment",
			query: `{ ...Unknown }`,
			want:  []string{`Unknown fragment "Unknown".`},
		},
		{
			name:  "unused variable",
			query: `query Q($a: ID!, $c: Int) { person(id: $a) { name } }`,
			want:  []string{`Variable "$c" is never used in operation "Q".`},
		},
		{
			name:  "unused anonymous variable",
			query: `query ($c: Int) { dog { name } }`,
			want:  []string{`Variable "$c" is never used.`},
		},
		{
			name: "variable used through a fragment",
			query: `query Q($a: ID!, $lim: Int) { ...F person(id: $a) { name } }
fragment F on Query { people(limit: $lim) { name } }`,
		},
		{
			name: "fragment cycle",
			query: `{ person(id: 1) { ...A } }
fragment A on Person { ...B }
fragment B on Person { ...A }`,
			want: []string{`Cannot spread fragment "A" within itself via B.`},
		},
		{
			name: "fragment spreading itself",
			query: `{ person(id: 1) { ...A } }
fragment A on Person { name ...A }`,
			want: []string{`Cannot spread fragment "A" within itself.`},
		},
		{
			name:  "unused fragment",
			query: "{ dog { name } }\nfragment F on Dog { name }",
			want:  []string{`Fragment "F" is never used.`},
		},
		{
			name:  "undefined variable",
			query: `query Q { person(id: $x) { name } }`,
			want:  []string{`Variable "$x" is not defined by operation "Q".`},
		},
		{
			name:  "unknown field",
			query: `{ person(id: 1) { nope } }`,
			want:  []string{`Cannot query field "nope" on type "Person".`},
		},
		{
			name:  "missing selection",
			query: `{ person(id: 1) }`,
			want:  []string{`Field "person" of type "Person" must have a selection of subfields. Did you mean "person { ... }"?`},
		},
		{
			name:  "selection on leaf",
			query: `{ person(id: 1) { name { x } } }`,
			want:  []string{`Field "name" must not have a selection since type "String" has no subfields.`},
		},
		{
			name:  "missing required argument",
			query: `{ person { name } }`,
			want:  []string{`Field "person" argument "id" of type "ID!" is required, but it was not provided.`},
		},
		{
			name:  "unknown argument",
			query: `{ person(id: 1, foo: 2) { name } }`,
			want:  []string{`Unknown argument "foo" on field "Query.person".`},
		},
		{
			name:  "duplicate argument",
			query: `{ person(id: 1, id: 1) { name } }`,
			want:  []string{`There can be only one argument named "id".`},
		},
		{
			name:  "argument of wrong type",
			query: `{ people(limit: "ten") { name } }`,
			want:  []string{`Expected value of type "Int", found "ten".`},
		},
		{
			name:  "null for non-null argument",
			query: `{ person(id: null) { name } }`,
			want:  []string{`Expected value of type "ID!", found null.`},
		},
		{
			name:  "missing required input field",
			query: `{ people(filter: {minAge: 3}) { name } }`,
			want:  []string{`Field "PersonFilter.name" of required type "String!" was not provided.`},
		},
		{
			name:  "unknown input field",
			query: `{ people(filter: {name: "x", bogus: 1}) { name } }`,
			want:  []string{`Field "bogus" is not defined by type "PersonFilter".`},
		},
		{
			name:  "unknown enum value",
			query: `{ people(filter: {name: "x", color: BLUE}) { name } }`,
			want:  []string{`Value "BLUE" does not exist in "Color" enum.`},
		},
		{
			name:  "invalid default value",
			query: `query ($l: Int = "x") { people(limit: $l) { name } }`,
			want:  []string{`Expected value of type "Int", found "x".`},
		},
		{
			name:  "variable in wrong position",
			query: `query ($id: String) { person(id: $id) { name } }`,
			want:  []string{`Variable "$id" of type "String" used in position expecting type "ID!".`},
		},
		{
			name:  "nullable variable with default in non-null position",
			query: `query ($id: ID = 1) { person(id: $id) { name } }`,
		},
		{
			name:  "variable of output type",
			query: `query ($p: Person) { dog { name } }`,
			want: []string{
				`Variable "$p" cannot be non-input type "Person".`,
				`Variable "$p" is never used.`,
			},
		},
		{
			name:  "duplicate variable",
			query: `query ($a: ID!, $a: ID!) { person(id: $a) { name } }`,
			want:  []string{`There can be only one variable named "$a".`},
		},
		{
			name:  "duplicate operation name",
			query: `query A { dog { name } } query A { dog { name } }`,
			want:  []string{`There can be only one operation named "A".`},
		},
		{
			name:  "anonymous operation among others",
			query: `{ dog { name } } query B { dog { name } }`,
			want:  []string{`This anonymous operation must be the only defined operation.`},
		},
		{
			name:  "duplicate fragment name",
			query: "{ dog { ...F } }\nfragment F on Dog { name }\nfragment F on Dog { name }",
			want:  []string{`There can be only one fragment named "F".`},
		},
		{
			name:  "unknown type condition",
			query: `{ ... on Cat { name } }`,
			want:  []string{`Unknown type "Cat".`},
		},
		{
			name:  "fragment on scalar",
			query: "{ dog { ...F } }\nfragment F on String { length }",
			want:  []string{`Fragment "F" cannot condition on non composite type "String".`},
		},
		{
			name:  "impossible inline fragment",
			query: `{ dog { ... on Person { name } } }`,
			want:  []string{`Fragment cannot be spread here as objects of type "Dog" can never be of type "Person".`},
		},
		{
			name:  "impossible fragment spread",
			query: "{ dog { ...P } }\nfragment P on Person { name }",
			want:  []string{`Fragment "P" cannot be spread here as objects of type "Dog" can never be of type "Person".`},
		},
		{
			name:  "unknown directive",
			query: `{ dog @nope { name } }`,
			want:  []string{`Unknown directive "@nope".`},
		},
		{
			name:  "misplaced directive",
			query: `query @skip(if: true) { dog { name } }`,
			want:  []string{`Directive "@skip" may not be used on QUERY.`},
		},
		{
			name:  "directive without required argument",
			query: `{ dog @include { name } }`,
			want:  []string{`Directive "@include" argument "if" of type "Boolean!" is required, but it was not provided.`},
		},
		{
			name:  "repeated directive",
			query: `{ dog @upper @upper { name } }`,
			want:  []string{`The directive "@upper" can only be used once at this location.`},
		},
		{
			name:  "unknown directive argument",
			query: `{ dog @skip(if: true, when: 1) { name } }`,
			want:  []string{`Unknown argument "when" on directive "@skip".`},
		},
		{
			name:  "unsupported operation type",
			query: `subscription { dog { name } }`,
			want:  []string{`Schema is not configured to execute subscription operation.`},
		},
		{
			name:  "overlapping different fields",
			query: `{ dog { name: barks name } }`,
			want:  []string{`Fields "name" conflict because barks and name are different fields` + conflictSuffix},
		},
		{
			name:  "overlapping differing arguments",
			query: `{ person(id: 1) { name } person(id: 2) { age } }`,
			want:  []string{`Fields "person" conflict because they have differing arguments` + conflictSuffix},
		},
		{
			name:  "overlapping conflicting types on exclusive parents",
			query: `{ search { ... on Person { id: name } ... on Dog { id } } }`,
			want:  []string{`Fields "id" conflict because they return conflicting types String and ID!` + conflictSuffix},
		},
		{
			name:  "overlapping subfields",
			query: `{ dog { name } dog { name: barks } }`,
			want:  []string{`Fields "dog" conflict because subfields "name" conflict because name and barks are different fields` + conflictSuffix},
		},
		{
			name:  "overlapping across fragments",
			query: "{ dog { ...F name: barks } }\nfragment F on Dog { name }",
			want:  []string{`Fields "name" conflict because name and barks are different fields` + conflictSuffix},
		},
		{
			name: "pair seen under exclusive parents is checked again",
			query: `{
  search { ... on Person { k: friends { ...A } } ... on Dog { k: owners { ...B } } }
  person(id: 1) { ...A ...B }
}
fragment A on Person { name }
fragment B on Person { name: nickname }`,
			want: []string{`Fields "name" conflict because name and nickname are different fields` + conflictSuffix},
		},
		{
			name:  "same field through fragment merges",
			query: "{ dog { ...F name } person(id: 1) { name } person(id: 1) { age } }\nfragment F on Dog { name }",
		},
		{
			name:  "different fields on exclusive parents",
			query: `{ search { ... on Person { label: name } ... on Dog { label: name } } }`,
			want:  []string{`Fields "label" conflict because they return conflicting types String and String!` + conflictSuffix},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := messages(validate(t, tt.query, nil))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateReportsRuleAndLocation(t *testing.T) {
	errs := validate(t, `{ person(id: 1) { nope } }`, nil)
	require.Len(t, errs, 1)
	require.Equal(t, "FieldsOnCorrectType", errs[0].Rule)
	require.Equal(t, []gqlerror.Location{{Line: 1, Column: 19}}, errs[0].Locations)
}

func TestValidateCollectsEveryError(t *testing.T) {
	errs := validate(t, `query Q($unused: Int) { nope ...Missing }`, nil)
	require.ElementsMatch(t, []string{
		`Cannot query field "nope" on type "Query".`,
		`Unknown fragment "Missing".`,
		`Variable "$unused" is never used in operation "Q".`,
	}, messages(errs))
}

func TestVariablesOfCorrectType(t *testing.T) {
	query := `query ($id: ID!, $limit: Int = 3) { person(id: $id) { name } people(limit: $limit) { name } }`

	t.Run("missing required variable", func(t *testing.T) {
		errs := validate(t, query, map[string]value.Value{})
		require.Equal(t, []string{`Variable "$id" of required type "ID!" was not provided.`}, messages(errs))
	})

	t.Run("invalid value", func(t *testing.T) {
		errs := validate(t, query, map[string]value.Value{"id": value.NewInt(1), "limit": value.String("x")})
		require.Len(t, errs, 1)
		require.True(t, strings.HasPrefix(errs[0].Message, `Variable "$limit" got invalid value "x"; `), errs[0].Message)
		require.Equal(t, "VariablesOfCorrectType", errs[0].Rule)
	})

	t.Run("valid values", func(t *testing.T) {
		errs := validate(t, query, map[string]value.Value{"id": value.String("1")})
		require.Empty(t, errs)
	})

	t.Run("operation not selected", func(t *testing.T) {
		doc, err := language.ParseQuery(`query A($id: ID!) { person(id: $id) { name } } query B { dog { name } }`)
		require.NoError(t, err)
		errs := Validate(testSchema(t), doc, map[string]value.Value{}, nil, "B")
		require.Empty(t, errs)
		errs = Validate(testSchema(t), doc, map[string]value.Value{}, nil, "A")
		require.Equal(t, []string{`Variable "$id" of required type "ID!" was not provided.`}, messages(errs))
	})
}

func TestMaxDepth(t *testing.T) {
	query := "{ person(id: 1) { ...F } }\nfragment F on Person { friends { name } }"
	errs := validate(t, query, nil, MaxDepth(2))
	require.Equal(t, []string{`Field "name" has depth 3 that exceeds max depth 2.`}, messages(errs))
	require.Equal(t, "MaxDepth", errs[0].Rule)

	require.Empty(t, validate(t, query, nil, MaxDepth(3)))
}

func TestFragmentsFromOutsideDocument(t *testing.T) {
	extra, err := language.ParseQuery(`fragment Name on Dog { name }`)
	require.NoError(t, err)
	doc, err := language.ParseQuery(`{ dog { ...Name } }`)
	require.NoError(t, err)

	fragments := map[string]*ast.FragmentDefinition{"Name": extra.Fragments[0]}
	errs := Validate(testSchema(t), doc, nil, fragments, "", KnownFragmentNames)
	require.Empty(t, errs)
}

type fieldCounter struct {
	Base
	enter, exit int
	types       []string
}

func (c *fieldCounter) EnterField(ctx *Context, f *ast.Field) {
	c.enter++
	c.types = append(c.types, ctx.ParentType()+"."+f.Name)
}

func (c *fieldCounter) ExitField(*Context, *ast.Field) { c.exit++ }

func TestWalkTracksTypes(t *testing.T) {
	doc, err := language.ParseQuery(`{ dog { name } search { ... on Person { friends { age } } } }`)
	require.NoError(t, err)

	counter := &fieldCounter{}
	ctx := NewContext(testSchema(t), doc, nil, nil, "")
	Walk(ctx, Compose(Rule{Name: "count", New: func() Visitor { return counter }}))

	require.Equal(t, 5, counter.enter)
	require.Equal(t, counter.enter, counter.exit)
	want := []string{"Query.dog", "Dog.name", "Query.search", "Person.friends", "Person.age"}
	require.Equal(t, want, counter.types)
}
