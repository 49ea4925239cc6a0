package directives_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/gqlcore/internal/directives"
	"github.com/hanpama/gqlcore/internal/executor"
	"github.com/hanpama/gqlcore/internal/logging"
	"github.com/hanpama/gqlcore/internal/resolver"
	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

const testSDL = `
type Query {
  greeting: String
  shouted: String @upper
  tags: [String]
  count: Int
  legacy: String @deprecated(reason: "use greeting")
}
`

func newContainer(t *testing.T, logger *logging.Config) *executor.Container {
	t.Helper()
	s, err := schema.Build(
		&ast.Source{Name: "directives.graphql", Input: directives.SDL},
		&ast.Source{Name: "schema.graphql", Input: testSDL},
	)
	require.NoError(t, err)

	root := &resolver.Object{Name: "Query", Fields: map[string]resolver.FieldFunc{
		"greeting": func(*resolver.FieldContext) (value.Value, error) { return value.String("hello wORLD"), nil },
		"shouted":  func(*resolver.FieldContext) (value.Value, error) { return value.String("quiet"), nil },
		"tags": func(*resolver.FieldContext) (value.Value, error) {
			return value.List{value.String("go"), value.Null{}, value.String("GraphQL")}, nil
		},
		"count":  func(*resolver.FieldContext) (value.Value, error) { return value.NewInt(3), nil },
		"legacy": func(*resolver.FieldContext) (value.Value, error) { return value.String("old"), nil },
	}}

	l := logging.Nop()
	if logger != nil {
		l = logging.New(*logger)
	}
	var opts []executor.Option
	for name, h := range directives.Handlers(l) {
		opts = append(opts, executor.WithDirective(name, h))
	}
	return executor.New(s, root, opts...)
}

func TestCaseDirectives(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "upper",
			query: `{ greeting @upper }`,
			want:  `{"greeting":"HELLO WORLD"}`,
		},
		{
			name:  "lower",
			query: `{ greeting @lower }`,
			want:  `{"greeting":"hello world"}`,
		},
		{
			name:  "title",
			query: `{ greeting @title }`,
			want:  `{"greeting":"Hello World"}`,
		},
		{
			name:  "language specific",
			query: `{ greeting @upper(lang: "tr") }`,
			want:  `{"greeting":"HELLO WORLD"}`,
		},
		{
			name:  "declared on the field definition",
			query: `{ shouted }`,
			want:  `{"shouted":"QUIET"}`,
		},
		{
			name:  "query directive runs outside definition directive",
			query: `{ shouted @lower }`,
			want:  `{"shouted":"quiet"}`,
		},
		{
			name:  "list items",
			query: `{ tags @lower }`,
			want:  `{"tags":["go",null,"graphql"]}`,
		},
		{
			name:  "non string results pass through",
			query: `{ count @upper }`,
			want:  `{"count":3}`,
		},
	}
	c := newContainer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := c.Execute(context.Background(), executor.Request{Query: tt.query})
			require.Empty(t, resp.Errors)
			got, err := json.Marshal(resp.Data)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Fatalf("data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInvalidLanguage(t *testing.T) {
	c := newContainer(t, nil)
	resp := c.Execute(context.Background(), executor.Request{Query: `{ greeting @upper(lang: "!!") }`})
	require.Len(t, resp.Errors, 1)
	require.Contains(t, resp.Errors[0].Message, `invalid language "!!"`)

	got, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.JSONEq(t, `{"greeting":null}`, string(got))
}

func TestDeprecatedLogsAccess(t *testing.T) {
	var buf bytes.Buffer
	c := newContainer(t, &logging.Config{Level: logging.LevelWarn, Format: logging.FormatJSON, Output: &buf})

	resp := c.Execute(context.Background(), executor.Request{Query: `{ greeting legacy }`})
	require.Empty(t, resp.Errors)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	want := map[string]any{
		"msg":    "deprecated field resolved",
		"type":   "Query",
		"field":  "legacy",
		"path":   "legacy",
		"reason": "use greeting",
	}
	for k, v := range want {
		require.Equal(t, v, rec[k], k)
	}
}
