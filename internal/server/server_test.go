package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	graphql "github.com/hasura/go-graphql-client"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/hanpama/gqlcore/internal/executor"
	"github.com/hanpama/gqlcore/internal/reqid"
	"github.com/hanpama/gqlcore/internal/resolver"
	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/value"
)

const testSDL = `
type Query {
  hello: String
  echo(text: String!): String
  big(n: Int!): String
}
`

type captured struct {
	md metadata.MD
	id string
}

func newTestHandler(t *testing.T, got *captured, opts ...Option) *Handler {
	t.Helper()
	s, err := schema.BuildSDL(testSDL)
	require.NoError(t, err)
	root := &resolver.Object{Name: "Query", Fields: map[string]resolver.FieldFunc{
		"hello": func(ctx *resolver.FieldContext) (value.Value, error) {
			if got != nil {
				got.md, _ = metadata.FromOutgoingContext(ctx.Context())
				got.id, _ = reqid.FromContext(ctx.Context())
			}
			return value.String("world"), nil
		},
		"echo": func(ctx *resolver.FieldContext) (value.Value, error) {
			return ctx.Arg("text"), nil
		},
		"big": func(ctx *resolver.FieldContext) (value.Value, error) {
			return value.String(ctx.Arg("n").(value.Number).String()), nil
		},
	}}
	return New(executor.New(s, root), opts...)
}

func post(h http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestForwardedHeaders(t *testing.T) {
	var got captured
	h := newTestHandler(t, &got, WithMetadataHeaders("X-Test"))

	w := post(h, `{"query":"{ hello }"}`, map[string]string{"X-Test": "abc", "X-Other": "nope"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"abc"}, got.md.Get("x-test"))
	require.Empty(t, got.md.Get("x-other"))
}

func TestForwardedHeadersDefaultEmpty(t *testing.T) {
	var got captured
	h := newTestHandler(t, &got)

	w := post(h, `{"query":"{ hello }"}`, map[string]string{"X-Test": "abc"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, got.md.Get("x-test"))
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, nil, WithCORS("*"))

	w := post(h, `{"query":"{ hello }"}`, map[string]string{"Origin": "http://example.com"})
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest(http.MethodOptions, "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	require.Equal(t, http.StatusNoContent, pw.Code)
	require.Equal(t, "*", pw.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Test", pw.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSSpecificOrigin(t *testing.T) {
	h := newTestHandler(t, nil, WithCORS("http://a.example"))

	w := post(h, `{"query":"{ hello }"}`, map[string]string{"Origin": "http://a.example"})
	require.Equal(t, "http://a.example", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", w.Header().Get("Vary"))

	w = post(h, `{"query":"{ hello }"}`, map[string]string{"Origin": "http://b.example"})
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, nil, WithMaxBodyBytes(10))

	w := post(h, `{"query":"1234567890"}`, nil)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.JSONEq(t, `{"data":null,"errors":[{"message":"body too large"}]}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	t.Run("generated", func(t *testing.T) {
		var got captured
		h := newTestHandler(t, &got)

		w := post(h, `{"query":"{ hello }"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotEmpty(t, got.id)
		require.Equal(t, []string{got.id}, got.md.Get("graphql-request-id"))
		require.Equal(t, got.id, w.Header().Get(reqid.Header))
	})

	t.Run("supplied by the caller", func(t *testing.T) {
		var got captured
		h := newTestHandler(t, &got)

		w := post(h, `{"query":"{ hello }"}`, map[string]string{reqid.Header: "abc-123"})
		require.Equal(t, "abc-123", got.id)
		require.Equal(t, "abc-123", w.Header().Get(reqid.Header))
	})
}

func TestRequests(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		want   string
	}{
		{
			name:   "post",
			method: http.MethodPost,
			body:   `{"query":"query Q($t: String!) { echo(text: $t) }","variables":{"t":"hi"},"operationName":"Q"}`,
			status: http.StatusOK,
			want:   `{"data":{"echo":"hi"}}`,
		},
		{
			name:   "get",
			method: http.MethodGet,
			target: "/?" + url.Values{"query": {`query($t: String!) { echo(text: $t) }`}, "variables": {`{"t":"yo"}`}}.Encode(),
			status: http.StatusOK,
			want:   `{"data":{"echo":"yo"}}`,
		},
		{
			name:   "large integers keep their digits",
			method: http.MethodPost,
			body:   `{"query":"query($n: Int!) { big(n: $n) }","variables":{"n":2147483647}}`,
			status: http.StatusOK,
			want:   `{"data":{"big":"2147483647"}}`,
		},
		{
			name:   "batch",
			method: http.MethodPost,
			body:   `[{"query":"{ hello }"},{"query":"{ nope }"}]`,
			status: http.StatusOK,
			want:   `[{"data":{"hello":"world"}},{"data":null,"errors":[{"message":"Cannot query field \"nope\" on type \"Query\".","locations":[{"line":1,"column":3}]}]}]`,
		},
		{
			name:   "empty batch",
			method: http.MethodPost,
			body:   `[]`,
			status: http.StatusBadRequest,
			want:   `{"data":null,"errors":[{"message":"empty batch"}]}`,
		},
		{
			name:   "invalid json",
			method: http.MethodPost,
			body:   `{"query":`,
			status: http.StatusBadRequest,
			want:   `{"data":null,"errors":[{"message":"invalid JSON"}]}`,
		},
		{
			name:   "missing query",
			method: http.MethodGet,
			target: "/",
			status: http.StatusBadRequest,
			want:   `{"data":null,"errors":[{"message":"missing 'query'"}]}`,
		},
		{
			name:   "method not allowed",
			method: http.MethodPut,
			status: http.StatusMethodNotAllowed,
			want:   `{"data":null,"errors":[{"message":"method not allowed"}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.target
			if target == "" {
				target = "/"
			}
			req := httptest.NewRequest(tt.method, target, strings.NewReader(tt.body))
			if tt.method == http.MethodPost {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			require.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestUnsupportedContentType(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{ hello }`))
	req.Header.Set("Content-Type", "application/graphql")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGraphiQL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	w := httptest.NewRecorder()
	newTestHandler(t, nil).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), "GraphiQL")

	w = httptest.NewRecorder()
	newTestHandler(t, nil, WithGraphiQL(false)).ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPretty(t *testing.T) {
	w := post(newTestHandler(t, nil, WithPretty()), `{"query":"{ hello }"}`, nil)
	want := "{\n  \"data\": {\n    \"hello\": \"world\"\n  }\n}\n"
	if diff := cmp.Diff(want, w.Body.String()); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t, nil))
	defer srv.Close()
	client := graphql.NewClient(srv.URL, srv.Client())

	t.Run("typed query", func(t *testing.T) {
		var q struct {
			Hello string `graphql:"hello"`
		}
		require.NoError(t, client.Query(context.Background(), &q, nil))
		require.Equal(t, "world", q.Hello)
	})

	t.Run("raw query with variables", func(t *testing.T) {
		raw, err := client.ExecRaw(context.Background(), `query($t: String!) { echo(text: $t) }`, map[string]any{"t": "raw"})
		require.NoError(t, err)
		var data struct {
			Echo string `json:"echo"`
		}
		require.NoError(t, json.Unmarshal(raw, &data))
		require.Equal(t, "raw", data.Echo)
	})

	t.Run("errors surface", func(t *testing.T) {
		_, err := client.ExecRaw(context.Background(), `{ nope }`, nil)
		require.ErrorContains(t, err, `Cannot query field "nope" on type "Query".`)
	})
}
