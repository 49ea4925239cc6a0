package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Setenv("GQL_PORT", "9090")

	cfg, err := Parse([]byte(`
listen: ":${GQL_PORT}"
schema:
  - schema.graphql
fixture: data.yaml
timeout: 3s
maxDepth: 8
cors: ["*"]
metadataHeaders: [Authorization]
log:
  level: DEBUG
  format: json
tracing:
  endpoint: ${GQL_OTLP:-localhost:4317}
  serviceName: gqlcore
`))
	require.NoError(t, err)

	want := &Config{
		Listen:          ":9090",
		Schema:          []string{"schema.graphql"},
		Fixture:         "data.yaml",
		Timeout:         3 * time.Second,
		MaxDepth:        8,
		GraphiQL:        true,
		CORS:            []string{"*"},
		MetadataHeaders: []string{"Authorization"},
		Log:             Log{Level: "debug", Format: "json"},
		Tracing:         Tracing{Endpoint: "localhost:4317", ServiceName: "gqlcore"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`schema: [a.graphql]`))
	require.NoError(t, err)
	require.Equal(t, "localhost:8080", cfg.Listen)
	require.Equal(t, 10*time.Second, cfg.Timeout)
	require.True(t, cfg.GraphiQL)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "schema required",
			yaml: `listen: ":80"`,
			want: "invalid configuration: Schema is required",
		},
		{
			name: "listen address",
			yaml: "listen: nowhere\nschema: [a.graphql]",
			want: `invalid configuration: Listen must be host:port, got "nowhere"`,
		},
		{
			name: "log level",
			yaml: "schema: [a.graphql]\nlog: {level: loud}",
			want: `invalid configuration: Log.Level must be one of [debug info warn warning error], got "loud"`,
		},
		{
			name: "tracing needs a service name",
			yaml: "schema: [a.graphql]\ntracing: {endpoint: \"collector:4317\"}",
			want: "invalid configuration: Tracing.ServiceName is required",
		},
		{
			name: "every violation is reported",
			yaml: "listen: nowhere\nlog: {format: xml}",
			want: `invalid configuration: Listen must be host:port, got "nowhere"; Schema is required; Log.Format must be one of [text json], got "xml"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidConfig)
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("schema: [unterminated"))
	require.ErrorIs(t, err, ErrInvalidYAML)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("relative paths", func(t *testing.T) {
		path := filepath.Join(dir, "gqlcore.yaml")
		require.NoError(t, os.WriteFile(path, []byte("schema: [schema.graphql, /abs/other.graphql]\nfixture: data.yaml\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, []string{filepath.Join(dir, "schema.graphql"), "/abs/other.graphql"}, cfg.Schema)
		require.Equal(t, filepath.Join(dir, "data.yaml"), cfg.Fixture)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		require.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o644))
		_, err := Load(path)
		require.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SET", "value")
	t.Setenv("EMPTY", "")

	require.Equal(t, "value", ExpandEnvVars("${SET}"))
	require.Equal(t, "fallback", ExpandEnvVars("${EMPTY:-fallback}"))
	require.Equal(t, "", ExpandEnvVars("${GQLCORE_UNSET_VAR}"))
	require.Equal(t, "$HOME stays", ExpandEnvVars("$HOME stays"))
}
