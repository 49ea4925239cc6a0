package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"

	"github.com/hanpama/gqlcore/internal/config"
	"github.com/hanpama/gqlcore/internal/directives"
	"github.com/hanpama/gqlcore/internal/eventbus"
	"github.com/hanpama/gqlcore/internal/executor"
	"github.com/hanpama/gqlcore/internal/fixture"
	"github.com/hanpama/gqlcore/internal/logging"
	"github.com/hanpama/gqlcore/internal/otel"
	"github.com/hanpama/gqlcore/internal/schema"
	"github.com/hanpama/gqlcore/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var configPath string
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a schema over HTTP",
		Long: `Serve a schema over HTTP at /graphql.

Fields resolve from a YAML or JSON fixture whose query, mutation and
subscription sections mirror the root types. Without a fixture every field
resolves to null and introspection still works. The @upper, @lower and
@title directives are declared for every schema.

Flags override the values of the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := resolveConfig(cmd, cfg, configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), resolved, cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "configuration file")
	flags.StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address")
	flags.StringSliceVarP(&cfg.Schema, "schema", "s", nil, "schema file or directory (repeatable)")
	flags.StringVar(&cfg.Fixture, "fixture", "", "YAML or JSON data served by the schema")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	flags.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", 0, "request body limit in bytes (0 disables)")
	flags.IntVar(&cfg.MaxDepth, "max-depth", 0, "reject selections nested deeper than this (0 disables)")
	flags.BoolVar(&cfg.FailFast, "fail-fast", false, "abort an operation on its first field error")
	flags.BoolVar(&cfg.Pretty, "pretty", false, "indent JSON responses")
	flags.BoolVar(&cfg.GraphiQL, "graphiql", cfg.GraphiQL, "serve GraphiQL to browsers")
	flags.StringSliceVar(&cfg.CORS, "cors", nil, "allowed CORS origin (repeatable, * for any)")
	flags.StringSliceVar(&cfg.MetadataHeaders, "metadata-header", nil, "HTTP header forwarded into request metadata (repeatable)")
	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	flags.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "text or json")
	flags.StringVar(&cfg.Tracing.Endpoint, "otel-endpoint", "", "OTLP/gRPC collector endpoint")
	flags.StringVar(&cfg.Tracing.ServiceName, "otel-service", "", "OpenTelemetry service name (default gqlcore)")
	return cmd
}

// overrides copies one flag value onto a configuration loaded from file.
var overrides = map[string]func(dst, src *config.Config){
	"listen":          func(d, s *config.Config) { d.Listen = s.Listen },
	"schema":          func(d, s *config.Config) { d.Schema = s.Schema },
	"fixture":         func(d, s *config.Config) { d.Fixture = s.Fixture },
	"timeout":         func(d, s *config.Config) { d.Timeout = s.Timeout },
	"max-body-bytes":  func(d, s *config.Config) { d.MaxBodyBytes = s.MaxBodyBytes },
	"max-depth":       func(d, s *config.Config) { d.MaxDepth = s.MaxDepth },
	"fail-fast":       func(d, s *config.Config) { d.FailFast = s.FailFast },
	"pretty":          func(d, s *config.Config) { d.Pretty = s.Pretty },
	"graphiql":        func(d, s *config.Config) { d.GraphiQL = s.GraphiQL },
	"cors":            func(d, s *config.Config) { d.CORS = s.CORS },
	"metadata-header": func(d, s *config.Config) { d.MetadataHeaders = s.MetadataHeaders },
	"log-level":       func(d, s *config.Config) { d.Log.Level = s.Log.Level },
	"log-format":      func(d, s *config.Config) { d.Log.Format = s.Log.Format },
	"otel-endpoint":   func(d, s *config.Config) { d.Tracing.Endpoint = s.Tracing.Endpoint },
	"otel-service":    func(d, s *config.Config) { d.Tracing.ServiceName = s.Tracing.ServiceName },
}

// resolveConfig merges the flags changed on cmd over the file at path, or
// uses the flags alone when path is empty.
func resolveConfig(cmd *cobra.Command, flagged *config.Config, path string) (*config.Config, error) {
	cfg := flagged
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		for name, apply := range overrides {
			if cmd.Flags().Changed(name) {
				apply(loaded, flagged)
			}
		}
		cfg = loaded
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Tracing.Endpoint != "" && cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "gqlcore"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config, logOutput io.Writer) error {
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: logOutput,
	})

	eventbus.Use(eventbus.New())
	shutdownTracing, err := otel.Setup(cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	h, err := newHandler(cfg, logger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("GraphQL server listening", "addr", cfg.Listen, "path", "/graphql")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// newHandler builds the HTTP routes for cfg: /graphql and /healthz.
func newHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	s, err := buildSchema(cfg.Schema)
	if err != nil {
		return nil, err
	}
	fx := &fixture.Fixture{}
	if cfg.Fixture != "" {
		if fx, err = fixture.Load(cfg.Fixture); err != nil {
			return nil, err
		}
	}

	opts := []executor.Option{
		executor.WithLogger(logger),
		executor.WithMutation(fx.MutationRoot(s)),
		executor.WithSubscription(fx.SubscriptionRoot(s)),
	}
	for name, h := range directives.Handlers(logger) {
		opts = append(opts, executor.WithDirective(name, h))
	}
	if cfg.FailFast {
		opts = append(opts, executor.WithFailFast())
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, executor.WithMaxDepth(cfg.MaxDepth))
	}
	c := executor.New(s, fx.QueryRoot(s), opts...)

	sopts := []server.Option{
		server.WithLogger(logger),
		server.WithTimeout(cfg.Timeout),
		server.WithMaxBodyBytes(cfg.MaxBodyBytes),
		server.WithGraphiQL(cfg.GraphiQL),
	}
	if cfg.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(cfg.CORS) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.CORS...))
	}
	if len(cfg.MetadataHeaders) > 0 {
		sopts = append(sopts, server.WithMetadataHeaders(cfg.MetadataHeaders...))
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", server.New(c, sopts...))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	})
	return mux, nil
}

// buildSchema loads the schema files at paths together with the
// declarations of the built-in field directives.
func buildSchema(paths []string) (*schema.Schema, error) {
	sources, err := schema.Sources(paths...)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	sources = append(sources, &ast.Source{Name: "directives.graphql", Input: directives.SDL})
	s, err := schema.Build(sources...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}
