package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/hanpama/gqlcore/internal/eventbus"
	"github.com/hanpama/gqlcore/internal/events"
	"github.com/hanpama/gqlcore/internal/reqid"
)

const instrumentationName = "github.com/hanpama/gqlcore"

// Setup configures OpenTelemetry and attaches subscribers to the global
// event bus. If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	bus := eventbus.Default()
	if bus == nil {
		bus = eventbus.New()
		eventbus.Use(bus)
	}
	unsubscribe := Register(bus, tp.Tracer(instrumentationName))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

type subscriber struct {
	tracer    trace.Tracer
	httpSpans sync.Map // rid -> trace.Span
	gqlSpans  sync.Map // rid -> trace.Span
}

// Register turns request, operation and field events on bus into spans.
// Field spans reuse the timestamps carried by the event.
func Register(bus *eventbus.Bus, tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	unsubs := []func(){
		eventbus.On(bus, s.httpStart),
		eventbus.On(bus, s.httpFinish),
		eventbus.On(bus, s.graphqlStart),
		eventbus.On(bus, s.graphqlFinish),
		eventbus.On(bus, s.fieldResolved),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (s *subscriber) httpStart(ctx context.Context, e events.HTTPStart) {
	rid, _ := reqid.FromContext(ctx)
	_, span := s.tracer.Start(ctx, "http.request")
	span.SetAttributes(
		semconv.HTTPMethodKey.String(e.Request.Method),
		attribute.String("http.target", e.Request.URL.Path),
		attribute.String("request.id", rid),
	)
	s.httpSpans.Store(rid, span)
}

func (s *subscriber) httpFinish(ctx context.Context, e events.HTTPFinish) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := s.httpSpans.LoadAndDelete(rid)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
	span.End()
}

func (s *subscriber) graphqlStart(ctx context.Context, e events.GraphQLStart) {
	parent := ctx
	if v, ok := s.httpSpans.Load(e.RequestID); ok {
		parent = trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	_, span := s.tracer.Start(parent, "graphql.operation", trace.WithTimestamp(e.Start))
	span.SetAttributes(
		attribute.String("graphql.operation.name", e.OperationName),
		attribute.String("graphql.operation.type", e.OperationType),
	)
	s.gqlSpans.Store(e.RequestID, span)
}

func (s *subscriber) graphqlFinish(ctx context.Context, e events.GraphQLFinish) {
	v, ok := s.gqlSpans.LoadAndDelete(e.RequestID)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
	if len(e.Errors) > 0 {
		span.SetStatus(codes.Error, e.Errors[0].Error())
	}
	span.End(trace.WithTimestamp(e.Start.Add(e.Duration)))
}

func (s *subscriber) fieldResolved(ctx context.Context, e events.FieldResolved) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := s.gqlSpans.Load(rid)
	if !ok {
		return
	}
	parent := trace.ContextWithSpan(ctx, v.(trace.Span))
	_, span := s.tracer.Start(parent, "graphql.field", trace.WithTimestamp(e.Start))
	span.SetAttributes(
		attribute.String("graphql.field.type", e.TypeName),
		attribute.String("graphql.field.name", e.FieldName),
		attribute.String("graphql.field.path", e.Path),
	)
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End(trace.WithTimestamp(e.Start.Add(e.Duration)))
}
