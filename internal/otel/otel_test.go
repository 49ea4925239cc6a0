package otel

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlcore/internal/eventbus"
	"github.com/hanpama/gqlcore/internal/events"
	"github.com/hanpama/gqlcore/internal/reqid"
)

func TestRegisterBuildsSpanTree(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	bus := eventbus.New()
	unsubscribe := Register(bus, tp.Tracer("test"))
	defer unsubscribe()

	ctx, rid := reqid.NewContext(context.Background())
	req := httptest.NewRequest("POST", "/graphql", nil)
	start := time.Now()

	eventbus.Emit(ctx, bus, events.HTTPStart{Request: req})
	eventbus.Emit(ctx, bus, events.GraphQLStart{RequestID: rid, OperationType: "query", Start: start})
	eventbus.Emit(ctx, bus, events.FieldResolved{
		TypeName: "Query", FieldName: "person", Path: "person",
		Start: start, Duration: time.Millisecond, Err: errors.New("boom"),
	})
	eventbus.Emit(ctx, bus, events.GraphQLFinish{RequestID: rid, OperationType: "query", Start: start, Duration: 2 * time.Millisecond})
	eventbus.Emit(ctx, bus, events.HTTPFinish{Request: req, Status: 200})

	spans := rec.Ended()
	require.Len(t, spans, 3)
	field, op, root := spans[0], spans[1], spans[2]
	require.Equal(t, "graphql.field", field.Name())
	require.Equal(t, "graphql.operation", op.Name())
	require.Equal(t, "http.request", root.Name())

	require.Equal(t, op.SpanContext().SpanID(), field.Parent().SpanID())
	require.Equal(t, root.SpanContext().SpanID(), op.Parent().SpanID())
	require.True(t, start.Equal(field.StartTime()))
	require.True(t, start.Add(time.Millisecond).Equal(field.EndTime()))
	require.Len(t, field.Events(), 1)
}

func TestFieldWithoutOperationIsIgnored(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	bus := eventbus.New()
	defer Register(bus, tp.Tracer("test"))()

	eventbus.Emit(context.Background(), bus, events.FieldResolved{FieldName: "x", Start: time.Now()})
	require.Empty(t, rec.Ended())
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup("", "svc")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
