package otlp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	oteltrace "go.opentelemetry.io/otel/trace"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/agent-analytics/agenttrace-go/pkg/export"
	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

func testExporter() *Exporter {
	return &Exporter{
		resource: buildResource("test_app", map[string]string{"deployment.environment": "test"}),
		scope:    instrumentation.Scope{Name: scopeName},
	}
}

func TestSnapshot_PreservesIdentityAndLinks(t *testing.T) {
	traceID, err := oteltrace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := oteltrace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	parentID, err := oteltrace.SpanIDFromHex("b7ad6b7169203331")
	require.NoError(t, err)

	start := time.Now()
	rec := tracing.SpanRecord{
		TraceID:      traceID,
		SpanID:       spanID,
		ParentSpanID: parentID,
		Name:         "llm_call",
		StartTime:    start,
		EndTime:      start.Add(time.Second),
		Attributes:   []attribute.KeyValue{attribute.String("gen_ai.request.model", "gpt-4o")},
		Events: []tracing.Event{{
			Name: "exception",
			Time: start.Add(500 * time.Millisecond),
		}},
		Status:            tracing.StatusError,
		StatusDescription: "model timeout",
	}

	ro := testExporter().snapshot(rec)

	assert.Equal(t, "llm_call", ro.Name())
	assert.Equal(t, traceID, ro.SpanContext().TraceID())
	assert.Equal(t, spanID, ro.SpanContext().SpanID())
	assert.Equal(t, parentID, ro.Parent().SpanID())
	assert.Equal(t, oteltrace.SpanKindInternal, ro.SpanKind())
	assert.Equal(t, codes.Error, ro.Status().Code)
	assert.Equal(t, "model timeout", ro.Status().Description)
	require.Len(t, ro.Events(), 1)
	assert.Equal(t, "exception", ro.Events()[0].Name)
	assert.True(t, ro.StartTime().Equal(start))

	res := ro.Resource()
	require.NotNil(t, res)
	attrs := res.Attributes()
	assert.Contains(t, attrs, attribute.String("service.name", "test_app"))
	assert.Contains(t, attrs, attribute.String("deployment.environment", "test"))
}

func TestSnapshot_RootHasInvalidParent(t *testing.T) {
	rec := tracing.SpanRecord{
		TraceID:   oteltrace.TraceID{1},
		SpanID:    oteltrace.SpanID{2},
		Name:      "agent_run",
		StartTime: time.Now(),
		EndTime:   time.Now(),
		Status:    tracing.StatusOK,
	}
	ro := testExporter().snapshot(rec)
	assert.False(t, ro.Parent().IsValid())
	assert.Equal(t, codes.Ok, ro.Status().Code)
}

func TestClassify_GRPCStatusCodes(t *testing.T) {
	tests := []struct {
		name      string
		code      grpccodes.Code
		retryable bool
	}{
		{"unavailable", grpccodes.Unavailable, true},
		{"deadline exceeded", grpccodes.DeadlineExceeded, true},
		{"resource exhausted", grpccodes.ResourceExhausted, true},
		{"aborted", grpccodes.Aborted, true},
		{"data loss", grpccodes.DataLoss, true},
		{"invalid argument", grpccodes.InvalidArgument, false},
		{"unimplemented", grpccodes.Unimplemented, false},
		{"permission denied", grpccodes.PermissionDenied, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(status.Error(tt.code, "export failed"))
			assert.Equal(t, tt.retryable, export.IsRetryable(err))
		})
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestNew_RejectsUnknownProtocol(t *testing.T) {
	_, err := New(context.Background(), Config{Endpoint: "localhost:4317", Protocol: "carrier-pigeon"})
	assert.Error(t, err)
}
