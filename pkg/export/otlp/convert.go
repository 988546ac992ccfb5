package otlp

import (
	"go.opentelemetry.io/otel/codes"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

// snapshot converts a finalized span record into a read-only SDK span
// suitable for the OTLP wire encoder.
func (e *Exporter) snapshot(rec tracing.SpanRecord) tracesdk.ReadOnlySpan {
	stub := tracetest.SpanStub{
		Name: rec.Name,
		SpanContext: oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
			TraceID:    rec.TraceID,
			SpanID:     rec.SpanID,
			TraceFlags: oteltrace.FlagsSampled,
		}),
		SpanKind:             oteltrace.SpanKindInternal,
		StartTime:            rec.StartTime,
		EndTime:              rec.EndTime,
		Attributes:           rec.Attributes,
		Status:               convertStatus(rec),
		Resource:             e.resource,
		InstrumentationLibrary: e.scope,
	}
	if rec.ParentSpanID.IsValid() {
		stub.Parent = oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
			TraceID:    rec.TraceID,
			SpanID:     rec.ParentSpanID,
			TraceFlags: oteltrace.FlagsSampled,
		})
	}
	for _, ev := range rec.Events {
		stub.Events = append(stub.Events, tracesdk.Event{
			Name:       ev.Name,
			Time:       ev.Time,
			Attributes: ev.Attributes,
		})
	}
	return stub.Snapshot()
}

func convertStatus(rec tracing.SpanRecord) tracesdk.Status {
	switch rec.Status {
	case tracing.StatusOK:
		return tracesdk.Status{Code: codes.Ok}
	case tracing.StatusError:
		return tracesdk.Status{Code: codes.Error, Description: rec.StatusDescription}
	default:
		return tracesdk.Status{Code: codes.Unset}
	}
}
