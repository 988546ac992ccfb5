package tracing

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Status represents the final status of a span.
type Status uint8

const (
	// StatusUnset is the default status of an open span.
	StatusUnset Status = iota
	// StatusOK indicates the operation completed successfully.
	StatusOK
	// StatusError indicates the operation failed.
	StatusError
)

// String returns the canonical upper-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	default:
		return "UNSET"
	}
}

// Event is a timestamped sub-record attached to a span while it is open.
type Event struct {
	Name       string
	Time       time.Time
	Attributes []attribute.KeyValue
}

// SpanRecord is a single finalized unit of telemetry. Once a span is ended
// the record is immutable and eligible for export exactly once.
type SpanRecord struct {
	TraceID           oteltrace.TraceID
	SpanID            oteltrace.SpanID
	ParentSpanID      oteltrace.SpanID
	Name              string
	StartTime         time.Time
	EndTime           time.Time
	Attributes        []attribute.KeyValue
	Events            []Event
	Status            Status
	StatusDescription string
}

// IsRoot reports whether the span has no parent.
func (r SpanRecord) IsRoot() bool {
	return !r.ParentSpanID.IsValid()
}

// Duration returns the elapsed time between start and end.
func (r SpanRecord) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
