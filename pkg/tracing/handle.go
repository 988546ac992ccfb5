package tracing

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// SpanHandle is the mutable view of an open span. All methods are safe for
// concurrent use, but a handle is intended to be driven by a single logical
// unit of control; concurrent mutation of the same open span from two
// execution units is a caller error.
//
// Every method is a silent no-op once the span has ended, and on the no-op
// handles returned when the tracer is exhausted. Telemetry mutation must
// never crash host logic.
type SpanHandle struct {
	mu     sync.Mutex
	rec    *SpanRecord
	tracer *Tracer
	parent *SpanHandle

	openChildren atomic.Int64
	errRecorded  bool
	ended        bool
}

// recording reports whether the handle still accepts mutation.
// Callers must hold h.mu.
func (h *SpanHandle) recording() bool {
	return h.rec != nil && !h.ended
}

// IsRecording reports whether the span is open and accepting mutation.
func (h *SpanHandle) IsRecording() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recording()
}

// TraceID returns the hex-encoded trace ID, or an empty string for a no-op handle.
func (h *SpanHandle) TraceID() string {
	if h == nil || h.rec == nil {
		return ""
	}
	return h.rec.TraceID.String()
}

// SpanID returns the hex-encoded span ID, or an empty string for a no-op handle.
func (h *SpanHandle) SpanID() string {
	if h == nil || h.rec == nil {
		return ""
	}
	return h.rec.SpanID.String()
}

// SetAttributes appends attributes to the span while it is open.
func (h *SpanHandle) SetAttributes(attrs ...Attribute) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.recording() {
		return
	}
	h.rec.Attributes = append(h.rec.Attributes, convertAttrs(attrs)...)
}

// AddEvent appends a timestamped event to the span while it is open.
func (h *SpanHandle) AddEvent(name string, attrs ...Attribute) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.recording() {
		return
	}
	h.rec.Events = append(h.rec.Events, Event{
		Name:       name,
		Time:       time.Now(),
		Attributes: convertAttrs(attrs),
	})
}

// RecordError attaches err as an exception event and marks the span so that
// End finalizes it with StatusError unless a status was set explicitly.
func (h *SpanHandle) RecordError(err error) {
	if h == nil || err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.recording() {
		return
	}
	h.errRecorded = true
	h.rec.Events = append(h.rec.Events, Event{
		Name: "exception",
		Time: time.Now(),
		Attributes: convertAttrs([]Attribute{
			Attr("exception.message", err.Error()),
			Attr("exception.type", errTypeName(err)),
		}),
	})
	if h.rec.StatusDescription == "" {
		h.rec.StatusDescription = err.Error()
	}
}

// SetStatus sets the span status. The status is finalized at End; the last
// value set before End wins.
func (h *SpanHandle) SetStatus(status Status, description string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.recording() {
		return
	}
	h.rec.Status = status
	h.rec.StatusDescription = description
}

// End finalizes the span and submits it to the export pipeline. It is
// idempotent: calls after the first are no-ops and the record is submitted
// exactly once.
func (h *SpanHandle) End() {
	if h == nil {
		return
	}
	h.mu.Lock()
	if !h.recording() {
		h.mu.Unlock()
		return
	}
	h.ended = true
	h.rec.EndTime = time.Now()
	if h.rec.Status == StatusUnset {
		if h.errRecorded {
			h.rec.Status = StatusError
		} else {
			h.rec.Status = StatusOK
		}
	}
	rec := *h.rec
	open := h.openChildren.Load()
	h.mu.Unlock()

	t := h.tracer
	if open > 0 {
		t.corruptions.Add(1)
		t.logger.Error("span ended before its children",
			zap.Error(ErrContextCorruption),
			zap.String("span_name", rec.Name),
			zap.String("span_id", rec.SpanID.String()),
			zap.Int64("open_children", open),
		)
	}
	if h.parent != nil {
		h.parent.openChildren.Add(-1)
	}
	t.finishSpan(rec)
}

func errTypeName(err error) string {
	return fmt.Sprintf("%T", err)
}
