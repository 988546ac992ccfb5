package tracing

import (
	"context"
	"crypto/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// State is the lifecycle state of a tracer.
type State int32

const (
	StateUninitialized State = iota
	StateActive
	StateDraining
	StateShutdown
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateShutdown:
		return "shutdown"
	default:
		return "uninitialized"
	}
}

// FlushResult reports the outcome of a flush or shutdown: spans successfully
// exported and spans dropped (queue overflow, fatal export failures, or
// submissions after shutdown) since the pipeline started.
type FlushResult struct {
	Sent    int64
	Dropped int64
}

// Processor receives finalized span records from the tracer. Implemented by
// the export pipeline; Process must never block on I/O.
type Processor interface {
	// Process submits a finalized record for export.
	Process(rec SpanRecord)
	// Drain switches the processor into immediate-flush mode: records
	// submitted afterwards are flushed as soon as possible rather than batched.
	Drain()
	// Flush forces export of all pending records, bounded by ctx. On timeout
	// it returns the partial result together with the context error.
	Flush(ctx context.Context) (FlushResult, error)
	// Shutdown flushes and releases processor resources.
	Shutdown(ctx context.Context) error
}

const defaultMaxOpenSpans = 10_000

// Tracer creates, finalizes and hands off spans. It is the single authority
// that constructs SpanRecords. Safe for concurrent use.
type Tracer struct {
	processor Processor
	logger    *zap.Logger

	state        atomic.Int32
	openSpans    atomic.Int64
	maxOpenSpans int64

	exhausted     atomic.Int64
	corruptions   atomic.Int64
	droppedOnShut atomic.Int64
	exhaustedOnce sync.Once
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithLogger sets the logger used for internal diagnostics. Defaults to a
// no-op logger so that tracing stays silent unless the host opts in.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMaxOpenSpans bounds the number of concurrently open spans. When the
// limit is hit, StartSpan degrades to no-op handles instead of failing.
func WithMaxOpenSpans(n int) Option {
	return func(t *Tracer) {
		if n > 0 {
			t.maxOpenSpans = int64(n)
		}
	}
}

// New creates an active tracer that submits finalized spans to processor.
func New(processor Processor, opts ...Option) *Tracer {
	t := &Tracer{
		processor:    processor,
		logger:       zap.NewNop(),
		maxOpenSpans: defaultMaxOpenSpans,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.processor == nil {
		t.processor = noopProcessor{}
	}
	t.state.Store(int32(StateActive))
	return t
}

// State returns the current lifecycle state.
func (t *Tracer) State() State {
	return State(t.state.Load())
}

// StartSpan allocates a new span with a fresh span ID and makes it the active
// span of the returned context. The trace ID is inherited from the active
// span in ctx if one is open, otherwise a new root trace is started.
//
// StartSpan never blocks and never fails: on resource exhaustion it records
// the condition and returns a no-op handle so instrumented code is never
// crashed by telemetry failure.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, *SpanHandle) {
	if ctx == nil {
		ctx = context.Background()
	}
	if State(t.state.Load()) == StateShutdown {
		return ctx, &SpanHandle{}
	}
	if t.openSpans.Add(1) > t.maxOpenSpans {
		t.openSpans.Add(-1)
		t.exhausted.Add(1)
		t.exhaustedOnce.Do(func() {
			t.logger.Warn("open span limit reached, degrading to no-op tracing",
				zap.Error(ErrTracerExhausted),
				zap.Int64("max_open_spans", t.maxOpenSpans),
			)
		})
		return ctx, &SpanHandle{}
	}

	rec := &SpanRecord{
		SpanID:     newSpanID(),
		Name:       name,
		StartTime:  time.Now(),
		Attributes: convertAttrs(attrs),
	}

	parent := SpanFromContext(ctx)
	if parent != nil && parent.IsRecording() {
		rec.TraceID = parent.rec.TraceID
		rec.ParentSpanID = parent.rec.SpanID
		parent.openChildren.Add(1)
	} else {
		rec.TraceID = newTraceID()
		parent = nil
	}

	h := &SpanHandle{
		rec:    rec,
		tracer: t,
		parent: parent,
	}
	return ContextWithSpan(ctx, h), h
}

// finishSpan is called exactly once per handle when it ends.
func (t *Tracer) finishSpan(rec SpanRecord) {
	t.openSpans.Add(-1)
	if State(t.state.Load()) == StateShutdown {
		t.droppedOnShut.Add(1)
		return
	}
	t.processor.Process(rec)
}

// Flush forces export of all pending spans across exporters, bounded by ctx.
func (t *Tracer) Flush(ctx context.Context) (FlushResult, error) {
	if State(t.state.Load()) == StateShutdown {
		return FlushResult{}, ErrShutdown
	}
	return t.processor.Flush(ctx)
}

// Shutdown drains the export pipeline and releases its resources. Spans
// ended while draining bypass batching and are flushed immediately. Shutdown
// blocks until pending spans are flushed or ctx expires, and returns the
// flush result either way. Subsequent calls return ErrShutdown.
func (t *Tracer) Shutdown(ctx context.Context) (FlushResult, error) {
	if !t.state.CompareAndSwap(int32(StateActive), int32(StateDraining)) {
		return FlushResult{}, ErrShutdown
	}
	t.processor.Drain()
	res, flushErr := t.processor.Flush(ctx)
	shutErr := t.processor.Shutdown(ctx)
	t.state.Store(int32(StateShutdown))
	if flushErr != nil {
		return res, flushErr
	}
	return res, shutErr
}

// CorruptionCount returns the number of nesting violations observed.
func (t *Tracer) CorruptionCount() int64 {
	return t.corruptions.Load()
}

// ExhaustedCount returns the number of spans refused due to the open-span limit.
func (t *Tracer) ExhaustedCount() int64 {
	return t.exhausted.Load()
}

func newTraceID() oteltrace.TraceID {
	return oteltrace.TraceID(uuid.New())
}

func newSpanID() oteltrace.SpanID {
	var id oteltrace.SpanID
	for !id.IsValid() {
		_, _ = rand.Read(id[:])
	}
	return id
}
