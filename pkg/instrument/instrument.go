// Package instrument defines the adapter contract between third-party
// framework integrations and the tracer core. Integrations call BeforeCall
// ahead of the wrapped operation and AfterCall when it returns, on every
// code path, instead of patching the framework at runtime.
package instrument

import (
	"context"
	"fmt"

	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

// CallInfo describes one intercepted call site.
type CallInfo struct {
	// Name labels the operation, e.g. "llm_call" or the wrapped method name.
	Name string
	// Attributes are attached to the span at creation.
	Attributes []tracing.Attribute
}

// Adapter is implemented by per-framework integrations.
type Adapter interface {
	// BeforeCall opens a span for the call and returns the derived context
	// the wrapped operation must run under.
	BeforeCall(ctx context.Context, call CallInfo) (context.Context, *tracing.SpanHandle)
	// AfterCall finalizes the span. A non-nil callErr is recorded and the
	// span ends with error status.
	AfterCall(h *tracing.SpanHandle, callErr error)
}

type adapter struct {
	tracer *tracing.Tracer
}

// NewAdapter creates the standard adapter backed by the given tracer.
func NewAdapter(t *tracing.Tracer) Adapter {
	return &adapter{tracer: t}
}

func (a *adapter) BeforeCall(ctx context.Context, call CallInfo) (context.Context, *tracing.SpanHandle) {
	return a.tracer.StartSpan(ctx, call.Name, call.Attributes...)
}

func (a *adapter) AfterCall(h *tracing.SpanHandle, callErr error) {
	if callErr != nil {
		h.RecordError(callErr)
	}
	h.End()
}

// Traced runs fn inside a span, ending it on every code path. Errors are
// recorded and returned unchanged; panics end the span with error status
// and are re-raised.
func Traced(ctx context.Context, t *tracing.Tracer, name string, fn func(context.Context) error, attrs ...tracing.Attribute) error {
	ctx, span := t.StartSpan(ctx, name, attrs...)
	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(tracing.StatusError, fmt.Sprintf("panic: %v", r))
			span.End()
			panic(r)
		}
	}()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	span.End()
	return err
}
