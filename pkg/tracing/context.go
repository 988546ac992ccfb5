package tracing

import "context"

type activeSpanKeyType struct{}

var activeSpanKey activeSpanKeyType

// ContextWithSpan returns a copy of ctx with the given handle as the active
// span. Child execution units inherit the active span by receiving the
// derived context; the parent's context is never mutated.
func ContextWithSpan(ctx context.Context, h *SpanHandle) context.Context {
	return context.WithValue(ctx, activeSpanKey, h)
}

// SpanFromContext returns the active span handle for the calling execution
// context, or nil if no span is open.
func SpanFromContext(ctx context.Context) *SpanHandle {
	if ctx == nil {
		return nil
	}
	if h, ok := ctx.Value(activeSpanKey).(*SpanHandle); ok {
		return h
	}
	return nil
}
