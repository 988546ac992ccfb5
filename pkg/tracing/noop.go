package tracing

import "context"

// noopProcessor discards every record. Used when no pipeline is configured.
type noopProcessor struct{}

func (noopProcessor) Process(SpanRecord) {}
func (noopProcessor) Drain()             {}
func (noopProcessor) Flush(context.Context) (FlushResult, error) {
	return FlushResult{}, nil
}
func (noopProcessor) Shutdown(context.Context) error { return nil }

// NewNoop creates a tracer whose spans are tracked but never exported.
// Useful for tests and for hosts that disable telemetry.
func NewNoop() *Tracer {
	return New(noopProcessor{})
}
