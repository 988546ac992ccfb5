package tracing

import "errors"

var (
	// ErrContextCorruption indicates span nesting was violated: a span was
	// ended while one of its children was still open in the same trace.
	// Surfaced through the tracer's logger, never raised into host code.
	ErrContextCorruption = errors.New("tracing: span ended before its children")

	// ErrTracerExhausted indicates the open-span limit was reached. The
	// tracer degrades to no-op handles until spans are released.
	ErrTracerExhausted = errors.New("tracing: open span limit reached")

	// ErrShutdown indicates an operation was attempted after Shutdown completed.
	ErrShutdown = errors.New("tracing: tracer is shut down")
)
