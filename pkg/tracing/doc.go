// Package tracing implements the span lifecycle core of the agent-analytics
// SDK: span creation, explicit context propagation, attribute handling and
// hand-off of finalized records to an export pipeline.
//
// The active span travels inside a context.Context value. Starting a span
// derives a new context; goroutines spawned with that context inherit the
// active span without sharing mutable state with the parent.
//
//	ctx, span := tracer.StartSpan(ctx, "agent_run")
//	defer span.End()
//
//	ctx, child := tracer.StartSpan(ctx, "llm_call",
//		tracing.Attr("gen_ai.request.model", "gpt-4o"))
//	child.End()
//
// Telemetry failures never propagate into host control flow: StartSpan and
// all handle mutations return control to the caller unconditionally, and only
// Flush and Shutdown block, bounded by their context deadline.
package tracing
