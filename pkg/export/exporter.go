package export

import (
	"context"

	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

// Exporter is a sink for finalized span records. Implementations must be
// safe for calls from a single pipeline worker; the pipeline never invokes
// Export concurrently for the same exporter.
type Exporter interface {
	// Export transmits a batch. Transient failures should be reported via
	// Retryable so the pipeline retries them with backoff; any other error
	// is fatal for the batch only.
	Export(ctx context.Context, batch []tracing.SpanRecord) error

	// Shutdown releases exporter resources. No Export calls follow.
	Shutdown(ctx context.Context) error
}
