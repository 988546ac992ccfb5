// Package otlp implements a span exporter that transmits batches to an
// OpenTelemetry collector over gRPC or HTTP/protobuf.
package otlp

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"

	"github.com/agent-analytics/agenttrace-go/pkg/export"
	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

// Protocol selects the OTLP transport.
type Protocol string

const (
	// ProtocolGRPC uses gRPC (default collector port 4317).
	ProtocolGRPC Protocol = "grpc"
	// ProtocolHTTP uses HTTP/protobuf (default collector port 4318).
	ProtocolHTTP Protocol = "http"
)

const scopeName = "github.com/agent-analytics/agenttrace-go"

// Config holds the collector endpoint and identity of the instrumented app.
type Config struct {
	// Endpoint is "host:port" for gRPC, or a URL for HTTP.
	Endpoint string
	Protocol Protocol

	// Insecure disables TLS. Development only.
	Insecure  bool
	TLSConfig *tls.Config
	Headers   map[string]string

	// AppName becomes the service.name resource attribute.
	AppName string
	// ResourceAttributes are extra resource-level attributes.
	ResourceAttributes map[string]string
}

// Exporter transmits span batches to an OTLP collector. Retry policy is
// owned by the export pipeline; the SDK-internal retry is disabled.
type Exporter struct {
	client   *otlptrace.Exporter
	resource *resource.Resource
	scope    instrumentation.Scope
}

var _ export.Exporter = (*Exporter)(nil)

// New creates an OTLP exporter for the configured endpoint. TLS is enabled
// by default using system certificates.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("otlp exporter: endpoint is required")
	}

	var (
		client *otlptrace.Exporter
		err    error
	)
	switch cfg.Protocol {
	case ProtocolHTTP:
		client, err = newHTTPClient(ctx, cfg)
	case ProtocolGRPC, "":
		client, err = newGRPCClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("otlp exporter: unsupported protocol %q", cfg.Protocol)
	}
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: initialize client: %w", err)
	}

	return &Exporter{
		client:   client,
		resource: buildResource(cfg.AppName, cfg.ResourceAttributes),
		scope:    instrumentation.Scope{Name: scopeName},
	}, nil
}

func newGRPCClient(ctx context.Context, cfg Config) (*otlptrace.Exporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithRetry(otlptracegrpc.RetryConfig{Enabled: false}),
	}
	switch {
	case cfg.Insecure:
		opts = append(opts, otlptracegrpc.WithInsecure())
	case cfg.TLSConfig != nil:
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(cfg.TLSConfig)))
	default:
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptracegrpc.New(ctx, opts...)
}

func newHTTPClient(ctx context.Context, cfg Config) (*otlptrace.Exporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithRetry(otlptracehttp.RetryConfig{Enabled: false}),
	}
	if strings.Contains(cfg.Endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	switch {
	case cfg.Insecure:
		opts = append(opts, otlptracehttp.WithInsecure())
	case cfg.TLSConfig != nil:
		opts = append(opts, otlptracehttp.WithTLSClientConfig(cfg.TLSConfig))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

// Export converts the batch to the OTLP wire representation and transmits
// it. Connection-level failures are retryable; protocol errors reported by
// the collector are fatal for the batch only.
func (e *Exporter) Export(ctx context.Context, batch []tracing.SpanRecord) error {
	spans := make([]tracesdk.ReadOnlySpan, 0, len(batch))
	for _, rec := range batch {
		spans = append(spans, e.snapshot(rec))
	}
	if err := e.client.ExportSpans(ctx, spans); err != nil {
		return classify(err)
	}
	return nil
}

// Shutdown closes the underlying OTLP client.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.client.Shutdown(ctx)
}

// classify maps transport failures onto the pipeline's retry taxonomy,
// following the OTLP retryability rules for gRPC status codes. Errors that
// carry no gRPC status (HTTP transport, dial failures) are treated as
// transient connection problems.
func classify(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return export.Retryable(err)
	}
	switch st.Code() {
	case grpccodes.Canceled,
		grpccodes.DeadlineExceeded,
		grpccodes.ResourceExhausted,
		grpccodes.Aborted,
		grpccodes.OutOfRange,
		grpccodes.Unavailable,
		grpccodes.DataLoss:
		return export.Retryable(err)
	default:
		return err
	}
}

func buildResource(appName string, extra map[string]string) *resource.Resource {
	kvs := []attribute.KeyValue{semconv.ServiceName(appName)}
	for k, v := range extra {
		kvs = append(kvs, attribute.String(k, v))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, kvs...)
}
