// Package sdk wires configuration, exporters, export pipeline and tracer
// into a ready-to-use instance for host applications.
package sdk

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agent-analytics/agenttrace-go/pkg/config"
	"github.com/agent-analytics/agenttrace-go/pkg/export"
	"github.com/agent-analytics/agenttrace-go/pkg/export/file"
	"github.com/agent-analytics/agenttrace-go/pkg/export/otlp"
	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

// ShutdownFunc flushes pending spans and releases SDK resources.
type ShutdownFunc func(context.Context) error

type options struct {
	logger         *zap.Logger
	extraExporters []export.Exporter
}

// Option configures SDK initialization.
type Option func(*options)

// WithLogger sets the logger used for SDK diagnostics (dropped spans, fatal
// export errors). Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExporter adds an extra exporter to the fan-out, alongside the one
// selected by the tracer type. The same span stream feeds every sink.
func WithExporter(e export.Exporter) Option {
	return func(o *options) {
		if e != nil {
			o.extraExporters = append(o.extraExporters, e)
		}
	}
}

// Init resolves the configuration (defaults, environment, explicit fields),
// builds the exporter set for the configured tracer type and returns an
// active tracer together with its shutdown function.
//
//	tracer, shutdown, err := sdk.Init(ctx, &config.Config{
//		TracerType: config.TracerTypeLog,
//	})
//	if err != nil { ... }
//	defer shutdown(context.Background())
func Init(ctx context.Context, cfg *config.Config, opts ...Option) (*tracing.Tracer, ShutdownFunc, error) {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	resolved, err := config.Load(cfg)
	if err != nil {
		return nil, nil, err
	}

	var exporters []export.Exporter
	switch resolved.TracerType {
	case config.TracerTypeLog:
		fe, err := file.New(file.Config{
			Dir:      resolved.LogsDirPath,
			Filename: resolved.LogFilename,
		})
		if err != nil {
			return nil, nil, err
		}
		exporters = append(exporters, fe)
		o.logger.Info("span logging initialized",
			zap.String("path", fe.Path()),
			zap.String("app_name", resolved.AppName),
		)
	case config.TracerTypeRemote:
		oe, err := otlp.New(ctx, otlp.Config{
			Endpoint:           resolved.Endpoint,
			Protocol:           otlp.Protocol(resolved.NormalizedProtocol()),
			Insecure:           resolved.Insecure,
			Headers:            resolved.Headers,
			AppName:            resolved.AppName,
			ResourceAttributes: resolved.ResourceAttributes,
		})
		if err != nil {
			return nil, nil, err
		}
		exporters = append(exporters, oe)
		o.logger.Info("remote tracing initialized",
			zap.String("endpoint", resolved.Endpoint),
			zap.String("app_name", resolved.AppName),
		)
	default:
		return nil, nil, fmt.Errorf("sdk: unsupported tracer type %q", resolved.TracerType)
	}
	exporters = append(exporters, o.extraExporters...)

	pipeline := export.NewPipeline(exporters, export.Config{
		MaxBatchSize:    resolved.MaxBatchSize,
		MaxWaitInterval: resolved.MaxWaitInterval,
		QueueSize:       resolved.QueueSize,
		MaxAttempts:     resolved.MaxAttempts,
		BackoffBase:     resolved.BackoffBase,
		ExportTimeout:   resolved.ExportTimeout,
	}, o.logger)

	tracer := tracing.New(pipeline,
		tracing.WithLogger(o.logger),
		tracing.WithMaxOpenSpans(resolved.MaxOpenSpans),
	)

	shutdown := func(ctx context.Context) error {
		res, err := tracer.Shutdown(ctx)
		if res.Dropped > 0 {
			o.logger.Warn("spans dropped by the export pipeline",
				zap.Int64("sent", res.Sent),
				zap.Int64("dropped", res.Dropped),
			)
		}
		return err
	}
	return tracer, shutdown, nil
}
