// Package config holds the SDK configuration: exporter choice, endpoint and
// the batching and retry parameters consumed at pipeline initialization.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// TracerType selects where finalized spans are exported.
type TracerType string

const (
	// TracerTypeLog exports spans to a local line-delimited log file.
	TracerTypeLog TracerType = "LOG"
	// TracerTypeRemote exports spans to an OTLP collector endpoint.
	TracerTypeRemote TracerType = "REMOTE"
)

// Protocol selects the OTLP transport for TracerTypeRemote.
type Protocol string

const (
	ProtocolGRPC Protocol = "grpc"
	ProtocolHTTP Protocol = "http"
)

// Config is the full SDK configuration. Zero values are filled with
// defaults by Load; explicit fields win over environment variables.
type Config struct {
	TracerType TracerType `envconfig:"TRACER_TYPE"`

	// AppName identifies the instrumented application; it becomes the
	// service.name resource attribute and the default log file prefix.
	// Defaults to "<host>_<executable>".
	AppName string `envconfig:"APP_NAME"`

	// LogsDirPath and LogFilename locate the span log (LOG only).
	LogsDirPath string `envconfig:"LOGS_DIR_PATH"`
	LogFilename string `envconfig:"LOG_FILENAME"`

	// Endpoint is the collector address (REMOTE only): "host:port" for
	// gRPC, a URL for HTTP.
	Endpoint string            `envconfig:"ENDPOINT"`
	Protocol Protocol          `envconfig:"PROTOCOL"`
	Insecure bool              `envconfig:"INSECURE"`
	Headers  map[string]string `envconfig:"HEADERS"`

	// ResourceAttributes are attached to every exported span at the
	// resource level.
	ResourceAttributes map[string]string `envconfig:"RESOURCE_ATTRIBUTES"`

	// Batching policy.
	MaxBatchSize    int           `envconfig:"MAX_BATCH_SIZE"`
	MaxWaitInterval time.Duration `envconfig:"MAX_WAIT_INTERVAL"`
	QueueSize       int           `envconfig:"QUEUE_SIZE"`

	// Retry policy.
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS"`
	BackoffBase time.Duration `envconfig:"BACKOFF_BASE"`

	ExportTimeout time.Duration `envconfig:"EXPORT_TIMEOUT"`
	MaxOpenSpans  int           `envconfig:"MAX_OPEN_SPANS"`
}

// DefaultConfig returns a configuration with sensible defaults for local use.
func DefaultConfig() *Config {
	return &Config{
		TracerType:      TracerTypeLog,
		LogsDirPath:     "log",
		Protocol:        ProtocolGRPC,
		MaxBatchSize:    512,
		MaxWaitInterval: 5 * time.Second,
		QueueSize:       2048,
		MaxAttempts:     3,
		BackoffBase:     500 * time.Millisecond,
		ExportTimeout:   30 * time.Second,
		MaxOpenSpans:    10_000,
	}
}

// Validate checks the configuration and fills derived defaults: the app
// name when unset, and the span log filename for the LOG tracer type.
func (c *Config) Validate() error {
	if c.AppName == "" {
		c.AppName = defaultAppName()
	}
	switch c.TracerType {
	case TracerTypeLog:
		if c.LogsDirPath == "" {
			c.LogsDirPath = "log"
		}
		if c.LogFilename == "" {
			c.LogFilename = c.AppName + "_otel.log"
		}
	case TracerTypeRemote:
		if c.Endpoint == "" {
			return fmt.Errorf("config: endpoint is required for the REMOTE tracer type")
		}
		switch normalizeProtocol(c.Protocol) {
		case ProtocolGRPC, ProtocolHTTP:
		default:
			return fmt.Errorf("config: unsupported protocol %q", c.Protocol)
		}
	default:
		return fmt.Errorf("config: unsupported tracer type %q", c.TracerType)
	}
	return nil
}

func normalizeProtocol(p Protocol) Protocol {
	switch strings.ToLower(string(p)) {
	case "http", "http/protobuf":
		return ProtocolHTTP
	case "grpc", "":
		return ProtocolGRPC
	default:
		return p
	}
}

// NormalizedProtocol returns the protocol with aliases resolved.
func (c *Config) NormalizedProtocol() Protocol {
	return normalizeProtocol(c.Protocol)
}

var nonWord = regexp.MustCompile(`\W+`)

// defaultAppName derives an application name from the host name and the
// running executable, e.g. "devbox_worker".
func defaultAppName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "default"
	}
	user := nonWord.Split(host, 2)[0]
	if user == "" {
		user = "default"
	}
	exe := filepath.Base(os.Args[0])
	exe = strings.TrimSuffix(exe, filepath.Ext(exe))
	if exe == "" || exe == "." {
		exe = "app"
	}
	return user + "_" + exe
}
