// Package file implements a span exporter that appends one JSON record per
// line to a local log file.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/agent-analytics/agenttrace-go/pkg/export"
	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

// Config holds the target location of the span log.
type Config struct {
	// Dir is the logs directory; created if absent. Defaults to "log".
	Dir string
	// Filename is the span log file name inside Dir.
	Filename string
}

// Exporter appends finalized spans to a line-delimited JSON file.
type Exporter struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

var _ export.Exporter = (*Exporter)(nil)

// New creates the target directory and file if absent and opens the file
// for appending.
func New(cfg Config) (*Exporter, error) {
	if cfg.Dir == "" {
		cfg.Dir = "log"
	}
	if cfg.Filename == "" {
		return nil, fmt.Errorf("file exporter: filename is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("file exporter: create logs dir: %w", err)
	}
	e := &Exporter{path: filepath.Join(cfg.Dir, cfg.Filename)}
	if err := e.open(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Exporter) open() error {
	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("file exporter: open %s: %w", e.path, err)
	}
	e.f = f
	return nil
}

// Path returns the absolute or relative path of the span log file.
func (e *Exporter) Path() string { return e.path }

// Export serializes the batch and appends it in a single write so a retried
// batch is never half-duplicated. Write failures are retryable; the file is
// reopened on the next attempt.
func (e *Exporter) Export(_ context.Context, batch []tracing.SpanRecord) error {
	var buf bytes.Buffer
	for _, rec := range batch {
		line, err := json.Marshal(Encode(rec))
		if err != nil {
			return fmt.Errorf("file exporter: marshal span %s: %w", rec.SpanID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.f == nil {
		if err := e.open(); err != nil {
			return export.Retryable(err)
		}
	}
	if _, err := e.f.Write(buf.Bytes()); err != nil {
		e.f.Close()
		e.f = nil
		return export.Retryable(fmt.Errorf("file exporter: write: %w", err))
	}
	return nil
}

// Shutdown syncs and closes the span log file.
func (e *Exporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.f == nil {
		return nil
	}
	err := e.f.Sync()
	if cerr := e.f.Close(); err == nil {
		err = cerr
	}
	e.f = nil
	return err
}
