package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

// Config holds the batching and retry policy of the pipeline.
type Config struct {
	// MaxBatchSize is the number of spans flushed together. A batch is
	// exported as soon as it is full or MaxWaitInterval elapses, whichever
	// comes first.
	MaxBatchSize int
	// MaxWaitInterval bounds how long a span can sit in the queue before
	// a partial batch is flushed.
	MaxWaitInterval time.Duration
	// QueueSize bounds the per-exporter queue. On overflow the oldest
	// unflushed span is dropped; producers never block.
	QueueSize int
	// MaxAttempts is the total number of export attempts per batch,
	// including the first one.
	MaxAttempts int
	// BackoffBase is the initial retry delay; subsequent delays grow
	// exponentially.
	BackoffBase time.Duration
	// ExportTimeout bounds a single Export call.
	ExportTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 512
	}
	if c.MaxWaitInterval <= 0 {
		c.MaxWaitInterval = 5 * time.Second
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 2048
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 500 * time.Millisecond
	}
	if c.ExportTimeout <= 0 {
		c.ExportTimeout = 30 * time.Second
	}
	return c
}

// Pipeline decouples span production from exporter I/O latency. Finalized
// records fan out to one bounded queue per exporter; a worker per exporter
// batches and flushes them. A failing exporter never blocks or corrupts the
// batches of another.
type Pipeline struct {
	sinks  []*sink
	logger *zap.Logger

	immediate     atomic.Bool
	shut          atomic.Bool
	droppedOnShut atomic.Int64
	wg            sync.WaitGroup
}

// NewPipeline creates a pipeline fanning out to the given exporters and
// starts one background worker per exporter. The exporter set is fixed for
// the pipeline's lifetime.
func NewPipeline(exporters []Exporter, cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	p := &Pipeline{logger: logger}
	for _, e := range exporters {
		s := &sink{
			name:      fmt.Sprintf("%T", e),
			exporter:  e,
			queue:     newSpanQueue(cfg.QueueSize),
			cfg:       cfg,
			logger:    logger,
			immediate: &p.immediate,
			kick:      make(chan struct{}, 1),
			flushCh:   make(chan chan struct{}),
			stop:      make(chan struct{}),
		}
		p.sinks = append(p.sinks, s)
		p.wg.Add(1)
		go s.run(&p.wg)
	}
	return p
}

// Process enqueues a finalized record on every exporter queue. Never blocks;
// on a full queue the oldest record is evicted and counted as dropped.
func (p *Pipeline) Process(rec tracing.SpanRecord) {
	if p.shut.Load() {
		p.droppedOnShut.Add(1)
		return
	}
	for _, s := range p.sinks {
		if s.queue.push(rec) {
			s.dropped.Add(1)
			s.logger.Debug("span queue full, dropped oldest span",
				zap.String("exporter", s.name),
			)
		}
		if p.immediate.Load() || s.queue.len() >= s.cfg.MaxBatchSize {
			s.wake()
		}
	}
}

// Drain switches the pipeline into immediate-flush mode; records submitted
// afterwards are exported as soon as possible. Used while the tracer drains.
func (p *Pipeline) Drain() {
	p.immediate.Store(true)
	for _, s := range p.sinks {
		s.wake()
	}
}

// Flush forces export of all pending batches across all exporters, bounded
// by ctx. On timeout the partial result is returned with the context error;
// outstanding I/O is abandoned, not forcibly terminated.
func (p *Pipeline) Flush(ctx context.Context) (tracing.FlushResult, error) {
	var pending []chan struct{}
	for _, s := range p.sinks {
		done := make(chan struct{})
		select {
		case s.flushCh <- done:
			pending = append(pending, done)
		case <-s.stop:
		case <-ctx.Done():
			return p.result(), ctx.Err()
		}
	}
	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return p.result(), ctx.Err()
		}
	}
	return p.result(), nil
}

// Shutdown stops the workers after a final drain and shuts down every
// exporter. Records submitted afterwards are dropped and counted.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	if !p.shut.CompareAndSwap(false, true) {
		return nil
	}
	for _, s := range p.sinks {
		close(s.stop)
	}

	workersDone := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(workersDone)
	}()
	select {
	case <-workersDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	var errs []error
	for _, s := range p.sinks {
		if err := s.exporter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// Result returns the cumulative sent and dropped counts.
func (p *Pipeline) Result() tracing.FlushResult {
	return p.result()
}

func (p *Pipeline) result() tracing.FlushResult {
	res := tracing.FlushResult{Dropped: p.droppedOnShut.Load()}
	for _, s := range p.sinks {
		res.Sent += s.sent.Load()
		res.Dropped += s.dropped.Load()
	}
	return res
}

// sink owns one exporter: its queue, its worker and its counters.
type sink struct {
	name      string
	exporter  Exporter
	queue     *spanQueue
	cfg       Config
	logger    *zap.Logger
	immediate *atomic.Bool

	kick    chan struct{}
	flushCh chan chan struct{}
	stop    chan struct{}

	sent    atomic.Int64
	dropped atomic.Int64
}

func (s *sink) wake() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *sink) run(wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(s.cfg.MaxWaitInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			s.drainAll()
			return
		case done := <-s.flushCh:
			s.drainAll()
			close(done)
		case <-ticker.C:
			s.drainAll()
		case <-s.kick:
			if s.immediate.Load() {
				s.drainAll()
				continue
			}
			// Only full batches on the fast path; partial batches wait
			// for the ticker or an explicit flush.
			for s.queue.len() >= s.cfg.MaxBatchSize {
				s.exportBatch(s.queue.pop(s.cfg.MaxBatchSize))
			}
		}
	}
}

func (s *sink) drainAll() {
	for {
		batch := s.queue.pop(s.cfg.MaxBatchSize)
		if len(batch) == 0 {
			return
		}
		s.exportBatch(batch)
	}
}

// exportBatch exports one batch, retrying transient failures with
// exponential backoff. After the attempt budget is exhausted, or on a fatal
// error, the batch is dropped and counted; the pipeline moves on.
func (s *sink) exportBatch(batch []tracing.SpanRecord) {
	batchID := ulid.Make().String()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.BackoffBase
	bo.MaxElapsedTime = 0

	attempts := 0
	operation := func() error {
		attempts++
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ExportTimeout)
		defer cancel()

		err := s.exporter.Export(ctx, batch)
		switch {
		case err == nil:
			return nil
		case IsRetryable(err):
			s.logger.Warn("retryable export failure",
				zap.String("exporter", s.name),
				zap.String("batch_id", batchID),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(bo, uint64(s.cfg.MaxAttempts-1)))
	if err != nil {
		s.dropped.Add(int64(len(batch)))
		s.logger.Error("dropping batch after export failure",
			zap.String("exporter", s.name),
			zap.String("batch_id", batchID),
			zap.Int("spans", len(batch)),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return
	}
	s.sent.Add(int64(len(batch)))
}
