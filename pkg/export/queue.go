package export

import (
	"sync"

	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

// spanQueue is a bounded FIFO of finalized records. When full, the oldest
// unflushed record is evicted so producers never block on export I/O.
type spanQueue struct {
	mu       sync.Mutex
	buf      []tracing.SpanRecord
	capacity int
}

func newSpanQueue(capacity int) *spanQueue {
	return &spanQueue{
		buf:      make([]tracing.SpanRecord, 0, min(capacity, 64)),
		capacity: capacity,
	}
}

// push appends rec, evicting the oldest record if the queue is full.
// Reports whether an eviction happened.
func (q *spanQueue) push(rec tracing.SpanRecord) (evicted bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) >= q.capacity {
		copy(q.buf, q.buf[1:])
		q.buf = q.buf[:len(q.buf)-1]
		evicted = true
	}
	q.buf = append(q.buf, rec)
	return evicted
}

// pop removes and returns up to max of the oldest records, preserving order.
func (q *spanQueue) pop(max int) []tracing.SpanRecord {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return nil
	}
	n := min(max, len(q.buf))
	out := make([]tracing.SpanRecord, n)
	copy(out, q.buf[:n])
	remaining := copy(q.buf, q.buf[n:])
	q.buf = q.buf[:remaining]
	return out
}

func (q *spanQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
