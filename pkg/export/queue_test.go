package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

func named(name string) tracing.SpanRecord {
	return tracing.SpanRecord{Name: name}
}

func TestSpanQueue_FIFO(t *testing.T) {
	q := newSpanQueue(4)
	for _, name := range []string{"a", "b", "c"} {
		assert.False(t, q.push(named(name)))
	}
	require.Equal(t, 3, q.len())

	out := q.pop(2)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Name)
	assert.Equal(t, "b", out[1].Name)

	out = q.pop(10)
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].Name)
	assert.Nil(t, q.pop(1))
}

func TestSpanQueue_EvictsOldestWhenFull(t *testing.T) {
	q := newSpanQueue(2)
	assert.False(t, q.push(named("a")))
	assert.False(t, q.push(named("b")))
	assert.True(t, q.push(named("c")))

	out := q.pop(10)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Name)
	assert.Equal(t, "c", out[1].Name)
}
