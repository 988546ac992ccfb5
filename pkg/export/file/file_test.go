package file

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

func sampleRecord(t *testing.T) tracing.SpanRecord {
	t.Helper()
	traceID, err := oteltrace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := oteltrace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	parentID, err := oteltrace.SpanIDFromHex("b7ad6b7169203331")
	require.NoError(t, err)

	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	rec := tracing.SpanRecord{
		TraceID:      traceID,
		SpanID:       spanID,
		ParentSpanID: parentID,
		Name:         "llm_call",
		StartTime:    start,
		EndTime:      start.Add(1200 * time.Millisecond),
		Status:       tracing.StatusOK,
	}
	return rec
}

func TestNew_CreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "log")
	e, err := New(Config{Dir: dir, Filename: "spans.log"})
	require.NoError(t, err)
	defer e.Shutdown(context.Background())

	_, err = os.Stat(e.Path())
	assert.NoError(t, err)
}

func TestNew_RequiresFilename(t *testing.T) {
	_, err := New(Config{Dir: t.TempDir()})
	assert.Error(t, err)
}

func TestExport_RoundTrip(t *testing.T) {
	e, err := New(Config{Dir: t.TempDir(), Filename: "spans.log"})
	require.NoError(t, err)

	rec := sampleRecord(t)
	rec.Attributes = append(rec.Attributes,
		attribute.String("gen_ai.request.model", "gpt-4o"),
		attribute.Int64("gen_ai.usage.input_tokens", 118),
	)
	rec.Events = []tracing.Event{{
		Name: "exception",
		Time: rec.StartTime.Add(time.Second),
	}}

	require.NoError(t, e.Export(context.Background(), []tracing.SpanRecord{rec}))
	require.NoError(t, e.Shutdown(context.Background()))

	data, err := os.ReadFile(e.Path())
	require.NoError(t, err)

	got, err := Decode(data[:len(data)-1]) // strip trailing newline
	require.NoError(t, err)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got.TraceID)
	assert.Equal(t, "00f067aa0ba902b7", got.SpanID)
	assert.Equal(t, "b7ad6b7169203331", got.ParentSpanID)
	assert.Equal(t, "llm_call", got.Name)
	assert.Equal(t, "OK", got.Status)
	assert.Equal(t, "gpt-4o", got.Attributes["gen_ai.request.model"])
	assert.EqualValues(t, 118, got.Attributes["gen_ai.usage.input_tokens"])
	require.Len(t, got.Events, 1)
	assert.Equal(t, "exception", got.Events[0].Name)
	assert.True(t, got.StartTime.Equal(rec.StartTime))
	assert.True(t, got.EndTime.Equal(rec.EndTime))
}

func TestExport_OneLinePerSpan(t *testing.T) {
	e, err := New(Config{Dir: t.TempDir(), Filename: "spans.log"})
	require.NoError(t, err)

	root := sampleRecord(t)
	root.ParentSpanID = oteltrace.SpanID{}
	root.Name = "agent_run"
	child := sampleRecord(t)

	require.NoError(t, e.Export(context.Background(), []tracing.SpanRecord{root, child}))
	require.NoError(t, e.Shutdown(context.Background()))

	f, err := os.Open(e.Path())
	require.NoError(t, err)
	defer f.Close()

	var lines []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		rec, err := Decode(scanner.Bytes())
		require.NoError(t, err)
		lines = append(lines, rec)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)

	assert.Equal(t, "agent_run", lines[0].Name)
	assert.Empty(t, lines[0].ParentSpanID)
	assert.Equal(t, "llm_call", lines[1].Name)
	assert.Equal(t, lines[0].TraceID, lines[1].TraceID)
}

func TestExport_AppendsAcrossBatches(t *testing.T) {
	e, err := New(Config{Dir: t.TempDir(), Filename: "spans.log"})
	require.NoError(t, err)
	defer e.Shutdown(context.Background())

	rec := sampleRecord(t)
	require.NoError(t, e.Export(context.Background(), []tracing.SpanRecord{rec}))
	require.NoError(t, e.Export(context.Background(), []tracing.SpanRecord{rec}))

	data, err := os.ReadFile(e.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(data))
}

func countLines(data []byte) int {
	n := 0
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}
