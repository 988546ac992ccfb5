package file

import (
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/agent-analytics/agenttrace-go/pkg/tracing"
)

// Record is the wire shape of one span log line.
type Record struct {
	TraceID           string         `json:"trace_id"`
	SpanID            string         `json:"span_id"`
	ParentSpanID      string         `json:"parent_span_id,omitempty"`
	Name              string         `json:"name"`
	StartTime         time.Time      `json:"start_time"`
	EndTime           time.Time      `json:"end_time"`
	Attributes        map[string]any `json:"attributes,omitempty"`
	Events            []EventRecord  `json:"events,omitempty"`
	Status            string         `json:"status"`
	StatusDescription string         `json:"status_description,omitempty"`
}

// EventRecord is the wire shape of one span event.
type EventRecord struct {
	Name       string         `json:"name"`
	Time       time.Time      `json:"time"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Encode converts a finalized span into its wire shape.
func Encode(rec tracing.SpanRecord) Record {
	out := Record{
		TraceID:           rec.TraceID.String(),
		SpanID:            rec.SpanID.String(),
		Name:              rec.Name,
		StartTime:         rec.StartTime,
		EndTime:           rec.EndTime,
		Attributes:        attrsToMap(rec.Attributes),
		Status:            rec.Status.String(),
		StatusDescription: rec.StatusDescription,
	}
	if rec.ParentSpanID.IsValid() {
		out.ParentSpanID = rec.ParentSpanID.String()
	}
	for _, ev := range rec.Events {
		out.Events = append(out.Events, EventRecord{
			Name:       ev.Name,
			Time:       ev.Time,
			Attributes: attrsToMap(ev.Attributes),
		})
	}
	return out
}

// Decode parses one span log line back into its wire shape.
func Decode(line []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func attrsToMap(kvs []attribute.KeyValue) map[string]any {
	if len(kvs) == 0 {
		return nil
	}
	m := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}
