package tracing

import (
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
)

// Attribute represents a key-value pair attached to spans and events.
type Attribute struct {
	Key   string
	Value any
}

// Attr is a convenience constructor for Attribute.
func Attr(key string, value any) Attribute {
	return Attribute{Key: key, Value: value}
}

func convertAttrs(attrs []Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		if attr, ok := convertAttr(a); ok {
			kv = append(kv, attr)
		}
	}
	return kv
}

func convertAttr(a Attribute) (attribute.KeyValue, bool) {
	switch v := a.Value.(type) {
	case string:
		return attribute.String(a.Key, v), true
	case int:
		return attribute.Int(a.Key, v), true
	case int64:
		return attribute.Int64(a.Key, v), true
	case int32:
		return attribute.Int64(a.Key, int64(v)), true
	case int16:
		return attribute.Int64(a.Key, int64(v)), true
	case int8:
		return attribute.Int64(a.Key, int64(v)), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return attribute.String(a.Key, fmt.Sprintf("%d", v)), true
		}
		return attribute.Int64(a.Key, int64(v)), true
	case uint64:
		if v > math.MaxInt64 {
			return attribute.String(a.Key, fmt.Sprintf("%d", v)), true
		}
		return attribute.Int64(a.Key, int64(v)), true
	case uint32:
		return attribute.Int64(a.Key, int64(v)), true
	case uint16:
		return attribute.Int64(a.Key, int64(v)), true
	case uint8:
		return attribute.Int64(a.Key, int64(v)), true
	case bool:
		return attribute.Bool(a.Key, v), true
	case float64:
		return attribute.Float64(a.Key, v), true
	case float32:
		return attribute.Float64(a.Key, float64(v)), true
	case []string:
		return attribute.StringSlice(a.Key, v), true
	case []int:
		return attribute.IntSlice(a.Key, v), true
	case []int64:
		return attribute.Int64Slice(a.Key, v), true
	case []float64:
		return attribute.Float64Slice(a.Key, v), true
	case []bool:
		return attribute.BoolSlice(a.Key, v), true
	case fmt.Stringer:
		return attribute.String(a.Key, v.String()), true
	default:
		return attribute.String(a.Key, fmt.Sprintf("%v", v)), true
	}
}
