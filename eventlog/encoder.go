package eventlog

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// notSerializable replaces any value that cannot be rendered at all.
const notSerializable = "<not serializable>"

// maxNesting bounds metadata recursion so cyclic structures degrade to
// their string form instead of overflowing the stack.
const maxNesting = 32

// encode turns an event into a single JSON line (no trailing newline).
// It never fails: values the encoder cannot represent are substituted
// field by field, and if the record still cannot be marshaled the
// result is a minimal diagnostic record instead.
func encode(ev Event) []byte {
	record := map[string]any{
		"timestamp":  ev.Timestamp.Format(time.RFC3339Nano),
		"event_type": ev.EventType,
		"content":    ev.Content,
		"metadata":   sanitizeMap(ev.Metadata, 0),
	}
	if ev.Error != nil {
		record["error"] = map[string]any{
			"type":      ev.Error.Type,
			"message":   ev.Error.Message,
			"traceback": ev.Error.Traceback,
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		fallback := map[string]string{
			"error":   "JSON serialization failed",
			"message": err.Error(),
		}
		data, err = json.Marshal(fallback)
		if err != nil {
			// Marshaling a map of strings cannot fail; keep a literal
			// last resort anyway.
			data = []byte(`{"error":"JSON serialization failed"}`)
		}
	}
	return data
}

// sanitizeMap returns a copy of m with every value made JSON-safe.
// A nil map becomes an empty one so the metadata field is always present.
func sanitizeMap(m map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = sanitizeValue(v, depth)
	}
	return out
}

// sanitizeValue converts v into something encoding/json accepts.
// Timestamps become their ISO-8601 form, errors their message, and
// anything the encoder rejects the notSerializable sentinel.
func sanitizeValue(v any, depth int) any {
	if depth > maxNesting {
		return notSerializable
	}
	switch val := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return val
	case float32:
		return sanitizeFloat(float64(val))
	case float64:
		return sanitizeFloat(val)
	case json.Number:
		// A Number is just text; an invalid literal fails the whole
		// marshal, so keep it as a plain string instead.
		if _, err := json.Marshal(val); err != nil {
			return string(val)
		}
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case error:
		return stringify(val)
	case map[string]any:
		return sanitizeMap(val, depth+1)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item, depth+1)
		}
		return out
	default:
		if _, err := json.Marshal(val); err == nil {
			return val
		}
		return notSerializable
	}
}

// sanitizeFloat keeps finite values numeric. NaN and the infinities
// have no JSON form and would fail the whole record, so they degrade
// to their string rendering.
func sanitizeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprintf("%v", f)
	}
	return f
}

// stringify renders v with %v, absorbing panics from hostile String()
// or Error() implementations.
func stringify(v any) (s string) {
	defer func() {
		if recover() != nil {
			s = notSerializable
		}
	}()
	return fmt.Sprintf("%v", v)
}
