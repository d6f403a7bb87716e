package eventlog

// Sink is the minimal event-recording surface components depend on.
// *Logger satisfies it; tests substitute in-memory implementations.
type Sink interface {
	Record(eventType, content string, metadata map[string]any)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Record(string, string, map[string]any) {}

// WithFields wraps a sink so that the given fields ride along on every
// record. Fields supplied by the caller win on key collision.
func WithFields(sink Sink, fields map[string]any) Sink {
	if len(fields) == 0 {
		return sink
	}
	return &fieldSink{sink: sink, fields: fields}
}

type fieldSink struct {
	sink   Sink
	fields map[string]any
}

func (f *fieldSink) Record(eventType, content string, metadata map[string]any) {
	merged := make(map[string]any, len(f.fields)+len(metadata))
	for k, v := range f.fields {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}
	f.sink.Record(eventType, content, merged)
}
