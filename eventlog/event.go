package eventlog

import "time"

// Event is one structured, timestamped fact about application activity.
// Timestamp is assigned at write time, never by the caller.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Error     *ErrorInfo     `json:"error,omitempty"`
}

// ErrorInfo carries the captured failure details attached to error events.
type ErrorInfo struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Traceback string `json:"traceback"`
}
