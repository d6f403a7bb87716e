package eventlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Options configures a Logger. Zero values get sensible defaults.
type Options struct {
	// AppName names the active log file (lowercased, ".log" appended).
	AppName string
	// Dir is the log directory, created if missing.
	Dir string
	// MaxBytes is the rotation threshold for the active file.
	MaxBytes int64
	// BackupCount is how many rotated files to retain. Zero means the
	// default; a negative count retains none, restarting the active
	// file in place on rotation.
	BackupCount int
	// MinLevel filters out events below this severity.
	MinLevel Level
	// Console receives a mirror of every written line.
	Console io.Writer
}

const (
	defaultAppName     = "CodeWizard"
	defaultDir         = "logs"
	defaultMaxBytes    = 1024 * 1024
	defaultBackupCount = 5
)

// Logger turns application events into durable single-line JSON records
// on a rotating file, mirrored to a console stream. Its public methods
// never panic and never return an error: on any failure it degrades to
// console-only output and keeps going.
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	console  io.Writer
	file     *rotatingFile
}

// New builds a Logger. It is always usable: if the log directory or
// file cannot be set up, the logger falls back to console-only mode.
func New(opts Options) *Logger {
	if opts.AppName == "" {
		opts.AppName = defaultAppName
	}
	if opts.Dir == "" {
		opts.Dir = defaultDir
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.BackupCount == 0 {
		opts.BackupCount = defaultBackupCount
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}

	l := &Logger{
		minLevel: opts.MinLevel,
		console:  opts.Console,
	}

	path := filepath.Join(opts.Dir, strings.ToLower(opts.AppName)+".log")
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		fmt.Fprintf(opts.Console, "event log: file sink disabled: %v\n", err)
		return l
	}
	file, err := openRotatingFile(path, opts.MaxBytes, opts.BackupCount)
	if err != nil {
		fmt.Fprintf(opts.Console, "event log: file sink disabled: %v\n", err)
		return l
	}
	l.file = file
	return l
}

// RecordEvent writes one structured event at the given severity.
func (l *Logger) RecordEvent(eventType, content string, metadata map[string]any, level Level) {
	defer l.absorb()
	if level < l.minLevel {
		return
	}
	l.emit(Event{
		Timestamp: time.Now(),
		EventType: eventType,
		Content:   content,
		Metadata:  metadata,
	})
}

// Record writes an informational event. It satisfies Sink.
func (l *Logger) Record(eventType, content string, metadata map[string]any) {
	l.RecordEvent(eventType, content, metadata, LevelInfo)
}

// RecordUserAction writes a "user_action" event carrying session context.
func (l *Logger) RecordUserAction(actionType, userID, sessionID string, details map[string]any) {
	defer l.absorb()
	if LevelInfo < l.minLevel {
		return
	}
	if details == nil {
		details = map[string]any{}
	}
	l.emit(Event{
		Timestamp: time.Now(),
		EventType: "user_action",
		Content:   actionType,
		Metadata: map[string]any{
			"user_id":    userID,
			"session_id": sessionID,
			"details":    details,
		},
	})
}

// RecordError writes an "error" event with the error's type name,
// message and a captured stack trace.
func (l *Logger) RecordError(err error, context string, metadata map[string]any) {
	defer l.absorb()
	if LevelError < l.minLevel {
		return
	}

	info := &ErrorInfo{
		Type:      fmt.Sprintf("%T", err),
		Message:   stringify(err),
		Traceback: captureTrace(),
	}
	l.emit(Event{
		Timestamp: time.Now(),
		EventType: "error",
		Content:   context,
		Metadata:  metadata,
		Error:     info,
	})
}

// Close flushes and closes the file sink. Further records go to the
// console only.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// emit serializes and writes one event to both sinks. The mutex keeps
// concurrent callers from interleaving partial lines and serializes
// rotation with writes.
func (l *Logger) emit(ev Event) {
	line := append(encode(ev), '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if err := l.file.Write(line); err != nil {
			// Degrade to console-only rather than surfacing the failure.
			l.file.Close()
			l.file = nil
			fmt.Fprintf(l.console, "event log: file sink lost, continuing on console: %v\n", err)
		}
	}
	l.console.Write(line)
}

// absorb guarantees the public surface never propagates a failure, even
// a panicking console writer. The last resort is a plain line on stderr.
func (l *Logger) absorb() {
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr, "event log: logging failed: %v\n", r)
	}
}

// captureTrace returns the current goroutine's stack.
func captureTrace() string {
	trace := string(debug.Stack())
	if trace == "" {
		return "<trace unavailable>"
	}
	return trace
}
