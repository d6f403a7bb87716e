package eventlog_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"codewizard/eventlog"
)

var _ = Describe("Logger", func() {
	var (
		dir     string
		logPath string
		console *bytes.Buffer
	)

	newLogger := func(opts eventlog.Options) *eventlog.Logger {
		if opts.Dir == "" {
			opts.Dir = dir
		}
		if opts.Console == nil {
			opts.Console = console
		}
		return eventlog.New(opts)
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		logPath = filepath.Join(dir, "codewizard.log")
		console = &bytes.Buffer{}
	})

	Describe("RecordEvent", func() {
		It("writes a single JSON line with exactly the record fields", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			logger.RecordEvent("app_start", "application started", map[string]any{"version": "1.0"}, eventlog.LevelInfo)

			records := readRecords(logPath)
			Expect(records).To(HaveLen(1))
			rec := records[0]
			Expect(rec).To(HaveLen(4))
			Expect(rec).To(HaveKey("timestamp"))
			Expect(rec["event_type"]).To(Equal("app_start"))
			Expect(rec["content"]).To(Equal("application started"))
			Expect(rec["metadata"]).To(Equal(map[string]any{"version": "1.0"}))
		})

		It("stamps records with a parseable ISO-8601 timestamp", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			before := time.Now().Add(-time.Second)
			logger.RecordEvent("tick", "", nil, eventlog.LevelInfo)
			after := time.Now().Add(time.Second)

			rec := readRecords(logPath)[0]
			ts, err := time.Parse(time.RFC3339Nano, rec["timestamp"].(string))
			Expect(err).NotTo(HaveOccurred())
			Expect(ts.After(before)).To(BeTrue())
			Expect(ts.Before(after)).To(BeTrue())
		})

		It("always includes a metadata object, even when nil was passed", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			logger.RecordEvent("ping", "no metadata", nil, eventlog.LevelInfo)

			rec := readRecords(logPath)[0]
			Expect(rec["metadata"]).To(Equal(map[string]any{}))
		})

		It("mirrors every record to the console", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			logger.RecordEvent("mirror", "both sinks", nil, eventlog.LevelInfo)

			Expect(console.String()).To(ContainSubstring(`"event_type":"mirror"`))
			fileData, err := os.ReadFile(logPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(console.String()).To(Equal(string(fileData)))
		})

		It("drops events below the configured minimum level", func() {
			logger := newLogger(eventlog.Options{MinLevel: eventlog.LevelWarning})
			defer logger.Close()

			logger.RecordEvent("debug_detail", "too quiet", nil, eventlog.LevelDebug)
			logger.RecordEvent("info_detail", "still too quiet", nil, eventlog.LevelInfo)
			logger.RecordEvent("warning_detail", "loud enough", nil, eventlog.LevelWarning)
			logger.RecordEvent("critical_detail", "loudest", nil, eventlog.LevelCritical)

			records := readRecords(logPath)
			Expect(records).To(HaveLen(2))
			Expect(records[0]["event_type"]).To(Equal("warning_detail"))
			Expect(records[1]["event_type"]).To(Equal("critical_detail"))
		})

		It("is safe for concurrent callers", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 25; j++ {
						logger.RecordEvent("burst", "concurrent write", nil, eventlog.LevelInfo)
					}
				}()
			}
			wg.Wait()

			Expect(readRecords(logPath)).To(HaveLen(500))
		})
	})

	Describe("RecordUserAction", func() {
		It("wraps the action in a user_action event with session context", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			logger.RecordUserAction("login", "Sarah", "sess-42", map[string]any{"name_length": 5})

			rec := readRecords(logPath)[0]
			Expect(rec["event_type"]).To(Equal("user_action"))
			Expect(rec["content"]).To(Equal("login"))
			meta := rec["metadata"].(map[string]any)
			Expect(meta["user_id"]).To(Equal("Sarah"))
			Expect(meta["session_id"]).To(Equal("sess-42"))
			Expect(meta["details"]).To(Equal(map[string]any{"name_length": float64(5)}))
		})

		It("records an empty details object when none are given", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			logger.RecordUserAction("logout", "Sarah", "sess-42", nil)

			meta := readRecords(logPath)[0]["metadata"].(map[string]any)
			Expect(meta["details"]).To(Equal(map[string]any{}))
		})
	})

	Describe("RecordError", func() {
		It("captures the error type, message and a stack trace", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			_, err := os.Open(filepath.Join(dir, "missing.txt"))
			logger.RecordError(err, "reading prompt file", map[string]any{"path": "missing.txt"})

			rec := readRecords(logPath)[0]
			Expect(rec["event_type"]).To(Equal("error"))
			Expect(rec["content"]).To(Equal("reading prompt file"))

			errInfo := rec["error"].(map[string]any)
			Expect(errInfo["type"]).To(Equal("*fs.PathError"))
			Expect(errInfo["message"]).To(ContainSubstring("missing.txt"))
			Expect(errInfo["traceback"]).NotTo(BeEmpty())
			Expect(errInfo["traceback"]).To(ContainSubstring("goroutine"))
		})
	})

	Describe("fail-safe behavior", func() {
		It("still returns a usable logger when the directory cannot be created", func() {
			blocker := filepath.Join(dir, "blocker")
			Expect(os.WriteFile(blocker, []byte("x"), 0644)).To(Succeed())

			logger := newLogger(eventlog.Options{Dir: filepath.Join(blocker, "logs")})
			defer logger.Close()

			Expect(func() {
				logger.RecordEvent("still_alive", "console only", nil, eventlog.LevelInfo)
			}).NotTo(Panic())
			Expect(console.String()).To(ContainSubstring(`"event_type":"still_alive"`))
		})

		It("substitutes a sentinel for metadata values JSON cannot represent", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			logger.RecordEvent("odd_metadata", "unserializable value", map[string]any{
				"ch": make(chan int),
				"ok": true,
			}, eventlog.LevelInfo)

			meta := readRecords(logPath)[0]["metadata"].(map[string]any)
			Expect(meta["ch"]).To(Equal("<not serializable>"))
			Expect(meta["ok"]).To(Equal(true))
		})

		It("keeps the record intact when metadata carries non-finite floats", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			logger.RecordEvent("login", "User logged in: Alice", map[string]any{
				"score":  math.NaN(),
				"bound":  math.Inf(1),
				"floor":  math.Inf(-1),
				"finite": 3.5,
			}, eventlog.LevelInfo)

			rec := readRecords(logPath)[0]
			Expect(rec["event_type"]).To(Equal("login"))
			Expect(rec["content"]).To(Equal("User logged in: Alice"))

			meta := rec["metadata"].(map[string]any)
			Expect(meta["score"]).To(Equal("NaN"))
			Expect(meta["bound"]).To(Equal("+Inf"))
			Expect(meta["floor"]).To(Equal("-Inf"))
			Expect(meta["finite"]).To(Equal(3.5))
		})

		It("renders time values in metadata as ISO-8601 strings", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			when := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
			logger.RecordEvent("scheduled", "", map[string]any{"at": when}, eventlog.LevelInfo)

			meta := readRecords(logPath)[0]["metadata"].(map[string]any)
			Expect(meta["at"]).To(Equal("2025-03-14T09:26:53Z"))
		})

		It("never panics on a console writer that blows up", func() {
			logger := newLogger(eventlog.Options{Console: panicWriter{}})
			defer logger.Close()

			Expect(func() {
				logger.RecordEvent("boom", "hostile console", nil, eventlog.LevelInfo)
			}).NotTo(Panic())
		})
	})

	Describe("WithFields", func() {
		It("merges context fields into every record, caller fields winning", func() {
			logger := newLogger(eventlog.Options{})
			defer logger.Close()

			sink := eventlog.WithFields(logger, map[string]any{
				"session_id": "sess-1",
				"source":     "context",
			})
			sink.Record("tagged", "merged metadata", map[string]any{"source": "caller"})

			meta := readRecords(logPath)[0]["metadata"].(map[string]any)
			Expect(meta["session_id"]).To(Equal("sess-1"))
			Expect(meta["source"]).To(Equal("caller"))
		})
	})
})

type panicWriter struct{}

func (panicWriter) Write([]byte) (int, error) {
	panic("console gone")
}

var _ = Describe("ParseLevel", func() {
	It("maps names to levels and defaults unknown names to info", func() {
		Expect(eventlog.ParseLevel("debug")).To(Equal(eventlog.LevelDebug))
		Expect(eventlog.ParseLevel("WARNING")).To(Equal(eventlog.LevelWarning))
		Expect(eventlog.ParseLevel("warn")).To(Equal(eventlog.LevelWarning))
		Expect(eventlog.ParseLevel("critical")).To(Equal(eventlog.LevelCritical))
		Expect(eventlog.ParseLevel("verbose")).To(Equal(eventlog.LevelInfo))
		Expect(eventlog.ParseLevel("")).To(Equal(eventlog.LevelInfo))
	})

	It("orders levels by severity", func() {
		Expect(eventlog.LevelDebug < eventlog.LevelInfo).To(BeTrue())
		Expect(eventlog.LevelInfo < eventlog.LevelWarning).To(BeTrue())
		Expect(eventlog.LevelWarning < eventlog.LevelError).To(BeTrue())
		Expect(eventlog.LevelError < eventlog.LevelCritical).To(BeTrue())
	})
})
