package eventlog_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"codewizard/eventlog"
)

var _ = Describe("Rotation", func() {
	var (
		dir     string
		logPath string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		logPath = filepath.Join(dir, "codewizard.log")
	})

	// fill writes enough fixed-size events to force at least one rotation.
	fill := func(logger *eventlog.Logger, n int) {
		payload := strings.Repeat("x", 100)
		for i := 0; i < n; i++ {
			logger.RecordEvent("filler", payload, map[string]any{"seq": i}, eventlog.LevelInfo)
		}
	}

	It("archives the active file once it would exceed the size limit", func() {
		logger := eventlog.New(eventlog.Options{
			Dir:      dir,
			MaxBytes: 2048,
			Console:  GinkgoWriter,
		})
		defer logger.Close()

		fill(logger, 30)

		info, err := os.Stat(logPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(BeNumerically("<=", 2048))

		_, err = os.Stat(logPath + ".1")
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps at most the configured number of backups", func() {
		logger := eventlog.New(eventlog.Options{
			Dir:         dir,
			MaxBytes:    1024,
			BackupCount: 3,
			Console:     GinkgoWriter,
		})
		defer logger.Close()

		fill(logger, 200)

		for i := 1; i <= 3; i++ {
			_, err := os.Stat(fmt.Sprintf("%s.%d", logPath, i))
			Expect(err).NotTo(HaveOccurred(), "expected backup %d to exist", i)
		}
		_, err := os.Stat(logPath + ".4")
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("retains no backups when the count is negative", func() {
		logger := eventlog.New(eventlog.Options{
			Dir:         dir,
			MaxBytes:    1024,
			BackupCount: -1,
			Console:     GinkgoWriter,
		})
		defer logger.Close()

		fill(logger, 100)

		info, err := os.Stat(logPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(BeNumerically("<=", 1024))

		_, err = os.Stat(logPath + ".1")
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("never splits a record across files", func() {
		logger := eventlog.New(eventlog.Options{
			Dir:      dir,
			MaxBytes: 1024,
			Console:  GinkgoWriter,
		})
		defer logger.Close()

		fill(logger, 100)

		matches, err := filepath.Glob(logPath + "*")
		Expect(err).NotTo(HaveOccurred())
		for _, path := range matches {
			// readRecords fails on any partial JSON line.
			readRecords(path)
		}
	})

	It("moves existing backups up a slot instead of overwriting them", func() {
		logger := eventlog.New(eventlog.Options{
			Dir:         dir,
			MaxBytes:    600,
			BackupCount: 5,
			Console:     GinkgoWriter,
		})
		defer logger.Close()

		logger.RecordEvent("first", strings.Repeat("a", 600), nil, eventlog.LevelInfo)
		logger.RecordEvent("second", strings.Repeat("b", 600), nil, eventlog.LevelInfo)
		logger.RecordEvent("third", "small", nil, eventlog.LevelInfo)

		// Oldest record ends up in the highest-numbered backup.
		Expect(readRecords(logPath + ".2")[0]["event_type"]).To(Equal("first"))
		Expect(readRecords(logPath + ".1")[0]["event_type"]).To(Equal("second"))
		Expect(readRecords(logPath)[0]["event_type"]).To(Equal("third"))
	})

	It("picks up the existing file size on reopen", func() {
		first := eventlog.New(eventlog.Options{
			Dir:      dir,
			MaxBytes: 1024,
			Console:  GinkgoWriter,
		})
		logger := first
		logger.RecordEvent("before_restart", strings.Repeat("x", 900), nil, eventlog.LevelInfo)
		logger.Close()

		second := eventlog.New(eventlog.Options{
			Dir:      dir,
			MaxBytes: 1024,
			Console:  GinkgoWriter,
		})
		defer second.Close()
		second.RecordEvent("after_restart", strings.Repeat("y", 900), nil, eventlog.LevelInfo)

		// The pre-restart record was rotated out rather than appended past the limit.
		Expect(readRecords(logPath + ".1")[0]["event_type"]).To(Equal("before_restart"))
		Expect(readRecords(logPath)[0]["event_type"]).To(Equal("after_restart"))
	})
})
