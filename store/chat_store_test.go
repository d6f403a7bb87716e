package store_test

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"codewizard/store"
)

var _ = Describe("Stores", func() {
	runBundleTests := func(name string, newBundle func() (*store.Bundle, func())) {
		Context(name, func() {
			var (
				bundle  *store.Bundle
				cleanup func()
			)

			BeforeEach(func() {
				bundle, cleanup = newBundle()
			})

			AfterEach(func() {
				cleanup()
			})

			It("stores and retrieves chat messages in order", func() {
				Expect(bundle.Chats.SaveMessage(store.ChatMessage{
					SessionID: "sess-1", Role: "user", Content: "what does this do?",
				})).To(Succeed())
				Expect(bundle.Chats.SaveMessage(store.ChatMessage{
					SessionID: "sess-1", Role: "assistant", Content: "it sorts the slice",
				})).To(Succeed())

				msgs, err := bundle.Chats.GetMessages("sess-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(msgs).To(HaveLen(2))
				Expect(msgs[0].Role).To(Equal("user"))
				Expect(msgs[0].Content).To(Equal("what does this do?"))
				Expect(msgs[1].Role).To(Equal("assistant"))
				Expect(msgs[1].ID).To(BeNumerically(">", msgs[0].ID))
			})

			It("keeps sessions isolated", func() {
				Expect(bundle.Chats.SaveMessage(store.ChatMessage{
					SessionID: "sess-1", Role: "user", Content: "first session",
				})).To(Succeed())
				Expect(bundle.Chats.SaveMessage(store.ChatMessage{
					SessionID: "sess-2", Role: "user", Content: "second session",
				})).To(Succeed())

				msgs, err := bundle.Chats.GetMessages("sess-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(msgs).To(HaveLen(1))
				Expect(msgs[0].Content).To(Equal("first session"))
			})

			It("clears a session without touching others", func() {
				Expect(bundle.Chats.SaveMessage(store.ChatMessage{
					SessionID: "sess-1", Role: "user", Content: "doomed",
				})).To(Succeed())
				Expect(bundle.Chats.SaveMessage(store.ChatMessage{
					SessionID: "sess-2", Role: "user", Content: "survivor",
				})).To(Succeed())

				Expect(bundle.Chats.ClearSession("sess-1")).To(Succeed())

				msgs, err := bundle.Chats.GetMessages("sess-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(msgs).To(BeEmpty())

				msgs, err = bundle.Chats.GetMessages("sess-2")
				Expect(err).NotTo(HaveOccurred())
				Expect(msgs).To(HaveLen(1))
			})

			It("lists sessions with message counts", func() {
				for i := 0; i < 3; i++ {
					Expect(bundle.Chats.SaveMessage(store.ChatMessage{
						SessionID: "sess-1", Role: "user", Content: "msg",
						CreatedAt: time.Now(),
					})).To(Succeed())
				}
				Expect(bundle.Chats.SaveMessage(store.ChatMessage{
					SessionID: "sess-2", Role: "user", Content: "msg",
					CreatedAt: time.Now(),
				})).To(Succeed())

				infos, err := bundle.Chats.ListSessions()
				Expect(err).NotTo(HaveOccurred())
				Expect(infos).To(HaveLen(2))

				counts := map[string]int{}
				for _, info := range infos {
					counts[info.SessionID] = info.MessageCount
				}
				Expect(counts["sess-1"]).To(Equal(3))
				Expect(counts["sess-2"]).To(Equal(1))
			})

			It("stores analyses and assigns IDs", func() {
				Expect(bundle.Analyses.SaveAnalysis(store.Analysis{
					SessionID: "sess-1",
					UserName:  "Sarah",
					Code:      "def add(a, b): return a + b",
					Analysis:  "A two-argument addition function.",
				})).To(Succeed())

				analyses, err := bundle.Analyses.GetAnalysesBySession("sess-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(analyses).To(HaveLen(1))
				Expect(analyses[0].ID).NotTo(BeEmpty())
				Expect(analyses[0].UserName).To(Equal("Sarah"))
				Expect(analyses[0].Analysis).To(ContainSubstring("addition"))
				Expect(analyses[0].CreatedAt).NotTo(BeZero())
			})

			It("returns no analyses for an unknown session", func() {
				analyses, err := bundle.Analyses.GetAnalysesBySession("nope")
				Expect(err).NotTo(HaveOccurred())
				Expect(analyses).To(BeEmpty())
			})
		})
	}

	runBundleTests("memory backend", func() (*store.Bundle, func()) {
		return store.NewMemoryBundle(), func() {}
	})

	runBundleTests("sqlite backend", func() (*store.Bundle, func()) {
		dbPath := filepath.Join(GinkgoT().TempDir(), "wizard.db")
		bundle, err := store.NewSQLiteBundle(dbPath)
		Expect(err).NotTo(HaveOccurred())
		return bundle, func() { bundle.Close() }
	})
})
