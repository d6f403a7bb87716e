package rag_test

import (
	"context"

	"codewizard/rag"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Index", func() {
	var (
		ctx      context.Context
		embedder *vocabEmbedder
		index    *rag.Index
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = newVocabEmbedder("goroutine", "channel", "mutex", "slice")
		index = rag.NewIndex(embedder)
	})

	It("embeds and stores chunks", func() {
		n, err := index.Add(ctx, "https://example.com/concurrency", []string{
			"A goroutine is a lightweight thread.",
			"A channel connects goroutines.",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(index.Len()).To(Equal(2))
	})

	It("adds nothing without calling the embedder", func() {
		n, err := index.Add(ctx, "https://example.com/empty", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(0))
		Expect(embedder.calls).To(Equal(0))
	})

	It("ranks the most similar chunk first", func() {
		_, err := index.Add(ctx, "https://example.com/concurrency", []string{
			"A mutex guards shared state from concurrent access.",
			"A channel connects goroutines. Send on a channel blocks until a receive.",
			"A slice is a view over an array.",
		})
		Expect(err).NotTo(HaveOccurred())

		matches, err := index.Search(ctx, "how does a channel work", 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(2))
		Expect(matches[0].Text).To(ContainSubstring("channel connects"))
		Expect(matches[0].Score).To(BeNumerically(">", matches[1].Score))
	})

	It("caps results at k", func() {
		chunks := []string{
			"channel one", "channel two", "channel three",
			"channel four", "channel five", "channel six",
		}
		_, err := index.Add(ctx, "https://example.com/channels", chunks)
		Expect(err).NotTo(HaveOccurred())

		matches, err := index.Search(ctx, "channel", 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(3))
	})

	It("tracks distinct sources in insertion order", func() {
		_, err := index.Add(ctx, "https://a.example.com", []string{"goroutine"})
		Expect(err).NotTo(HaveOccurred())
		_, err = index.Add(ctx, "https://b.example.com", []string{"channel"})
		Expect(err).NotTo(HaveOccurred())
		_, err = index.Add(ctx, "https://a.example.com", []string{"mutex"})
		Expect(err).NotTo(HaveOccurred())

		Expect(index.Sources()).To(Equal([]string{
			"https://a.example.com",
			"https://b.example.com",
		}))
		Expect(index.Len()).To(Equal(3))
	})
})
