package rag_test

import (
	"strings"

	"codewizard/rag"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SplitChunks", func() {
	It("returns nothing for empty text", func() {
		Expect(rag.SplitChunks("", 100, 0)).To(BeEmpty())
		Expect(rag.SplitChunks("   \n\n  ", 100, 0)).To(BeEmpty())
	})

	It("keeps short text as a single chunk", func() {
		chunks := rag.SplitChunks("just a short note", 100, 0)
		Expect(chunks).To(Equal([]string{"just a short note"}))
	})

	It("packs paragraphs until the size limit", func() {
		text := strings.Join([]string{
			strings.Repeat("a", 40),
			strings.Repeat("b", 40),
			strings.Repeat("c", 40),
		}, "\n\n")

		chunks := rag.SplitChunks(text, 90, 0)
		Expect(chunks).To(HaveLen(2))
		Expect(chunks[0]).To(ContainSubstring("aaaa"))
		Expect(chunks[0]).To(ContainSubstring("bbbb"))
		Expect(chunks[1]).To(ContainSubstring("cccc"))
	})

	It("respects the size bound", func() {
		words := make([]string, 200)
		for i := range words {
			words[i] = "word"
		}
		text := strings.Join(words, " ")

		for _, chunk := range rag.SplitChunks(text, 120, 0) {
			Expect(len(chunk)).To(BeNumerically("<=", 120))
		}
	})

	It("cuts oversized paragraphs at whitespace", func() {
		text := strings.Repeat("lorem ipsum ", 50)

		chunks := rag.SplitChunks(text, 100, 0)
		Expect(len(chunks)).To(BeNumerically(">", 1))
		for _, chunk := range chunks {
			Expect(chunk).NotTo(HavePrefix(" "))
			Expect(chunk).NotTo(HaveSuffix(" "))
		}
	})

	It("seeds the next chunk with the overlap tail", func() {
		text := strings.Repeat("alpha beta ", 30)

		chunks := rag.SplitChunks(text, 100, 20)
		Expect(len(chunks)).To(BeNumerically(">", 1))
		for i := 1; i < len(chunks); i++ {
			tail := chunks[i-1][len(chunks[i-1])-10:]
			Expect(chunks[i]).To(ContainSubstring(strings.TrimSpace(tail)))
		}
	})

	It("preserves every word across the cut", func() {
		words := []string{"one", "two", "three", "four", "five", "six", "seven"}
		text := strings.Join(words, " ")

		chunks := rag.SplitChunks(text, 12, 0)
		joined := strings.Join(chunks, " ")
		for _, w := range words {
			Expect(joined).To(ContainSubstring(w))
		}
	})
})
