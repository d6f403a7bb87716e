package rag_test

import (
	"strings"

	"codewizard/rag"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractText", func() {
	It("strips tags and keeps the visible text", func() {
		text := rag.ExtractText(`<html><body><p>Hello <b>world</b></p></body></html>`)
		Expect(text).To(Equal("Hello world"))
	})

	It("drops script, style and head content", func() {
		page := `<html><head><title>Ignored</title><style>p{color:red}</style></head>
			<body><script>var x = "hidden";</script><p>Visible</p></body></html>`
		text := rag.ExtractText(page)
		Expect(text).To(Equal("Visible"))
		Expect(text).NotTo(ContainSubstring("hidden"))
		Expect(text).NotTo(ContainSubstring("color"))
	})

	It("keeps paragraph structure across block elements", func() {
		page := `<body><h1>Title</h1><p>First paragraph.</p><p>Second paragraph.</p></body>`
		text := rag.ExtractText(page)
		lines := strings.Split(text, "\n")
		Expect(lines).To(Equal([]string{"Title", "First paragraph.", "Second paragraph."}))
	})

	It("collapses runs of blank lines", func() {
		page := `<body><div><div><p>One</p></div></div><div></div><div></div><p>Two</p></body>`
		text := rag.ExtractText(page)
		Expect(text).NotTo(ContainSubstring("\n\n\n"))
		Expect(text).To(ContainSubstring("One"))
		Expect(text).To(ContainSubstring("Two"))
	})

	It("survives malformed markup", func() {
		text := rag.ExtractText(`<p>Unclosed <b>bold <p>next`)
		Expect(text).To(ContainSubstring("Unclosed"))
		Expect(text).To(ContainSubstring("next"))
	})

	It("returns empty text for an empty document", func() {
		Expect(rag.ExtractText("")).To(Equal(""))
	})
})

var _ = Describe("ExtractTitle", func() {
	It("returns the document title", func() {
		page := `<html><head><title>  My Page </title></head><body><p>x</p></body></html>`
		Expect(rag.ExtractTitle(page)).To(Equal("My Page"))
	})

	It("returns empty when there is no title", func() {
		Expect(rag.ExtractTitle(`<body><p>no head</p></body>`)).To(Equal(""))
	})
})
