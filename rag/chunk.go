package rag

import (
	"strings"
	"unicode/utf8"
)

// SplitChunks cuts text into size-bounded chunks for embedding,
// preferring paragraph boundaries and overlapping consecutive chunks so
// answers that straddle a cut remain findable.
func SplitChunks(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 1200
	}
	if overlap < 0 || overlap*2 >= size {
		overlap = 0
	}

	var chunks []string
	var current strings.Builder
	fresh := 0 // bytes written since the last flush, excluding the overlap seed

	flush := func() {
		if fresh == 0 {
			return
		}
		chunk := strings.TrimSpace(current.String())
		current.Reset()
		fresh = 0
		if chunk == "" {
			return
		}
		chunks = append(chunks, chunk)
		if overlap > 0 && len(chunk) > overlap {
			current.WriteString(chunk[len(chunk)-overlap:])
			current.WriteByte('\n')
		}
	}

	write := func(s string) {
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(s)
		fresh += len(s)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		// Paragraphs longer than a whole chunk get cut at whitespace.
		for len(para) > size {
			room := size - current.Len() - 1
			if room < size/2 {
				flush()
				room = size - current.Len() - 1
			}
			if room < 1 {
				current.Reset()
				fresh = 0
				room = size
			}
			cut := lastBreak(para[:room])
			write(para[:cut])
			flush()
			para = strings.TrimSpace(para[cut:])
		}
		if para == "" {
			continue
		}

		if current.Len()+len(para)+1 > size {
			flush()
		}
		write(para)
	}
	flush()

	return chunks
}

// lastBreak finds the last whitespace in s to cut at. Unbroken runs
// get cut at the nearest rune boundary instead.
func lastBreak(s string) int {
	if i := strings.LastIndexAny(s, " \t\n"); i > 0 {
		return i
	}
	cut := len(s)
	for cut > 1 {
		if r, size := utf8.DecodeLastRuneInString(s[:cut]); r == utf8.RuneError && size <= 1 {
			cut--
			continue
		}
		break
	}
	return cut
}
