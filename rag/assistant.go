package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codewizard/llm"
)

// EventRecorder is the slice of event logging the assistant needs.
type EventRecorder interface {
	Record(eventType, content string, metadata map[string]any)
	RecordError(err error, context string, metadata map[string]any)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string, map[string]any)     {}
func (nopRecorder) RecordError(error, string, map[string]any) {}

// AssistantOptions configures a retrieval-backed question answerer.
type AssistantOptions struct {
	Provider     llm.Provider
	Model        string
	Fetcher      Fetcher
	Embedder     Embedder
	Events       EventRecorder
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// Assistant answers questions about web pages: URLs are fetched,
// stripped to text, chunked and embedded; questions retrieve the most
// similar chunks and ground the model's answer in them.
type Assistant struct {
	provider llm.Provider
	model    string
	fetcher  Fetcher
	index    *Index
	events   EventRecorder

	chunkSize    int
	chunkOverlap int
	topK         int
}

const assistantSystemPrompt = "You are Code Wizard's documentation assistant. " +
	"Answer using only the provided context passages. When the context does " +
	"not contain the answer, say so instead of guessing. Cite the source URL " +
	"of the passages you used."

func NewAssistant(opts AssistantOptions) (*Assistant, error) {
	if opts.Provider == nil {
		return nil, errors.New("rag: no provider configured")
	}
	if opts.Embedder == nil {
		return nil, errors.New("rag: no embedder configured")
	}
	if opts.Fetcher == nil {
		opts.Fetcher = NewHTTPFetcher(0, "")
	}
	if opts.Events == nil {
		opts.Events = nopRecorder{}
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1200
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}
	if opts.TopK <= 0 {
		opts.TopK = 4
	}

	return &Assistant{
		provider:     opts.Provider,
		model:        opts.Model,
		fetcher:      opts.Fetcher,
		index:        NewIndex(opts.Embedder),
		events:       opts.Events,
		chunkSize:    opts.ChunkSize,
		chunkOverlap: opts.ChunkOverlap,
		topK:         opts.TopK,
	}, nil
}

// IndexURL fetches a page and adds its text to the index. Returns the
// number of chunks indexed.
func (a *Assistant) IndexURL(ctx context.Context, url string) (int, error) {
	rawHTML, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		a.events.RecordError(err, "fetching url", map[string]any{"url": url})
		return 0, err
	}

	text := ExtractText(rawHTML)
	if strings.TrimSpace(text) == "" {
		err := fmt.Errorf("no text content at %s", url)
		a.events.RecordError(err, "extracting text", map[string]any{"url": url})
		return 0, err
	}

	chunks := SplitChunks(text, a.chunkSize, a.chunkOverlap)
	n, err := a.index.Add(ctx, url, chunks)
	if err != nil {
		a.events.RecordError(err, "indexing url", map[string]any{"url": url})
		return 0, err
	}

	a.events.Record("url_indexed", url, map[string]any{
		"chunks":      n,
		"text_length": len(text),
		"title":       ExtractTitle(rawHTML),
	})
	return n, nil
}

// Answer retrieves the most relevant chunks and asks the model.
func (a *Assistant) Answer(ctx context.Context, question string) (string, error) {
	session, err := a.prepare(ctx, question)
	if err != nil {
		return "", err
	}

	resp, err := session.Send(ctx, question)
	if err != nil {
		a.events.RecordError(err, "rag answer failed", nil)
		return "", err
	}
	return resp.Content, nil
}

// AnswerStream is Answer with incremental delivery.
func (a *Assistant) AnswerStream(ctx context.Context, question string, onChunk func(content string)) (string, error) {
	session, err := a.prepare(ctx, question)
	if err != nil {
		return "", err
	}

	resp, err := session.SendStream(ctx, question, func(chunk llm.StreamChunk) {
		if onChunk != nil && chunk.Content != "" {
			onChunk(chunk.Content)
		}
	})
	if err != nil {
		a.events.RecordError(err, "rag answer failed", nil)
		return "", err
	}
	return resp.Content, nil
}

// Indexed reports how many chunks are searchable.
func (a *Assistant) Indexed() int {
	return a.index.Len()
}

// Sources lists the indexed URLs.
func (a *Assistant) Sources() []string {
	return a.index.Sources()
}

// prepare runs retrieval for the question and returns a one-shot
// session primed with the retrieved context.
func (a *Assistant) prepare(ctx context.Context, question string) (*llm.Session, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("rag: empty question")
	}
	if a.index.Len() == 0 {
		return nil, errors.New("rag: no pages indexed")
	}

	matches, err := a.index.Search(ctx, question, a.topK)
	if err != nil {
		a.events.RecordError(err, "retrieval failed", nil)
		return nil, err
	}

	a.events.Record("rag_question", "User asked: "+question, map[string]any{
		"matches": len(matches),
	})

	var b strings.Builder
	b.WriteString("Context passages:\n\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "[%d] (source: %s)\n%s\n\n", i+1, m.Source, m.Text)
	}

	session := llm.NewSession(a.provider, a.model, assistantSystemPrompt, b.String())
	return session, nil
}
