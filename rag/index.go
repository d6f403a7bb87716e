package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Document is one indexed chunk with its source and vector.
type Document struct {
	ID     int
	Source string
	Text   string
	vector []float64
}

// Match is a search hit with its similarity score.
type Match struct {
	Document
	Score float64
}

// Index is an in-memory vector index over text chunks. Safe for
// concurrent use.
type Index struct {
	embedder Embedder

	mu   sync.RWMutex
	docs []Document
}

func NewIndex(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

// Add embeds the chunks and stores them under the given source.
func (x *Index) Add(ctx context.Context, source string, chunks []string) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := x.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for i, chunk := range chunks {
		x.docs = append(x.docs, Document{
			ID:     len(x.docs),
			Source: source,
			Text:   chunk,
			vector: vectors[i],
		})
	}
	return len(chunks), nil
}

// Search returns the top-k chunks most similar to the query.
func (x *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 {
		k = 4
	}

	vectors, err := x.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("search: expected one query vector, got %d", len(vectors))
	}
	queryVec := vectors[0]

	x.mu.RLock()
	matches := make([]Match, 0, len(x.docs))
	for _, doc := range x.docs {
		matches = append(matches, Match{
			Document: doc,
			Score:    cosineSimilarity(queryVec, doc.vector),
		})
	}
	x.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Len reports how many chunks are indexed.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// Sources lists the distinct sources in insertion order.
func (x *Index) Sources() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	seen := make(map[string]bool)
	var sources []string
	for _, doc := range x.docs {
		if !seen[doc.Source] {
			seen[doc.Source] = true
			sources = append(sources, doc.Source)
		}
	}
	return sources
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
