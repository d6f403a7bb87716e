package config

import "fmt"

// ScraperConfig controls URL fetching and retrieval indexing.
type ScraperConfig struct {
	UserAgent      string `hcl:"user_agent,optional"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
	Render         bool   `hcl:"render,optional"` // use a headless browser for JS-heavy pages
	ChunkSize      int    `hcl:"chunk_size,optional"`
	ChunkOverlap   int    `hcl:"chunk_overlap,optional"`
	TopK           int    `hcl:"top_k,optional"` // retrieved passages per question
	EmbeddingModel string `hcl:"embedding_model,optional"`
}

// Defaults fills in default values for unset fields
func (s *ScraperConfig) Defaults() {
	if s.UserAgent == "" {
		s.UserAgent = "CodeWizard/1.0"
	}
	if s.TimeoutSeconds == 0 {
		s.TimeoutSeconds = 30
	}
	if s.ChunkSize == 0 {
		s.ChunkSize = 1200
	}
	if s.ChunkOverlap == 0 {
		s.ChunkOverlap = 200
	}
	if s.TopK == 0 {
		s.TopK = 4
	}
	if s.EmbeddingModel == "" {
		s.EmbeddingModel = "text-embedding-3-small"
	}
}

func (s *ScraperConfig) Validate() error {
	if s.ChunkOverlap < 0 || s.ChunkSize < 0 {
		return fmt.Errorf("chunk sizes must be non-negative")
	}
	if s.ChunkSize > 0 && s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", s.ChunkOverlap, s.ChunkSize)
	}
	return nil
}
