package store

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// NewMemoryBundle creates a Bundle backed entirely by in-memory stores
func NewMemoryBundle() *Bundle {
	return &Bundle{
		Chats:    &MemoryChatStore{messages: make(map[string][]ChatMessage)},
		Analyses: &MemoryAnalysisStore{analyses: make(map[string][]Analysis)},
	}
}

// =============================================================================
// MemoryChatStore
// =============================================================================

type MemoryChatStore struct {
	mu       sync.Mutex
	messages map[string][]ChatMessage
	nextID   int
}

func (s *MemoryChatStore) SaveMessage(msg ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg.ID = s.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return nil
}

func (s *MemoryChatStore) GetMessages(sessionID string) ([]ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[sessionID]
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryChatStore) ClearSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, sessionID)
	return nil
}

func (s *MemoryChatStore) ListSessions() ([]SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var infos []SessionInfo
	for id, msgs := range s.messages {
		if len(msgs) == 0 {
			continue
		}
		infos = append(infos, SessionInfo{
			SessionID:    id,
			MessageCount: len(msgs),
			LastActivity: msgs[len(msgs)-1].CreatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].LastActivity.After(infos[j].LastActivity)
	})
	return infos, nil
}

// =============================================================================
// MemoryAnalysisStore
// =============================================================================

type MemoryAnalysisStore struct {
	mu       sync.Mutex
	analyses map[string][]Analysis
}

func (s *MemoryAnalysisStore) SaveAnalysis(a Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = generateID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	s.analyses[a.SessionID] = append(s.analyses[a.SessionID], a)
	return nil
}

func (s *MemoryAnalysisStore) GetAnalysesBySession(sessionID string) ([]Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	analyses := s.analyses[sessionID]
	out := make([]Analysis, len(analyses))
	copy(out, analyses)
	return out, nil
}

// =============================================================================
// Helpers
// =============================================================================

func generateID() string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 12)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}
