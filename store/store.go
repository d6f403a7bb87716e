package store

import "time"

// Bundle holds the stores behind a wizard deployment: chat transcripts
// and saved code analyses share one backend and one lifetime.
type Bundle struct {
	Chats    ChatStore
	Analyses AnalysisStore
	closer   func() error
}

// Close cleans up the bundle resources
func (b *Bundle) Close() error {
	if b.closer != nil {
		return b.closer()
	}
	return nil
}

// ChatStore persists conversation turns keyed by session.
type ChatStore interface {
	SaveMessage(msg ChatMessage) error
	GetMessages(sessionID string) ([]ChatMessage, error)
	ClearSession(sessionID string) error
	ListSessions() ([]SessionInfo, error)
}

// ChatMessage is one stored conversation turn.
type ChatMessage struct {
	ID        int       `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionInfo summarizes one stored session.
type SessionInfo struct {
	SessionID    string    `json:"sessionId"`
	MessageCount int       `json:"messageCount"`
	LastActivity time.Time `json:"lastActivity"`
}

// AnalysisStore persists code submissions and their analyses.
type AnalysisStore interface {
	SaveAnalysis(a Analysis) error
	GetAnalysesBySession(sessionID string) ([]Analysis, error)
}

// Analysis is one stored code analysis.
type Analysis struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	UserName  string    `json:"userName"`
	Code      string    `json:"code"`
	Analysis  string    `json:"analysis"`
	CreatedAt time.Time `json:"createdAt"`
}
