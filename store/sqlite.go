package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id);

CREATE TABLE IF NOT EXISTS analyses (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    user_name TEXT,
    code TEXT NOT NULL,
    analysis TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_analyses_session ON analyses(session_id);
`

// NewSQLiteBundle creates a Bundle backed by SQLite at the given path
func NewSQLiteBundle(dbPath string) (*Bundle, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Bundle{
		Chats:    &SQLiteChatStore{db: db},
		Analyses: &SQLiteAnalysisStore{db: db},
		closer:   db.Close,
	}, nil
}

// =============================================================================
// SQLiteChatStore
// =============================================================================

type SQLiteChatStore struct {
	db *sql.DB
}

func (s *SQLiteChatStore) SaveMessage(msg ChatMessage) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO chat_messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		msg.SessionID, msg.Role, msg.Content, createdAt,
	)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

func (s *SQLiteChatStore) GetMessages(sessionID string) ([]ChatMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, role, content, created_at FROM chat_messages WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *SQLiteChatStore) ClearSession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM chat_messages WHERE session_id = ?`, sessionID)
	return err
}

func (s *SQLiteChatStore) ListSessions() ([]SessionInfo, error) {
	rows, err := s.db.Query(
		`SELECT session_id, COUNT(*), MAX(created_at) FROM chat_messages GROUP BY session_id ORDER BY MAX(created_at) DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.SessionID, &info.MessageCount, &info.LastActivity); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// =============================================================================
// SQLiteAnalysisStore
// =============================================================================

type SQLiteAnalysisStore struct {
	db *sql.DB
}

func (s *SQLiteAnalysisStore) SaveAnalysis(a Analysis) error {
	if a.ID == "" {
		a.ID = generateID()
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO analyses (id, session_id, user_name, code, analysis, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.SessionID, a.UserName, a.Code, a.Analysis, createdAt,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (s *SQLiteAnalysisStore) GetAnalysesBySession(sessionID string) ([]Analysis, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, user_name, code, analysis, created_at FROM analyses WHERE session_id = ? ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []Analysis
	for rows.Next() {
		var a Analysis
		var userName sql.NullString
		if err := rows.Scan(&a.ID, &a.SessionID, &userName, &a.Code, &a.Analysis, &a.CreatedAt); err != nil {
			return nil, err
		}
		if userName.Valid {
			a.UserName = userName.String
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}
