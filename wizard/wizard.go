package wizard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"codewizard/llm"
	"codewizard/store"
)

// EventRecorder receives the structured events a wizard session produces.
// *eventlog.Logger satisfies it.
type EventRecorder interface {
	Record(eventType, content string, metadata map[string]any)
	RecordUserAction(actionType, userID, sessionID string, details map[string]any)
	RecordError(err error, context string, metadata map[string]any)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string, map[string]any)                   {}
func (nopRecorder) RecordUserAction(string, string, string, map[string]any) {}
func (nopRecorder) RecordError(error, string, map[string]any)               {}

// Options configures a wizard session.
type Options struct {
	Provider    llm.Provider
	Model       string
	Temperature float64
	MaxTokens   int
	UserName    string
	Events      EventRecorder
	Store       *store.Bundle // optional persistence for analyses and chat turns
}

// Stats summarizes a session's activity.
type Stats struct {
	SessionID      string
	UserName       string
	StartedAt      time.Time
	QuestionsAsked int
	CodeAnalyses   int
	Messages       int
}

// Wizard drives one user's code-analysis conversation: a code submission,
// an initial analysis, and follow-up questions answered either against
// the submitted code or as general programming questions.
type Wizard struct {
	session     *llm.Session
	events      EventRecorder
	db          *store.Bundle
	sessionID   string
	userName    string
	code        string
	codeContext bool
	startedAt   time.Time
	questions   int
	analyses    int
}

var ErrNoProvider = errors.New("wizard: no provider configured")

// New starts a session and records the login. The returned wizard
// answers code-scoped questions by default.
func New(opts Options) (*Wizard, error) {
	if opts.Provider == nil {
		return nil, ErrNoProvider
	}
	if opts.Events == nil {
		opts.Events = nopRecorder{}
	}

	session := llm.NewSession(opts.Provider, opts.Model, systemPrompt)
	if opts.Temperature > 0 {
		session.SetTemperature(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		session.SetMaxTokens(opts.MaxTokens)
	}

	w := &Wizard{
		session:     session,
		events:      opts.Events,
		db:          opts.Store,
		sessionID:   uuid.New().String(),
		userName:    opts.UserName,
		codeContext: true,
		startedAt:   time.Now(),
	}

	w.events.RecordUserAction("login", w.userName, w.sessionID, map[string]any{
		"name_length": len(w.userName),
	})

	return w, nil
}

// SessionID returns the unique identifier for this session.
func (w *Wizard) SessionID() string {
	return w.sessionID
}

// EnableDebug logs every prompt and response to a file.
func (w *Wizard) EnableDebug(filename string) error {
	return w.session.EnableDebug(filename)
}

// Close releases session resources.
func (w *Wizard) Close() {
	w.session.Close()
}

// SetCodeContext toggles between code-scoped and general questions.
func (w *Wizard) SetCodeContext(enabled bool) {
	w.codeContext = enabled
}

// AnalyzeCode submits code and returns the initial analysis. The code
// becomes the context for subsequent questions.
func (w *Wizard) AnalyzeCode(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", errors.New("wizard: no code to analyze")
	}

	w.events.Record("code_analysis", "Initial code analysis requested", map[string]any{
		"session_id":  w.sessionID,
		"code_length": len(code),
	})

	resp, err := w.session.Send(ctx, analysisPrompt(code))
	if err != nil {
		w.events.RecordError(err, "code analysis failed", map[string]any{"session_id": w.sessionID})
		return "", err
	}

	w.code = code
	w.analyses++
	w.saveAnalysis(code, resp.Content)

	return resp.Content, nil
}

// Ask answers a follow-up question in one shot.
func (w *Wizard) Ask(ctx context.Context, question string) (string, error) {
	prompt, err := w.prepareQuestion(question)
	if err != nil {
		return "", err
	}

	resp, err := w.session.Send(ctx, prompt)
	if err != nil {
		w.events.RecordError(err, "question failed", map[string]any{"session_id": w.sessionID})
		return "", err
	}

	w.questions++
	w.saveTurn(question, resp.Content)

	return resp.Content, nil
}

// AskStream answers a follow-up question, delivering the answer
// incrementally through onChunk before returning the full text.
func (w *Wizard) AskStream(ctx context.Context, question string, onChunk func(content string)) (string, error) {
	prompt, err := w.prepareQuestion(question)
	if err != nil {
		return "", err
	}

	resp, err := w.session.SendStream(ctx, prompt, func(chunk llm.StreamChunk) {
		if onChunk != nil && chunk.Content != "" {
			onChunk(chunk.Content)
		}
	})
	if err != nil {
		w.events.RecordError(err, "question failed", map[string]any{"session_id": w.sessionID})
		return "", err
	}

	w.questions++
	w.saveTurn(question, resp.Content)

	return resp.Content, nil
}

func (w *Wizard) prepareQuestion(question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("wizard: empty question")
	}

	w.events.Record("question", "User asked: "+question, map[string]any{
		"session_id":   w.sessionID,
		"code_context": w.codeContext && w.code != "",
	})

	if w.codeContext && w.code != "" {
		return followUpPrompt(w.code, question), nil
	}
	return question, nil
}

// ClearChat drops the conversation and the submitted code. Counters and
// the session identity survive, matching what a returning user expects.
func (w *Wizard) ClearChat() {
	dropped := w.session.Clear()
	w.code = ""
	w.events.RecordUserAction("clear_chat", w.userName, w.sessionID, map[string]any{
		"messages_dropped": dropped,
	})
}

// Stats reports session counters for display.
func (w *Wizard) Stats() Stats {
	return Stats{
		SessionID:      w.sessionID,
		UserName:       w.userName,
		StartedAt:      w.startedAt,
		QuestionsAsked: w.questions,
		CodeAnalyses:   w.analyses,
		Messages:       len(w.session.GetHistory()),
	}
}

// History exposes the conversation so far.
func (w *Wizard) History() []llm.Message {
	return w.session.GetHistory()
}

// saveAnalysis persists an analysis if a store is configured. Storage
// failures are logged, never surfaced: persistence is best-effort.
func (w *Wizard) saveAnalysis(code, analysis string) {
	if w.db == nil {
		return
	}
	if err := w.db.Analyses.SaveAnalysis(store.Analysis{
		SessionID: w.sessionID,
		UserName:  w.userName,
		Code:      code,
		Analysis:  analysis,
		CreatedAt: time.Now(),
	}); err != nil {
		w.events.RecordError(err, "saving analysis", map[string]any{"session_id": w.sessionID})
	}
}

func (w *Wizard) saveTurn(question, answer string) {
	if w.db == nil {
		return
	}
	now := time.Now()
	if err := w.db.Chats.SaveMessage(store.ChatMessage{
		SessionID: w.sessionID,
		Role:      string(llm.RoleUser),
		Content:   question,
		CreatedAt: now,
	}); err != nil {
		w.events.RecordError(err, "saving chat turn", map[string]any{"session_id": w.sessionID})
		return
	}
	if err := w.db.Chats.SaveMessage(store.ChatMessage{
		SessionID: w.sessionID,
		Role:      string(llm.RoleAssistant),
		Content:   answer,
		CreatedAt: now,
	}); err != nil {
		w.events.RecordError(err, "saving chat turn", map[string]any{"session_id": w.sessionID})
	}
}
