package webchat

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MessageType identifies the kind of envelope on the wire.
type MessageType string

const (
	// Client → server requests
	TypeLogin   MessageType = "login"
	TypeAnalyze MessageType = "analyze"
	TypeAsk     MessageType = "ask"
	TypeClear   MessageType = "clear"
	TypeStats   MessageType = "stats"

	// Server → client responses and events
	TypeLoginAck    MessageType = "login_ack"
	TypeChunk       MessageType = "chunk"
	TypeAnswer      MessageType = "answer"
	TypeClearAck    MessageType = "clear_ack"
	TypeStatsResult MessageType = "stats_result"
	TypeError       MessageType = "error"
)

// Envelope is the framing for every WebSocket message. Responses carry
// the request_id of the request they answer; chunk events carry it too
// so interleaved answers stay attributable.
type Envelope struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewRequest builds a client request with a fresh request ID.
func NewRequest(t MessageType, payload any) (*Envelope, error) {
	return newEnvelope(t, uuid.New().String(), payload)
}

// NewResponse builds a response tied to the originating request.
func NewResponse(requestID string, t MessageType, payload any) (*Envelope, error) {
	return newEnvelope(t, requestID, payload)
}

// NewError builds an error response tied to the originating request.
func NewError(requestID, code, message string) (*Envelope, error) {
	return newEnvelope(TypeError, requestID, &ErrorPayload{Code: code, Message: message})
}

func newEnvelope(t MessageType, requestID string, payload any) (*Envelope, error) {
	env := &Envelope{Type: t, RequestID: requestID}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", t, err)
		}
		env.Payload = data
	}
	return env, nil
}

// DecodePayload unmarshals an envelope's payload into v.
func DecodePayload(env *Envelope, v any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%s: empty payload", env.Type)
	}
	return json.Unmarshal(env.Payload, v)
}

// LoginPayload starts a session for a named user.
type LoginPayload struct {
	Name string `json:"name"`
}

// LoginAckPayload confirms the session and reports the serving model.
type LoginAckPayload struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
}

// AnalyzePayload submits code for the initial analysis.
type AnalyzePayload struct {
	Code string `json:"code"`
}

// AskPayload asks a follow-up question. CodeContext selects between
// code-scoped and general answers.
type AskPayload struct {
	Question    string `json:"question"`
	CodeContext *bool  `json:"code_context,omitempty"`
}

// ChunkPayload is one streamed fragment of an in-progress answer.
type ChunkPayload struct {
	Content string `json:"content"`
}

// AnswerPayload is the complete answer to an analyze or ask request.
type AnswerPayload struct {
	Content string `json:"content"`
}

// ClearAckPayload confirms the conversation was dropped.
type ClearAckPayload struct {
	MessagesDropped int `json:"messages_dropped"`
}

// StatsResultPayload reports session counters.
type StatsResultPayload struct {
	SessionID      string `json:"session_id"`
	UserName       string `json:"user_name"`
	QuestionsAsked int    `json:"questions_asked"`
	CodeAnalyses   int    `json:"code_analyses"`
	Messages       int    `json:"messages"`
}

// ErrorPayload describes a failed request.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
