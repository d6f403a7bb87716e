package webchat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codewizard/wizard"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// conn is one WebSocket chat connection. Model calls run in a single
// background worker so the read pump keeps servicing pings while an
// answer streams.
type conn struct {
	srv  *Server
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}

	mu   sync.Mutex
	wiz  *wizard.Wizard
	busy bool
}

func newConn(srv *Server, ws *websocket.Conn) *conn {
	return &conn{
		srv:  srv,
		ws:   ws,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
}

func (c *conn) readPump() {
	defer func() {
		close(c.done)
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.srv.log.Warn("websocket read error", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.srv.log.Warn("invalid message from client", "error", err)
			c.sendError("", "bad_envelope", "message is not a valid envelope")
			continue
		}

		c.dispatch(&env)
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *conn) dispatch(env *Envelope) {
	switch env.Type {
	case TypeLogin:
		c.handleLogin(env)
	case TypeAnalyze:
		c.handleAnalyze(env)
	case TypeAsk:
		c.handleAsk(env)
	case TypeClear:
		c.handleClear(env)
	case TypeStats:
		c.handleStats(env)
	default:
		c.srv.log.Warn("unhandled message type", "type", env.Type)
		c.sendError(env.RequestID, "unknown_type", "unknown message type "+string(env.Type))
	}
}

func (c *conn) handleLogin(env *Envelope) {
	var payload LoginPayload
	if err := DecodePayload(env, &payload); err != nil {
		c.sendError(env.RequestID, "bad_payload", err.Error())
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		c.sendError(env.RequestID, "bad_payload", "name is required")
		return
	}

	c.mu.Lock()
	if c.wiz != nil {
		c.mu.Unlock()
		c.sendError(env.RequestID, "already_logged_in", "session already started")
		return
	}
	w, err := wizard.New(wizard.Options{
		Provider:    c.srv.opts.Provider,
		Model:       c.srv.opts.Model,
		Temperature: c.srv.opts.Temperature,
		MaxTokens:   c.srv.opts.MaxTokens,
		UserName:    strings.TrimSpace(payload.Name),
		Events:      c.srv.opts.Events,
		Store:       c.srv.opts.Store,
	})
	if err != nil {
		c.mu.Unlock()
		c.sendError(env.RequestID, "session_failed", err.Error())
		return
	}
	c.wiz = w
	c.mu.Unlock()

	c.srv.log.Info("session started", "session_id", w.SessionID(), "user", payload.Name)
	c.respond(env.RequestID, TypeLoginAck, &LoginAckPayload{
		SessionID: w.SessionID(),
		Model:     c.srv.opts.Model,
	})
}

func (c *conn) handleAnalyze(env *Envelope) {
	var payload AnalyzePayload
	if err := DecodePayload(env, &payload); err != nil {
		c.sendError(env.RequestID, "bad_payload", err.Error())
		return
	}

	w, ok := c.acquire(env.RequestID)
	if !ok {
		return
	}

	go func() {
		analysis, err := w.AnalyzeCode(context.Background(), payload.Code)
		c.release()
		if err != nil {
			c.sendError(env.RequestID, "analysis_failed", err.Error())
			return
		}
		c.respond(env.RequestID, TypeAnswer, &AnswerPayload{Content: analysis})
	}()
}

func (c *conn) handleAsk(env *Envelope) {
	var payload AskPayload
	if err := DecodePayload(env, &payload); err != nil {
		c.sendError(env.RequestID, "bad_payload", err.Error())
		return
	}

	w, ok := c.acquire(env.RequestID)
	if !ok {
		return
	}

	if payload.CodeContext != nil {
		w.SetCodeContext(*payload.CodeContext)
	}

	go func() {
		answer, err := w.AskStream(context.Background(), payload.Question, func(content string) {
			c.respond(env.RequestID, TypeChunk, &ChunkPayload{Content: content})
		})
		c.release()
		if err != nil {
			c.sendError(env.RequestID, "question_failed", err.Error())
			return
		}
		c.respond(env.RequestID, TypeAnswer, &AnswerPayload{Content: answer})
	}()
}

// handleClear and handleStats claim the model-call slot too: the
// wizard's session state is not safe to touch while an answer worker
// is streaming into it.
func (c *conn) handleClear(env *Envelope) {
	w, ok := c.acquire(env.RequestID)
	if !ok {
		return
	}
	defer c.release()

	dropped := w.Stats().Messages
	w.ClearChat()
	c.respond(env.RequestID, TypeClearAck, &ClearAckPayload{MessagesDropped: dropped})
}

func (c *conn) handleStats(env *Envelope) {
	w, ok := c.acquire(env.RequestID)
	if !ok {
		return
	}
	defer c.release()

	stats := w.Stats()
	c.respond(env.RequestID, TypeStatsResult, &StatsResultPayload{
		SessionID:      stats.SessionID,
		UserName:       stats.UserName,
		QuestionsAsked: stats.QuestionsAsked,
		CodeAnalyses:   stats.CodeAnalyses,
		Messages:       stats.Messages,
	})
}

// acquire claims the single in-flight model call slot.
func (c *conn) acquire(requestID string) (*wizard.Wizard, bool) {
	c.mu.Lock()
	w := c.wiz
	busy := c.busy
	if w != nil && !busy {
		c.busy = true
	}
	c.mu.Unlock()

	if w == nil {
		c.sendError(requestID, "not_logged_in", "log in before chatting")
		return nil, false
	}
	if busy {
		c.sendError(requestID, "busy", "an answer is already in progress")
		return nil, false
	}
	return w, true
}

func (c *conn) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *conn) respond(requestID string, t MessageType, payload any) {
	env, err := NewResponse(requestID, t, payload)
	if err != nil {
		c.srv.log.Error("marshal response", "type", t, "error", err)
		return
	}
	c.write(env)
}

func (c *conn) sendError(requestID, code, message string) {
	env, err := NewError(requestID, code, message)
	if err != nil {
		return
	}
	c.write(env)
}

func (c *conn) write(env *Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.srv.log.Error("marshal envelope", "error", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	}
}
