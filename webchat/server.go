package webchat

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"codewizard/llm"
	"codewizard/store"
	"codewizard/wizard"
)

// Options configures the web chat server. Provider, model and sampling
// settings are shared by every connection; each connection gets its own
// wizard session.
type Options struct {
	Provider    llm.Provider
	Model       string
	Temperature float64
	MaxTokens   int
	Events      wizard.EventRecorder
	Store       *store.Bundle
	Logger      hclog.Logger
}

// Server upgrades HTTP connections to WebSocket chat sessions.
type Server struct {
	opts     Options
	log      hclog.Logger
	upgrader websocket.Upgrader
}

func NewServer(opts Options) (*Server, error) {
	if opts.Provider == nil {
		return nil, wizard.ErrNoProvider
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Server{
		opts: opts,
		log:  log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Handler returns the HTTP routes: /ws for chat, /healthz for probes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe blocks serving chat connections until the context is
// cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("web chat listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err)
		return
	}

	c := newConn(s, ws)
	s.log.Debug("connection opened", "remote", r.RemoteAddr)

	go c.writePump()
	c.readPump()

	s.log.Debug("connection closed", "remote", r.RemoteAddr)
}
