// Package chat provides the assistant's input surfaces: the HTTP
// gateway the widget talks to, and the microphone/file sources for
// local listener modes.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"stephbot/internal/application"
)

// Conversation is the orchestrator surface the gateway exposes.
type Conversation interface {
	HandleTurn(ctx context.Context, sessionID, message string) (string, error)
	Welcome() string
	AcceptFeedback(ctx context.Context, sessionID, text string) string
	Transcript(sessionID string) ([]string, bool)
}

type Gateway struct {
	addr      string
	authToken string
	conv      Conversation
	stt       application.SpeechToText
	logger    *slog.Logger

	mux     *http.ServeMux
	limiter *RateLimiter

	mu      sync.Mutex
	server  *http.Server
	running bool
}

func NewGateway(addr, authToken string, conv Conversation, stt application.SpeechToText, logger *slog.Logger) *Gateway {
	g := &Gateway{
		addr:      addr,
		authToken: authToken,
		conv:      conv,
		stt:       stt,
		logger:    logger,
		mux:       http.NewServeMux(),
		limiter:   NewRateLimiter(30, time.Minute), // 30 turns per minute per IP
	}
	g.mux.HandleFunc("POST /chat", g.limiter.Middleware(g.withAuth(g.handleChat)))
	g.mux.HandleFunc("POST /voice", g.limiter.Middleware(g.withAuth(g.handleVoice)))
	g.mux.HandleFunc("POST /feedback", g.limiter.Middleware(g.handleFeedback))
	g.mux.HandleFunc("GET /welcome", g.handleWelcome)
	g.mux.HandleFunc("GET /transcript", g.handleTranscript)
	// No rate limiting on the health check.
	g.mux.HandleFunc("GET /health", g.handleHealth)
	return g
}

func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return nil
	}

	g.server = &http.Server{
		Addr:         g.addr,
		Handler:      g.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		g.logger.Info("chat gateway starting", "addr", g.addr)
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.logger.Error("chat gateway error", "error", err)
		}
	}()

	g.running = true
	return nil
}

func (g *Gateway) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := g.server.Shutdown(ctx); err != nil {
		g.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := g.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}
	g.running = false
	return nil
}

// Handler exposes the mux for tests.
func (g *Gateway) Handler() http.Handler {
	return g.mux
}

func (g *Gateway) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token != g.authToken {
				g.logger.Warn("unauthorized request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next(w, r)
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply      string `json:"reply"`
	Transcript string `json:"transcript,omitempty"`
}

func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := g.conv.HandleTurn(r.Context(), req.SessionID, req.Message)
	switch {
	case errors.Is(err, application.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "empty message")
		return
	case err != nil:
		g.logger.Error("handling chat turn", "error", err)
		writeError(w, http.StatusInternalServerError, "turn aborted")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (g *Gateway) handleVoice(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(io.LimitReader(r.Body, 10*1024*1024))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "empty audio")
		return
	}

	text, err := g.stt.Transcribe(r.Context(), audio)
	if err != nil {
		g.logger.Error("transcribing voice input", "error", err)
		writeError(w, http.StatusServiceUnavailable, "transcription unavailable")
		return
	}
	g.logger.Info("voice input transcribed", "text", text)

	reply, err := g.conv.HandleTurn(r.Context(), r.URL.Query().Get("session_id"), text)
	switch {
	case errors.Is(err, application.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "nothing recognized")
		return
	case err != nil:
		g.logger.Error("handling voice turn", "error", err)
		writeError(w, http.StatusInternalServerError, "turn aborted")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Transcript: text})
}

type feedbackRequest struct {
	SessionID string `json:"session_id"`
	Feedback  string `json:"feedback"`
}

func (g *Gateway) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply := g.conv.AcceptFeedback(r.Context(), req.SessionID, req.Feedback)
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (g *Gateway) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chatResponse{Reply: g.conv.Welcome()})
}

func (g *Gateway) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	lines, ok := g.conv.Transcript(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	running := g.running
	g.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK
	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":%q,"running":%t}`, status, running)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
