// Package proxy serves text-to-speech requests on behalf of the chat
// client. It is the only process holding provider credentials; clients
// send text and receive MP3 audio.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stephbot/internal/infra/elevenlabs"
)

// Synthesizer produces audio for a speech request.
type Synthesizer interface {
	Synthesize(ctx context.Context, req elevenlabs.SpeechRequest) ([]byte, error)
}

// Server accepts speech requests on /speak and forwards them to the
// provider. A nil synthesizer means the provider credential is not
// configured; requests then fail with a configuration error.
type Server struct {
	addr   string
	synth  Synthesizer
	logger *slog.Logger
	router chi.Router

	requests *prometheus.CounterVec
	duration prometheus.Histogram

	mu      sync.Mutex
	server  *http.Server
	running bool
}

func NewServer(addr string, synth Synthesizer, logger *slog.Logger) *Server {
	s := &Server{
		addr:   addr,
		synth:  synth,
		logger: logger,
	}

	// Per-server registry so repeated construction never collides.
	registry := prometheus.NewRegistry()
	s.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speak_requests_total",
			Help: "Speech synthesis requests by outcome.",
		},
		[]string{"outcome"},
	)
	s.duration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "speak_duration_seconds",
			Help:    "Time spent synthesizing speech.",
			Buckets: prometheus.DefBuckets,
		},
	)
	registry.MustRegister(s.requests, s.duration)

	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
	r.Post("/speak", s.handleSpeak)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.router = r

	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("speech proxy starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("speech proxy error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}
	s.running = false
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

type speakRequest struct {
	Text          string                    `json:"text"`
	VoiceID       string                    `json:"voiceId"`
	ModelID       string                    `json:"model_id"`
	VoiceSettings *elevenlabs.VoiceSettings `json:"voice_settings"`
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.synth == nil {
		s.logger.Error("speech request refused: no provider credential configured")
		s.requests.WithLabelValues("config_error").Inc()
		writeJSONError(w, http.StatusInternalServerError, "Server configuration error: API key missing.")
		return
	}

	var req speakRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil {
		s.requests.WithLabelValues("bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.VoiceID == "" {
		s.requests.WithLabelValues("bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, "Missing voiceId in request.")
		return
	}

	audio, err := s.synth.Synthesize(r.Context(), elevenlabs.SpeechRequest{
		Text:          req.Text,
		VoiceID:       req.VoiceID,
		ModelID:       req.ModelID,
		VoiceSettings: req.VoiceSettings,
	})
	if err != nil {
		var provErr *elevenlabs.ProviderError
		switch {
		case errors.As(err, &provErr):
			s.logger.Error("provider rejected speech request", "status", provErr.StatusCode, "body", provErr.Body)
			s.requests.WithLabelValues("provider_error").Inc()
			writeJSONError(w, provErr.StatusCode, fmt.Sprintf("ElevenLabs API error: %s", provErr.Body))
		case errors.Is(err, elevenlabs.ErrEmptyAudio):
			s.logger.Error("provider returned no audio")
			s.requests.WithLabelValues("empty_audio").Inc()
			writeJSONError(w, http.StatusInternalServerError, "ElevenLabs returned empty audio data.")
		default:
			s.logger.Error("synthesizing speech", "error", err)
			s.requests.WithLabelValues("transport_error").Inc()
			writeJSONError(w, http.StatusInternalServerError, "Failed to reach speech provider.")
		}
		return
	}

	s.requests.WithLabelValues("ok").Inc()
	s.duration.Observe(time.Since(start).Seconds())
	s.logger.Info("speech synthesized", "voice_id", req.VoiceID, "bytes", len(audio), "duration", time.Since(start))

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	configured := s.synth != nil

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","running":%t,"provider_configured":%t}`, running, configured)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
