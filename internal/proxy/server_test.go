package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stephbot/internal/infra/elevenlabs"
)

type stubSynth struct {
	audio   []byte
	err     error
	lastReq elevenlabs.SpeechRequest
}

func (s *stubSynth) Synthesize(_ context.Context, req elevenlabs.SpeechRequest) ([]byte, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func speak(t *testing.T, srv *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/speak", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Speak(t *testing.T) {
	synth := &stubSynth{audio: []byte("mp3-bytes-here")}
	srv := NewServer(":0", synth, testLogger())

	rec := speak(t, srv, speakRequest{
		Text:    "Hello there",
		VoiceID: "voice-1",
		ModelID: "eleven_monolingual_v1",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "14" {
		t.Errorf("Content-Length = %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("mp3-bytes-here")) {
		t.Errorf("body = %q", rec.Body.Bytes())
	}
	if synth.lastReq.Text != "Hello there" || synth.lastReq.VoiceID != "voice-1" {
		t.Errorf("synthesizer got %+v", synth.lastReq)
	}
}

func TestServer_SpeakNoCredential(t *testing.T) {
	srv := NewServer(":0", nil, testLogger())

	rec := speak(t, srv, speakRequest{Text: "hi", VoiceID: "voice-1"})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	want := `{"error":"Server configuration error: API key missing."}`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("body = %q, want %q", strings.TrimSpace(rec.Body.String()), want)
	}
}

func TestServer_SpeakMissingVoiceID(t *testing.T) {
	srv := NewServer(":0", &stubSynth{}, testLogger())

	rec := speak(t, srv, speakRequest{Text: "hi"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	want := `{"error":"Missing voiceId in request."}`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("body = %q, want %q", strings.TrimSpace(rec.Body.String()), want)
	}
}

func TestServer_SpeakProviderError(t *testing.T) {
	synth := &stubSynth{err: &elevenlabs.ProviderError{StatusCode: http.StatusUnauthorized, Body: `{"detail":"bad key"}`}}
	srv := NewServer(":0", synth, testLogger())

	rec := speak(t, srv, speakRequest{Text: "hi", VoiceID: "voice-1"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want provider status forwarded", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if want := `ElevenLabs API error: {"detail":"bad key"}`; resp["error"] != want {
		t.Errorf("error = %q, want %q", resp["error"], want)
	}
}

func TestServer_SpeakEmptyAudio(t *testing.T) {
	synth := &stubSynth{err: fmt.Errorf("synthesizing: %w", elevenlabs.ErrEmptyAudio)}
	srv := NewServer(":0", synth, testLogger())

	rec := speak(t, srv, speakRequest{Text: "hi", VoiceID: "voice-1"})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	want := `{"error":"ElevenLabs returned empty audio data."}`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("body = %q, want %q", strings.TrimSpace(rec.Body.String()), want)
	}
}

func TestServer_SpeakTransportError(t *testing.T) {
	synth := &stubSynth{err: fmt.Errorf("dial tcp: connection refused")}
	srv := NewServer(":0", synth, testLogger())

	rec := speak(t, srv, speakRequest{Text: "hi", VoiceID: "voice-1"})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to reach speech provider.") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestServer_SpeakMethodNotAllowed(t *testing.T) {
	srv := NewServer(":0", &stubSynth{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/speak", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := NewServer(":0", &stubSynth{audio: []byte("x")}, testLogger())
	speak(t, srv, speakRequest{Text: "hi", VoiceID: "voice-1"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "speak_requests_total") {
		t.Errorf("metrics output missing request counter:\n%s", rec.Body.String())
	}
}
