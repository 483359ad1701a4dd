package chat

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
	"time"

	"stephbot/internal/application"
)

type stubConversation struct {
	reply       string
	err         error
	lastSession string
	lastMessage string
}

func (s *stubConversation) HandleTurn(_ context.Context, sessionID, message string) (string, error) {
	s.lastSession = sessionID
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubConversation) Welcome() string {
	return "welcome text"
}

func (s *stubConversation) AcceptFeedback(_ context.Context, sessionID, text string) string {
	s.lastSession = sessionID
	s.lastMessage = text
	return "thanks"
}

func (s *stubConversation) Transcript(sessionID string) ([]string, bool) {
	if sessionID == "known" {
		return []string{"You: hello", "StephBot: hi"}, true
	}
	return nil, false
}

type stubSTT struct {
	text string
	err  error
}

func (s *stubSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGateway_Chat(t *testing.T) {
	conv := &stubConversation{reply: "here is an answer"}
	g := NewGateway(":0", "", conv, &stubSTT{}, testLogger())

	rec := postJSON(t, g.Handler(), "/chat", chatRequest{SessionID: "s1", Message: "hello"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Reply != "here is an answer" {
		t.Errorf("reply = %q", resp.Reply)
	}
	if conv.lastSession != "s1" || conv.lastMessage != "hello" {
		t.Errorf("conversation got session %q message %q", conv.lastSession, conv.lastMessage)
	}
}

func TestGateway_ChatEmptyMessage(t *testing.T) {
	conv := &stubConversation{err: application.ErrEmptyInput}
	g := NewGateway(":0", "", conv, &stubSTT{}, testLogger())

	rec := postJSON(t, g.Handler(), "/chat", chatRequest{Message: "   "})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "empty message") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGateway_ChatInvalidBody(t *testing.T) {
	g := NewGateway(":0", "", &stubConversation{}, &stubSTT{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGateway_AuthToken(t *testing.T) {
	conv := &stubConversation{reply: "ok"}
	g := NewGateway(":0", "secret", conv, &stubSTT{}, testLogger())

	rec := postJSON(t, g.Handler(), "/chat", chatRequest{Message: "hello"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d, want 401", rec.Code)
	}

	data, _ := json.Marshal(chatRequest{Message: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(data))
	req.Header.Set("X-Auth-Token", "secret")
	rec = httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with header token: status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/chat?token=secret", bytes.NewReader(data))
	rec = httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with query token: status = %d, want 200", rec.Code)
	}
}

func TestGateway_Voice(t *testing.T) {
	conv := &stubConversation{reply: "spoken reply"}
	stt := &stubSTT{text: "what is ai"}
	g := NewGateway(":0", "", conv, stt, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/voice?session_id=v1", bytes.NewReader([]byte("fake-wav-bytes")))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Reply != "spoken reply" {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.Transcript != "what is ai" {
		t.Errorf("transcript = %q", resp.Transcript)
	}
	if conv.lastSession != "v1" {
		t.Errorf("session = %q", conv.lastSession)
	}
}

func TestGateway_VoiceTranscriptionFailure(t *testing.T) {
	stt := &stubSTT{err: fmt.Errorf("whisper down")}
	g := NewGateway(":0", "", &stubConversation{}, stt, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/voice", bytes.NewReader([]byte("audio")))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestGateway_Feedback(t *testing.T) {
	conv := &stubConversation{}
	g := NewGateway(":0", "", conv, &stubSTT{}, testLogger())

	rec := postJSON(t, g.Handler(), "/feedback", feedbackRequest{SessionID: "s1", Feedback: "love it"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if conv.lastMessage != "love it" {
		t.Errorf("feedback passed = %q", conv.lastMessage)
	}
}

func TestGateway_Welcome(t *testing.T) {
	g := NewGateway(":0", "", &stubConversation{}, &stubSTT{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/welcome", nil)
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "welcome text") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGateway_Transcript(t *testing.T) {
	g := NewGateway(":0", "", &stubConversation{}, &stubSTT{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/transcript?session_id=known", nil)
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := "You: hello\nStephBot: hi\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}

	req = httptest.NewRequest(http.MethodGet, "/transcript?session_id=missing", nil)
	rec = httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: status = %d, want 404", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request should pass")
	}
	if !rl.Allow("1.2.3.4") {
		t.Fatal("second request should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other client should not be affected")
	}
}

func TestClientIP_ForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	if got := clientIP(req); got != "9.9.9.9" {
		t.Errorf("clientIP = %q, want first hop", got)
	}
}
