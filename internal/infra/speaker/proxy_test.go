package speaker_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"stephbot/internal/infra/elevenlabs"
	"stephbot/internal/infra/speaker"
)

type captureSink struct {
	mu    sync.Mutex
	audio [][]byte
}

func (c *captureSink) Play(_ context.Context, audio []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audio = append(c.audio, audio)
	return nil
}

func TestProxySpeaker_Success(t *testing.T) {
	wantAudio := []byte("mp3 payload")
	var gotPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(wantAudio)
	}))
	defer server.Close()

	sink := &captureSink{}
	spk := speaker.NewProxySpeaker(server.URL, "voice-42", "", elevenlabs.DefaultVoiceSettings(), sink)

	if err := spk.Speak(context.Background(), "Hi there"); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	if gotPayload["text"] != "Hi there" {
		t.Errorf("text %v", gotPayload["text"])
	}
	if gotPayload["voiceId"] != "voice-42" {
		t.Errorf("voiceId %v", gotPayload["voiceId"])
	}
	if gotPayload["model_id"] != elevenlabs.DefaultModelID {
		t.Errorf("model_id %v", gotPayload["model_id"])
	}
	settings, _ := gotPayload["voice_settings"].(map[string]any)
	if settings["stability"] != 0.3 || settings["similarity_boost"] != 0.75 {
		t.Errorf("voice_settings %v", settings)
	}

	if len(sink.audio) != 1 || !bytes.Equal(sink.audio[0], wantAudio) {
		t.Errorf("sink received %d payloads", len(sink.audio))
	}
}

func TestProxySpeaker_ProxyErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "ElevenLabs API error: quota exceeded"})
	}))
	defer server.Close()

	sink := &captureSink{}
	spk := speaker.NewProxySpeaker(server.URL, "voice-42", "", elevenlabs.DefaultVoiceSettings(), sink)

	err := spk.Speak(context.Background(), "Hi there")
	if err == nil {
		t.Fatal("expected an error so the caller falls back")
	}
	if len(sink.audio) != 0 {
		t.Error("sink must not receive audio on failure")
	}
}

func TestProxySpeaker_EmptyAudioIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
	}))
	defer server.Close()

	spk := speaker.NewProxySpeaker(server.URL, "voice-42", "", elevenlabs.DefaultVoiceSettings(), &captureSink{})
	if err := spk.Speak(context.Background(), "Hi there"); err == nil {
		t.Fatal("expected empty audio to count as failure")
	}
}
