// Package speaker implements the voice-output capability: a client
// for the TTS proxy plus a local synthesis fallback.
package speaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stephbot/internal/infra/elevenlabs"
)

// AudioSink receives synthesized audio for playback or storage.
type AudioSink interface {
	Play(ctx context.Context, audio []byte) error
}

// ProxySpeaker submits cleaned text to the TTS proxy and hands the
// returned audio to its sink. Any failure is returned so the caller
// can fall back to local synthesis.
type ProxySpeaker struct {
	proxyURL   string
	voiceID    string
	modelID    string
	settings   elevenlabs.VoiceSettings
	sink       AudioSink
	httpClient *http.Client
}

func NewProxySpeaker(proxyURL, voiceID, modelID string, settings elevenlabs.VoiceSettings, sink AudioSink) *ProxySpeaker {
	if modelID == "" {
		modelID = elevenlabs.DefaultModelID
	}
	return &ProxySpeaker{
		proxyURL:   proxyURL,
		voiceID:    voiceID,
		modelID:    modelID,
		settings:   settings,
		sink:       sink,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type speakPayload struct {
	Text          string                   `json:"text"`
	VoiceID       string                   `json:"voiceId"`
	ModelID       string                   `json:"model_id"`
	VoiceSettings elevenlabs.VoiceSettings `json:"voice_settings"`
}

type proxyError struct {
	Error string `json:"error"`
}

func (s *ProxySpeaker) Speak(ctx context.Context, text string) error {
	payload := speakPayload{
		Text:          text,
		VoiceID:       s.voiceID,
		ModelID:       s.modelID,
		VoiceSettings: s.settings,
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.proxyURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling speech proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var pe proxyError
		if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&pe); decodeErr == nil && pe.Error != "" {
			return fmt.Errorf("speech proxy error %d: %s", resp.StatusCode, pe.Error)
		}
		return fmt.Errorf("speech proxy error %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}
	if len(audio) == 0 {
		return fmt.Errorf("speech proxy returned empty audio")
	}

	return s.sink.Play(ctx, audio)
}
