// Package elevenlabs is the client for the ElevenLabs text-to-speech
// API. Only the proxy holds the credential; the assistant reaches the
// provider exclusively through the proxy.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"

	// DefaultModelID matches the widget's synthesis model.
	DefaultModelID = "eleven_monolingual_v1"
)

// DefaultVoiceSettings returns the widget's tuned synthesis settings.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{Stability: 0.3, SimilarityBoost: 0.75}
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// SpeechRequest describes one synthesis call. Zero ModelID and nil
// VoiceSettings fall back to the defaults above.
type SpeechRequest struct {
	Text          string
	VoiceID       string
	ModelID       string
	VoiceSettings *VoiceSettings
}

// ProviderError carries the provider's status and error body so the
// proxy can forward both to its caller.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("elevenlabs API error %d: %s", e.StatusCode, e.Body)
}

// ErrEmptyAudio is returned when the provider reports success but
// sends no audio data.
var ErrEmptyAudio = errors.New("elevenlabs returned empty audio data")

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return NewClientWithURL(apiKey, defaultBaseURL)
}

func NewClientWithURL(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type synthesisBody struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Synthesize renders text to audio/mpeg bytes. Provider failures are
// returned as *ProviderError; success with zero bytes is ErrEmptyAudio.
func (c *Client) Synthesize(ctx context.Context, sr SpeechRequest) ([]byte, error) {
	if sr.VoiceID == "" {
		return nil, fmt.Errorf("missing voice id")
	}

	body := synthesisBody{
		Text:          sr.Text,
		ModelID:       sr.ModelID,
		VoiceSettings: DefaultVoiceSettings(),
	}
	if body.ModelID == "" {
		body.ModelID = DefaultModelID
	}
	if sr.VoiceSettings != nil {
		body.VoiceSettings = *sr.VoiceSettings
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.baseURL + "/v1/text-to-speech/" + sr.VoiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	return audio, nil
}
