package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server Server `yaml:"server"`
	Input  Input  `yaml:"input"`
	OpenAI OpenAI `yaml:"openai"`
	NTNL   NTNL   `yaml:"ntnl"`
	Voice  Voice  `yaml:"voice"`
	Proxy  Proxy  `yaml:"proxy"`
	Log    Log    `yaml:"log"`
}

type Server struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

type Input struct {
	Source     string `yaml:"source"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
}

type OpenAI struct {
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
}

type NTNL struct {
	BaseURL      string `yaml:"base_url"`
	HistoryMode  string `yaml:"history_mode"`
	HistoryPairs int    `yaml:"history_pairs"`
}

type Voice struct {
	Enabled         bool    `yaml:"enabled"`
	ProxyURL        string  `yaml:"proxy_url"`
	VoiceID         string  `yaml:"voice_id"`
	ModelID         string  `yaml:"model_id"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`
	FallbackCommand string  `yaml:"fallback_command"`
	AudioDir        string  `yaml:"audio_dir"`
}

type Proxy struct {
	Addr    string `yaml:"addr"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Input.Source == "" {
		c.Input.Source = "http"
	}
	if c.Input.FileDir == "" {
		c.Input.FileDir = "./inbox"
	}
	if c.Input.SampleRate == 0 {
		c.Input.SampleRate = 16000
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.NTNL.HistoryMode == "" {
		c.NTNL.HistoryMode = "messages"
	}
	if c.NTNL.HistoryPairs == 0 {
		c.NTNL.HistoryPairs = 5
	}
	if c.Voice.ProxyURL == "" {
		c.Voice.ProxyURL = "http://localhost:8081/speak"
	}
	if c.Voice.VoiceID == "" {
		c.Voice.VoiceID = "9PSFVIeBFh3iQoQKBzQh"
	}
	if c.Voice.ModelID == "" {
		c.Voice.ModelID = "eleven_monolingual_v1"
	}
	if c.Voice.Stability == 0 {
		c.Voice.Stability = 0.3
	}
	if c.Voice.SimilarityBoost == 0 {
		c.Voice.SimilarityBoost = 0.75
	}
	if c.Voice.FallbackCommand == "" {
		c.Voice.FallbackCommand = "espeak"
	}
	if c.Voice.AudioDir == "" {
		c.Voice.AudioDir = "./speech"
	}
	if c.Proxy.Addr == "" {
		c.Proxy.Addr = ":8081"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
