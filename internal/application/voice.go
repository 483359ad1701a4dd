package application

import (
	"context"
	"log/slog"
)

// Speaker turns cleaned reply text into audible speech.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// NoopSpeaker is used when voice output is disabled.
type NoopSpeaker struct{}

func (n *NoopSpeaker) Speak(_ context.Context, _ string) error {
	return nil
}

// FallbackSpeaker tries the primary speaker and falls back to local
// synthesis when it fails. The same text is handed to both.
type FallbackSpeaker struct {
	primary  Speaker
	fallback Speaker
	logger   *slog.Logger
}

func NewFallbackSpeaker(primary, fallback Speaker, logger *slog.Logger) *FallbackSpeaker {
	return &FallbackSpeaker{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FallbackSpeaker) Speak(ctx context.Context, text string) error {
	err := f.primary.Speak(ctx, text)
	if err == nil {
		return nil
	}
	f.logger.Warn("primary voice output failed, using fallback synthesis", "error", err)
	return f.fallback.Speak(ctx, text)
}
