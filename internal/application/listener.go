package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"stephbot/internal/domain"
)

// TurnHandler is the orchestrator surface the listener and the chat
// gateway drive.
type TurnHandler interface {
	HandleTurn(ctx context.Context, sessionID, rawInput string) (string, error)
}

// Listener runs the local interactive loop for microphone and file
// sources: utterance in, transcription if needed, one turn out.
type Listener struct {
	source UtteranceSource
	stt    SpeechToText
	turns  TurnHandler
	logger *slog.Logger
}

func NewListener(source UtteranceSource, stt SpeechToText, turns TurnHandler, logger *slog.Logger) *Listener {
	return &Listener{
		source: source,
		stt:    stt,
		turns:  turns,
		logger: logger,
	}
}

func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("starting utterance source", "source", l.source.Name())
	if err := l.source.Start(ctx); err != nil {
		return fmt.Errorf("starting source: %w", err)
	}
	defer l.source.Stop()

	l.logger.Info("listener ready")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := l.processOneUtterance(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				l.logger.Error("processing utterance", "error", err)
			}
		}
	}
}

func (l *Listener) processOneUtterance(ctx context.Context) error {
	data, err := l.source.NextUtterance(ctx)
	if err != nil {
		return fmt.Errorf("getting utterance: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var text string
	if direct, isText := IsTextUtterance(data); isText {
		text = direct
	} else {
		l.logger.Info("received audio", "bytes", len(data))
		text, err = l.stt.Transcribe(ctx, data)
		if err != nil {
			return fmt.Errorf("transcribing: %w", err)
		}
		l.logger.Info("transcribed", "text", text)
	}

	reply, err := l.turns.HandleTurn(ctx, DefaultSessionID, text)
	if errors.Is(err, ErrEmptyInput) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("handling turn: %w", err)
	}

	l.logger.Info("reply", "text", reply)
	return nil
}

// IsTextUtterance unwraps an utterance that is tagged as text.
func IsTextUtterance(data []byte) (string, bool) {
	s := string(data)
	if strings.HasPrefix(s, domain.TextUtterancePrefix) && len(s) > len(domain.TextUtterancePrefix) {
		return s[len(domain.TextUtterancePrefix):], true
	}
	return "", false
}
