package application

import "context"

// UtteranceSource delivers user utterances in local listener modes
// (microphone capture, file drop). An utterance is either raw audio
// or text tagged with domain.TextUtterancePrefix.
type UtteranceSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextUtterance(ctx context.Context) ([]byte, error)
	Name() string
}
