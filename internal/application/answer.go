package application

import (
	"context"
	"errors"

	"stephbot/internal/domain"
)

// Answerer escalates a question the dialogue engine could not answer
// to the remote knowledge base.
type Answerer interface {
	Answer(ctx context.Context, question string, history []domain.Message) (string, error)
}

// ErrAnswerUnavailable is wrapped by Answerer implementations when the
// service responded but with a non-success status. The orchestrator
// maps it to a different substitute reply than a transport failure.
var ErrAnswerUnavailable = errors.New("answer service unavailable")
