// Package application sequences one user turn from raw input to a
// reply and spoken output, owning the per-session conversation state.
package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"stephbot/internal/dialogue"
	"stephbot/internal/domain"
	"stephbot/internal/voice"
)

const (
	// WelcomeMessage is spoken when a widget session opens.
	WelcomeMessage = "Hi! I’m StephBot, your AI assistant for the Solace Training Academy. How can I help you today?"

	userName = "You"
	botName  = "StephBot"

	replyUnreachable = "Sorry, I couldn't reach the Solace knowledge base right now. Please try again later."
	replyNoAnswer    = "Sorry, I couldn't find an answer for that in my general knowledge base."
	replyConnectFail = "There was an error connecting to Solace NTNL for general questions."

	feedbackThanks = "Thank you for your feedback! We truly appreciate your input and it helps us improve Solace AI for ministry."
	feedbackEmpty  = "Please type some feedback before submitting."
)

// ErrEmptyInput is returned for empty or whitespace-only input; the
// turn is a no-op and no state is touched.
var ErrEmptyInput = errors.New("empty input")

type Orchestrator struct {
	engine   *dialogue.Engine
	answerer Answerer
	speaker  Speaker
	sessions *SessionStore
	logger   *slog.Logger
}

func NewOrchestrator(engine *dialogue.Engine, answerer Answerer, speaker Speaker, historyPairs int, logger *slog.Logger) *Orchestrator {
	if historyPairs <= 0 {
		historyPairs = domain.DefaultHistoryPairs
	}
	return &Orchestrator{
		engine:   engine,
		answerer: answerer,
		speaker:  speaker,
		sessions: NewSessionStore(historyPairs),
		logger:   logger,
	}
}

// HandleTurn runs one full turn: record the input, answer it locally
// or via escalation, record the reply and hand it to voice output.
// Every failure path resolves to a substitute reply; the only error
// returned is ErrEmptyInput. A turn superseded by a newer one still
// resolves this way, so the returned reply always matches what was
// recorded in the transcript.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, rawInput string) (string, error) {
	input := strings.TrimSpace(rawInput)
	if input == "" {
		return "", ErrEmptyInput
	}

	sess := o.sessions.Get(sessionID)
	turnCtx, done := sess.BeginTurn(ctx)
	defer done()

	prior := sess.History.Messages()
	sess.History.Append(domain.RoleUser, input)
	sess.Record(userName, input)

	reply, ok := o.engine.Evaluate(input, sess.State)
	if !ok {
		reply = o.escalate(turnCtx, input, prior)
	}

	sess.History.Append(domain.RoleAssistant, reply)
	sess.Record(botName, reply)

	o.logger.Info("turn handled",
		"session_id", sessionID,
		"local", ok,
		"mode", sess.State.Mode.String(),
	)

	o.speak(turnCtx, reply)

	return reply, nil
}

// escalate issues exactly one knowledge-base request and maps every
// failure to a fixed substitute reply.
func (o *Orchestrator) escalate(ctx context.Context, question string, history []domain.Message) string {
	answer, err := o.answerer.Answer(ctx, question, history)
	switch {
	case errors.Is(err, ErrAnswerUnavailable):
		o.logger.Warn("knowledge base unreachable", "error", err)
		return replyUnreachable
	case err != nil:
		o.logger.Error("escalation failed", "error", err)
		return replyConnectFail
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return replyNoAnswer
	}
	return answer
}

// speak cleans the reply and submits it to the voice capability.
// Voice failures are logged and never surface to the caller.
func (o *Orchestrator) speak(ctx context.Context, reply string) {
	text := voice.Clean(reply)
	if text == "" {
		return
	}
	if err := o.speaker.Speak(ctx, text); err != nil {
		o.logger.Error("voice output failed", "error", err)
	}
}

// Welcome returns the greeting spoken when a chat session opens.
func (o *Orchestrator) Welcome() string {
	return WelcomeMessage
}

// AcceptFeedback records user feedback and returns the acknowledgement
// reply, which is also spoken.
func (o *Orchestrator) AcceptFeedback(ctx context.Context, sessionID, text string) string {
	text = strings.TrimSpace(text)

	reply := feedbackThanks
	if text == "" {
		reply = feedbackEmpty
	} else {
		o.logger.Info("user feedback received", "session_id", sessionID, "feedback", text)
	}

	sess := o.sessions.Get(sessionID)
	sess.Record(botName, reply)
	o.speak(ctx, reply)
	return reply
}

// Transcript returns the sender-prefixed transcript of a session.
func (o *Orchestrator) Transcript(sessionID string) ([]string, bool) {
	sess, ok := o.sessions.Lookup(sessionID)
	if !ok {
		return nil, false
	}
	return sess.TranscriptLines(), true
}
