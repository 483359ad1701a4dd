package application

import (
	"context"
	"fmt"
	"sync"

	"stephbot/internal/dialogue"
	"stephbot/internal/domain"
)

// DefaultSessionID is used by local listener modes, which carry a
// single conversation.
const DefaultSessionID = "local"

// Session holds one conversation's isolated state: dialogue position,
// bounded chat history and the full transcript. Turns for a session
// are serialized; starting a new turn cancels the previous turn's
// in-flight work.
type Session struct {
	State   *dialogue.State
	History *domain.History

	turnMu sync.Mutex // held for the duration of one turn

	cancelMu   sync.Mutex
	cancelPrev context.CancelFunc

	transcriptMu sync.Mutex
	transcript   []string
}

func newSession(historyPairs int) *Session {
	return &Session{
		State:   dialogue.NewState(),
		History: domain.NewHistory(historyPairs),
	}
}

// BeginTurn cancels any in-flight previous turn, then acquires the
// session for a new one. The returned context is cancelled either by
// the done func or by the next BeginTurn call.
func (s *Session) BeginTurn(ctx context.Context) (context.Context, func()) {
	s.cancelMu.Lock()
	if s.cancelPrev != nil {
		s.cancelPrev()
	}
	turnCtx, cancel := context.WithCancel(ctx)
	s.cancelPrev = cancel
	s.cancelMu.Unlock()

	s.turnMu.Lock()
	return turnCtx, func() {
		cancel()
		s.turnMu.Unlock()
	}
}

// Record appends a sender-prefixed line to the transcript.
func (s *Session) Record(sender, text string) {
	s.transcriptMu.Lock()
	defer s.transcriptMu.Unlock()
	s.transcript = append(s.transcript, fmt.Sprintf("%s: %s", sender, text))
}

// TranscriptLines returns a copy of the transcript, oldest first.
func (s *Session) TranscriptLines() []string {
	s.transcriptMu.Lock()
	defer s.transcriptMu.Unlock()
	out := make([]string, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// SessionStore hands out per-session state, creating sessions on
// first use.
type SessionStore struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	historyPairs int
}

func NewSessionStore(historyPairs int) *SessionStore {
	return &SessionStore{
		sessions:     make(map[string]*Session),
		historyPairs: historyPairs,
	}
}

func (st *SessionStore) Get(id string) *Session {
	if id == "" {
		id = DefaultSessionID
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		sess = newSession(st.historyPairs)
		st.sessions[id] = sess
	}
	return sess
}

// Lookup returns an existing session without creating one.
func (st *SessionStore) Lookup(id string) (*Session, bool) {
	if id == "" {
		id = DefaultSessionID
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	return sess, ok
}
