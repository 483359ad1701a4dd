package domain

// History is a bounded FIFO of chat messages. It keeps at most
// maxPairs user/assistant pairs; the oldest entries are evicted first.
// Not safe for concurrent use; the owning session serializes access.
type History struct {
	maxEntries int
	msgs       []Message
}

func NewHistory(maxPairs int) *History {
	if maxPairs <= 0 {
		maxPairs = DefaultHistoryPairs
	}
	return &History{maxEntries: maxPairs * 2}
}

// Append adds a message, evicting the oldest entries first so the
// history never exceeds its bound.
func (h *History) Append(role Role, content string) {
	for len(h.msgs) >= h.maxEntries {
		h.msgs = h.msgs[1:]
	}
	h.msgs = append(h.msgs, Message{Role: role, Content: content})
}

// Messages returns a copy of the current history, oldest first.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

func (h *History) Len() int {
	return len(h.msgs)
}
