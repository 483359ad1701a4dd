package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the chat history sent to the knowledge base.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TextUtterancePrefix marks utterances that are already text (vs raw audio).
const TextUtterancePrefix = "__TEXT__:"

// DefaultHistoryPairs is the number of user/assistant turn pairs kept per session.
const DefaultHistoryPairs = 5
