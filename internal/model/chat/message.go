package chat

import "time"

// Sender values used in history entries.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one append-only history entry of a negotiation.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId,omitempty"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Outcome   string    `json:"outcome,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Line renders the message the way transcripts show it.
func (m Message) Line() string {
	if m.Sender == SenderUser {
		return "You: " + m.Content
	}
	return "AI: " + m.Content
}
