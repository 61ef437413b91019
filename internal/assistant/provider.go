package assistant

import "context"

// Role of a chat message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Provider answers chat conversations.
type Provider interface {
	// Chat sends the conversation so far and returns the reply text.
	Chat(ctx context.Context, messages []Message) (string, error)
	// Name returns the provider's name.
	Name() string
}
