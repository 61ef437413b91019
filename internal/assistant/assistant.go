package assistant

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// systemPrompt frames every conversation.
const systemPrompt = "You are a market insights assistant. Answer questions about " +
	"stocks, portfolios, and analysis results concisely. You are not a licensed " +
	"financial advisor and must say so when asked for personal investment advice."

// maxTurns bounds how much transcript is replayed to the provider.
const maxTurns = 20

// Assistant keeps per-session transcripts and delegates to a Provider.
// Sessions live in memory only; they are conversation state, not records.
type Assistant struct {
	provider Provider

	mu       sync.Mutex
	sessions map[string][]Message
}

// New creates an Assistant using the given provider.
func New(provider Provider) *Assistant {
	return &Assistant{
		provider: provider,
		sessions: make(map[string][]Message),
	}
}

// Provider returns the underlying chat provider.
func (a *Assistant) Provider() Provider { return a.provider }

// Ask appends the user's message to the session transcript, obtains a
// reply, and returns it along with the session id (generated when empty).
func (a *Assistant) Ask(ctx context.Context, sessionID, content string) (reply, session string, err error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	a.mu.Lock()
	transcript, ok := a.sessions[sessionID]
	if !ok {
		transcript = []Message{{Role: RoleSystem, Content: systemPrompt}}
	}
	transcript = append(transcript, Message{Role: RoleUser, Content: content})
	if len(transcript) > maxTurns {
		// Keep the system prompt plus the most recent turns.
		trimmed := append([]Message{transcript[0]}, transcript[len(transcript)-maxTurns+1:]...)
		transcript = trimmed
	}
	a.mu.Unlock()

	answer, err := a.provider.Chat(ctx, transcript)
	if err != nil {
		return "", sessionID, err
	}

	a.mu.Lock()
	a.sessions[sessionID] = append(transcript, Message{Role: RoleAssistant, Content: answer})
	a.mu.Unlock()

	return answer, sessionID, nil
}

// Transcript returns a copy of a session's messages.
func (a *Assistant) Transcript(sessionID string) []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Message(nil), a.sessions[sessionID]...)
}
