package assistant

import (
	"context"

	"tickerdesk/internal/api"
)

// BackendProvider routes chat through the platform's /api/ai/chat
// endpoint, where the server-side insight engine lives.
type BackendProvider struct {
	client *api.Client
}

// NewBackendProvider creates a provider backed by the platform API.
func NewBackendProvider(client *api.Client) *BackendProvider {
	return &BackendProvider{client: client}
}

func (p *BackendProvider) Name() string { return "backend" }

func (p *BackendProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	req := struct {
		Messages []Message `json:"messages"`
	}{Messages: messages}

	var resp struct {
		Success bool   `json:"success"`
		Reply   string `json:"reply"`
		Error   string `json:"error,omitempty"`
	}
	if err := p.client.PostJSON(ctx, "/api/ai/chat", req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &api.APIError{Message: resp.Error}
	}
	return resp.Reply, nil
}
