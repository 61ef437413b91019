package assistant

import (
	"fmt"
	"os"

	"tickerdesk/internal/api"
	"tickerdesk/internal/config"
)

// NewProvider creates the chat provider selected by the configuration.
func NewProvider(cfg config.AssistantConfig, client *api.Client) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, cfg.Model), nil

	case config.ProviderBackend, "":
		return NewBackendProvider(client), nil

	default:
		return nil, fmt.Errorf("unsupported assistant provider: %s", cfg.Provider)
	}
}
