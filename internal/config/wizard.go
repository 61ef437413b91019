package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to tickerdesk! Let's configure your terminal.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend URL.
	backendPrompt := promptui.Prompt{
		Label:   "Backend API base URL",
		Default: cfg.BackendURL,
		Validate: func(s string) error {
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
				return fmt.Errorf("must start with http:// or https://")
			}
			return nil
		},
	}
	backendURL, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	cfg.BackendURL = strings.TrimRight(backendURL, "/")

	// 2. API key (optional; can also come from TICKERDESK_API_KEY).
	keyPrompt := promptui.Prompt{
		Label: "API key (leave empty to use TICKERDESK_API_KEY)",
		Mask:  '*',
	}
	apiKey, err := keyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("api key: %w", err)
	}
	cfg.APIKey = apiKey

	// 3. Assistant provider.
	providerPrompt := promptui.Select{
		Label: "AI assistant provider",
		Items: []string{
			"backend — platform-hosted chat (/api/ai/chat)",
			"openai  — direct OpenAI with your own key",
		},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("assistant provider: %w", err)
	}
	providers := []AssistantProvider{ProviderBackend, ProviderOpenAI}
	cfg.Assistant.Provider = providers[providerIdx]

	// 4. Watchlist.
	watchPrompt := promptui.Prompt{
		Label:   "Watchlist symbols (comma separated)",
		Default: strings.Join(cfg.Watchlist, ","),
	}
	watchStr, err := watchPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("watchlist: %w", err)
	}
	cfg.Watchlist = splitSymbols(watchStr)

	// 5. Gateway port.
	portPrompt := promptui.Prompt{
		Label:   "Dashboard gateway port",
		Default: strconv.Itoa(cfg.Gateway.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("must be a port number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("gateway port: %w", err)
	}
	cfg.Gateway.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitSymbols parses a comma separated symbol list, uppercasing and
// dropping empty entries.
func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		sym := strings.ToUpper(strings.TrimSpace(part))
		if sym != "" {
			out = append(out, sym)
		}
	}
	return out
}
