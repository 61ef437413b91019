package config

// DefaultWatchlist is the symbol set streamed when the user has not picked any.
var DefaultWatchlist = []string{"AAPL", "MSFT", "NVDA", "SPY"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BackendURL: "http://localhost:8000",
		DataDir:    ".tickerdesk",
		Watchlist:  DefaultWatchlist,
		Poll: PollConfig{
			IntervalSeconds: 2.5,
			MaxAttempts:     120,
			MaxRetries:      2,
		},
		Assistant: AssistantConfig{
			Provider: ProviderBackend,
			Model:    "gpt-4o-mini",
		},
		Market: MarketConfig{
			AllowDemo: true,
		},
		Gateway: GatewayConfig{
			Port: 7317,
		},
	}
}
