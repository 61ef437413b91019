package config

// AssistantProvider identifies which chat backend answers assistant requests.
type AssistantProvider string

const (
	// ProviderBackend routes chat through the platform's /api/ai/chat endpoint.
	ProviderBackend AssistantProvider = "backend"
	// ProviderOpenAI calls OpenAI directly with a user-supplied key.
	ProviderOpenAI AssistantProvider = "openai"
)

// Config is the top-level tickerdesk configuration, corresponding to .tickerdesk.yml.
type Config struct {
	BackendURL string   `yaml:"backend_url" koanf:"backend_url"`
	APIKey     string   `yaml:"api_key" koanf:"api_key"`
	DataDir    string   `yaml:"data_dir" koanf:"data_dir"`
	Watchlist  []string `yaml:"watchlist" koanf:"watchlist"`

	Poll      PollConfig      `yaml:"poll" koanf:"poll"`
	Assistant AssistantConfig `yaml:"assistant" koanf:"assistant"`
	Market    MarketConfig    `yaml:"market" koanf:"market"`
	Gateway   GatewayConfig   `yaml:"gateway" koanf:"gateway"`
}

// PollConfig tunes the task polling loop.
type PollConfig struct {
	IntervalSeconds float64 `yaml:"interval_seconds" koanf:"interval_seconds"`
	MaxAttempts     int     `yaml:"max_attempts" koanf:"max_attempts"`
	MaxRetries      int     `yaml:"max_retries" koanf:"max_retries"`
}

// AssistantConfig selects and tunes the AI chat provider.
type AssistantConfig struct {
	Provider AssistantProvider `yaml:"provider" koanf:"provider"`
	Model    string            `yaml:"model" koanf:"model"`
}

// MarketConfig controls market data retrieval.
type MarketConfig struct {
	StreamURL string `yaml:"stream_url" koanf:"stream_url"`
	AllowDemo bool   `yaml:"allow_demo" koanf:"allow_demo"`
}

// GatewayConfig holds local dashboard gateway settings.
type GatewayConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}
