package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tickerdesk/internal/api"
	"tickerdesk/internal/config"
	"tickerdesk/internal/db"
	"tickerdesk/internal/tasks"
)

// loadConfig reads and validates the configuration file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run `tickerdesk init` to reconfigure)", err)
	}
	return cfg, nil
}

// newAPIClient builds the backend client from config.
func newAPIClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.BackendURL, cfg.APIKey)
}

// openDatabase opens (creating if needed) the local SQLite database
// under the configured data directory.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.Open(filepath.Join(cfg.DataDir, "tickerdesk.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// pollOptions converts the config's polling section into task manager options.
func pollOptions(cfg *config.Config) tasks.Options {
	return tasks.Options{
		Interval:    time.Duration(cfg.Poll.IntervalSeconds * float64(time.Second)),
		MaxAttempts: cfg.Poll.MaxAttempts,
		MaxRetries:  cfg.Poll.MaxRetries,
	}
}
