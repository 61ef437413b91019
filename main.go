package main

import (
	"os"

	"github.com/joho/godotenv"

	"tickerdesk/cmd"
)

func main() {
	// Optional .env for API keys during local development.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
