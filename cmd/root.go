package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tickerdesk",
	Short: "Terminal client and local dashboard gateway for the tickerdesk trading platform",
	Long: `Tickerdesk talks to the trading platform's AI analysis backend: submit
stock analyses and watch them to completion, stream quotes for your
watchlist, chat with the market assistant, and serve a local dashboard
gateway for the browser UI. It also exposes the platform's tools to AI
agents via MCP.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".tickerdesk.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
