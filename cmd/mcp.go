package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tickerdesk/internal/market"
	mcpserver "tickerdesk/internal/mcp"
	"tickerdesk/internal/plan"
	"tickerdesk/internal/suggest"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing symbol search, quotes, and analysis tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		client := newAPIClient(cfg)
		idx := suggest.NewIndex()
		go idx.Refresh(cmd.Context(), client)

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "tickerdesk MCP server started on stdio (backend=%s)\n", cfg.BackendURL)

		srv := mcpserver.NewServer(
			client,
			idx,
			market.NewClient(client, cfg.Market.AllowDemo),
			plan.NewManager(client, nil),
			pollOptions(cfg),
		)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
