package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tickerdesk/internal/market"
)

var quoteCmd = &cobra.Command{
	Use:   "quote [SYMBOL...]",
	Short: "Show current quotes for symbols (defaults to your watchlist)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		symbols := args
		if len(symbols) == 0 {
			symbols = cfg.Watchlist
		}
		if len(symbols) == 0 {
			return fmt.Errorf("no symbols given and the watchlist is empty")
		}

		client := market.NewClient(newAPIClient(cfg), cfg.Market.AllowDemo)
		quotes, err := client.GetQuotes(cmd.Context(), symbols)
		if err != nil {
			return fmt.Errorf("fetching quotes: %w", err)
		}

		if quotes.Demo {
			fmt.Println("(demo data; live feed unavailable)")
		}
		fmt.Printf("%-8s %12s %10s %9s %14s\n", "SYMBOL", "PRICE", "CHANGE", "CHANGE%", "VOLUME")
		for _, q := range quotes.Quotes {
			fmt.Printf("%-8s %12.2f %+10.2f %+8.2f%% %14d\n",
				q.Symbol, q.Price, q.Change, q.ChangePct, q.Volume)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}
