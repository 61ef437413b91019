package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tickerdesk/internal/suggest"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search for stock symbols by ticker or company name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		idx := suggest.NewIndex()
		// Best-effort refresh from the backend; the seed set answers offline.
		idx.Refresh(cmd.Context(), newAPIClient(cfg))

		query := strings.Join(args, " ")
		results := idx.Search(query, searchLimit)
		if len(results) == 0 {
			fmt.Printf("No symbols match %q.\n", query)
			return nil
		}

		for _, sym := range results {
			line := fmt.Sprintf("%-8s %s", sym.Ticker, sym.Name)
			if sym.Sector != "" {
				line += fmt.Sprintf(" (%s)", sym.Sector)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", suggest.DefaultLimit, "maximum results")
	rootCmd.AddCommand(searchCmd)
}
