package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tickerdesk/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := history.NewStore(database).List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No analysis runs recorded yet.")
			return nil
		}

		fmt.Printf("%-19s %-16s %-8s %-10s %s\n", "STARTED", "TOOL", "SYMBOL", "STATUS", "NOTE")
		for _, r := range runs {
			note := r.Error
			fmt.Printf("%-19s %-16s %-8s %-10s %s\n",
				r.StartedAt.Format("2006-01-02 15:04:05"), r.Tool, r.Symbol, r.Status, note)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum runs to show")
	rootCmd.AddCommand(historyCmd)
}
