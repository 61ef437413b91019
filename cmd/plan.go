package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tickerdesk/internal/plan"
)

var planRefresh bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show your subscription tier and which features it unlocks",
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

		plans := plan.NewManager(newAPIClient(cfg), database)
		ctx := cmd.Context()

		var tier plan.Tier
		if planRefresh {
			tier, err = plans.Refresh(ctx)
			if err != nil {
				return err
			}
		} else {
			tier = plans.Current(ctx)
		}

		fmt.Printf("Current plan: %s\n\n", tier)
		for _, f := range []plan.Feature{
			plan.FeatureAnalysis,
			plan.FeatureDeepAnalysis,
			plan.FeatureAIChat,
			plan.FeatureRealtime,
			plan.FeatureTerminal,
		} {
			state := "locked"
			if allowed, _ := plan.Gate(f, tier); allowed {
				state = "available"
			}
			fmt.Printf("  %-24s %-10s (requires %s)\n", f, state, plan.RequiredTier(f))
		}
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planRefresh, "refresh", false, "force a fetch from the backend")
	rootCmd.AddCommand(planCmd)
}
