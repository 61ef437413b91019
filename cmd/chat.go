package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tickerdesk/internal/api"
	"tickerdesk/internal/assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat [QUESTION]",
	Short: "Ask the market assistant a question",
	Long: `With a question argument, asks once and prints the reply. Without
arguments, starts an interactive session; the transcript carries across
turns until you exit with Ctrl-D or "quit".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		provider, err := assistant.NewProvider(cfg.Assistant, newAPIClient(cfg))
		if err != nil {
			return err
		}
		asst := assistant.New(provider)
		ctx := cmd.Context()

		if len(args) > 0 {
			reply, _, err := asst.Ask(ctx, "", strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("assistant: %s", api.FriendlyMessage(err))
			}
			fmt.Println(reply)
			return nil
		}

		fmt.Println("Market assistant. Type your question, or \"quit\" to exit.")
		scanner := bufio.NewScanner(os.Stdin)
		sessionID := ""
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "quit" || line == "exit" {
				return nil
			}

			reply, session, err := asst.Ask(ctx, sessionID, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", api.FriendlyMessage(err))
				continue
			}
			sessionID = session
			fmt.Println(reply)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
