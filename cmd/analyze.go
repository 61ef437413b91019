package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"tickerdesk/internal/api"
	"tickerdesk/internal/tasks"
)

var analyzeTool string

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Run an AI analysis of a stock and wait for the result",
	Long: `Submits an analysis job to the backend and polls it to completion,
showing progress. Failed jobs are retried automatically within the
configured retry limit.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeTool, "tool", "stock-analysis", "analysis type: stock-analysis, deep-analysis, or screener")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	symbol := strings.ToUpper(strings.TrimSpace(args[0]))
	client := newAPIClient(cfg)
	ctx := cmd.Context()

	submit := func(ctx context.Context) (string, error) {
		return client.SubmitTool(ctx, analyzeTool, map[string]any{"symbol": symbol})
	}

	taskID, err := submit(ctx)
	if err != nil {
		return fmt.Errorf("submitting %s for %s: %s", analyzeTool, symbol, api.FriendlyMessage(err))
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Submitted %s for %s (task %s)\n", analyzeTool, symbol, taskID)
	}

	sink := newAnalyzeSink()
	manager := tasks.NewManager(client, sink, pollOptions(cfg))
	err = manager.Watch(ctx, tasks.Task{
		ID:       taskID,
		Label:    fmt.Sprintf("%s: %s", analyzeTool, symbol),
		Resubmit: submit,
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		manager.CancelAll()
		manager.Wait()
		return ctx.Err()
	case result := <-sink.completed:
		sink.bar.Finish()
		printAnalysisResult(symbol, result)
		return nil
	case err := <-sink.failed:
		sink.bar.Finish()
		return fmt.Errorf("%s of %s: %s", analyzeTool, symbol, api.FriendlyMessage(err))
	}
}

// analyzeSink drives a terminal progress bar from task manager events and
// hands the terminal outcome back to the command.
type analyzeSink struct {
	bar       *progressbar.ProgressBar
	completed chan json.RawMessage
	failed    chan error
}

func newAnalyzeSink() *analyzeSink {
	return &analyzeSink{
		bar: progressbar.NewOptions(100,
			progressbar.OptionSetDescription("Analyzing"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		),
		completed: make(chan json.RawMessage, 1),
		failed:    make(chan error, 1),
	}
}

func (s *analyzeSink) TaskProgress(taskID, label string, status api.TaskStatus, percent int) {
	s.bar.Describe(string(status))
	_ = s.bar.Set(percent)
}

func (s *analyzeSink) TaskRetrying(oldID, newID, label string, retry int) {
	s.bar.Describe(fmt.Sprintf("retrying (%d)", retry))
}

func (s *analyzeSink) TaskCompleted(taskID, label string, result json.RawMessage) {
	s.completed <- result
}

func (s *analyzeSink) TaskFailed(taskID, label string, err error) {
	s.failed <- err
}

// printAnalysisResult renders the result payload: well-known fields get
// friendly lines, the rest prints as indented JSON.
func printAnalysisResult(symbol string, result json.RawMessage) {
	fmt.Printf("Analysis of %s complete.\n", symbol)

	var fields struct {
		Recommendation string  `json:"recommendation"`
		Confidence     float64 `json:"confidence"`
		Summary        string  `json:"summary"`
	}
	if json.Unmarshal(result, &fields) == nil {
		if fields.Recommendation != "" {
			fmt.Printf("  Recommendation: %s\n", fields.Recommendation)
		}
		if fields.Confidence > 0 {
			fmt.Printf("  Confidence:     %.0f%%\n", fields.Confidence*100)
		}
		if fields.Summary != "" {
			fmt.Printf("  %s\n", fields.Summary)
		}
	}

	if verbose && len(result) > 0 {
		var buf bytes.Buffer
		if json.Indent(&buf, result, "", "  ") == nil {
			fmt.Printf("\n%s\n", buf.String())
		}
	}
}
