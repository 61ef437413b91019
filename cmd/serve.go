package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tickerdesk/internal/assistant"
	"tickerdesk/internal/gateway"
	"tickerdesk/internal/history"
	"tickerdesk/internal/market"
	"tickerdesk/internal/notify"
	"tickerdesk/internal/plan"
	"tickerdesk/internal/suggest"
	"tickerdesk/internal/tasks"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard gateway",
	Long: `Starts the REST and WebSocket gateway the browser dashboard talks to.
The gateway submits analyses, watches them to completion, pushes
notifications and live quotes over WebSocket, and mirrors the user's
subscription plan locally.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Gateway.Port = servePort
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	client := newAPIClient(cfg)
	center := notify.NewCenter(notify.NewStore(database))
	runs := history.NewStore(database)
	plans := plan.NewManager(client, database)
	manager := tasks.NewManager(client, gateway.NewTaskSink(center, runs), pollOptions(cfg))

	provider, err := assistant.NewProvider(cfg.Assistant, client)
	if err != nil {
		return err
	}

	idx := suggest.NewIndex()
	hub := market.NewHub()

	srv := gateway.New(gateway.Config{
		Port:     cfg.Gateway.Port,
		AllowAll: cfg.Gateway.AllowAll,
	}, gateway.Deps{
		API:       client,
		Tasks:     manager,
		Center:    center,
		Plans:     plans,
		Suggest:   idx,
		Market:    market.NewClient(client, cfg.Market.AllowDemo),
		Hub:       hub,
		Assistant: assistant.New(provider),
		Runs:      runs,
	})

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the symbol index and plan mirror; both degrade gracefully.
	go idx.Refresh(ctx, client)
	go plans.Current(ctx)

	// Stream watchlist quotes into the hub for WebSocket fan-out.
	if len(cfg.Watchlist) > 0 {
		streamURL := cfg.Market.StreamURL
		if streamURL == "" {
			streamURL = market.StreamURL(cfg.BackendURL)
		}
		stream := market.NewStream(streamURL, cfg.APIKey, cfg.Watchlist, hub)
		go stream.Run(ctx)
	}

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down gateway...")
		srv.Shutdown(context.Background())
		manager.Wait()
	}()

	fmt.Fprintf(os.Stderr, "tickerdesk gateway v%s starting on port %d\n", Version, cfg.Gateway.Port)
	fmt.Fprintf(os.Stderr, "  Backend:   %s\n", cfg.BackendURL)
	fmt.Fprintf(os.Stderr, "  Data dir:  %s\n", cfg.DataDir)
	fmt.Fprintf(os.Stderr, "  Watchlist: %v\n", cfg.Watchlist)

	return srv.Start()
}
