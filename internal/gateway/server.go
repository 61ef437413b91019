package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tickerdesk/internal/api"
	"tickerdesk/internal/assistant"
	"tickerdesk/internal/history"
	"tickerdesk/internal/market"
	"tickerdesk/internal/notify"
	"tickerdesk/internal/plan"
	"tickerdesk/internal/suggest"
	"tickerdesk/internal/tasks"
)

// Config holds gateway server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Deps are the feature services the gateway exposes.
type Deps struct {
	API       *api.Client
	Tasks     *tasks.Manager
	Center    *notify.Center
	Plans     *plan.Manager
	Suggest   *suggest.Index
	Market    *market.Client
	Hub       *market.Hub
	Assistant *assistant.Assistant
	Runs      *history.Store
}

// Server is the local dashboard gateway: the REST and WebSocket surface
// the browser UI talks to instead of calling the backend directly.
type Server struct {
	cfg        Config
	deps       Deps
	router     chi.Router
	httpServer *http.Server

	// baseCtx outlives individual requests; task watches launched from
	// an HTTP handler must keep polling after the response is written.
	baseCtx   context.Context
	cancelAll context.CancelFunc
}

// New creates a gateway server with all dependencies.
func New(cfg Config, deps Deps) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:       cfg,
		deps:      deps,
		baseCtx:   ctx,
		cancelAll: cancel,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Feature routes.
	notify.RegisterRoutes(r, s.deps.Center)
	plan.RegisterRoutes(r, s.deps.Plans)
	suggest.RegisterRoutes(r, s.deps.Suggest)
	market.RegisterRoutes(r, s.deps.Market)
	assistant.RegisterRoutes(r, s.deps.Assistant, s.deps.Plans)
	history.RegisterRoutes(r, s.deps.Runs)
	s.registerTaskRoutes(r)

	// Live updates.
	r.Get("/ws", s.handleWebSocket)

	return r
}

// Router returns the chi router (used by tests).
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("tickerdesk gateway listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and stops all task watches.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelAll()
	s.deps.Tasks.CancelAll()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
