package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"tickerdesk/internal/api"
	"tickerdesk/internal/market"
	"tickerdesk/internal/plan"
	"tickerdesk/internal/suggest"
	"tickerdesk/internal/tasks"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server exposing the trading backend's tools to
// AI agents over stdio.
type Server struct {
	api     *api.Client
	suggest *suggest.Index
	market  *market.Client
	plans   *plan.Manager
	tasks   *tasks.Manager
	sink    *resultSink
	mcp     *server.MCPServer
}

// NewServer creates an MCP server with the given dependencies. Analysis
// runs are watched with the supplied polling options so agents get the
// same retry and timeout behavior the dashboard does.
func NewServer(apiClient *api.Client, idx *suggest.Index, quotes *market.Client, plans *plan.Manager, opts tasks.Options) *Server {
	sink := newResultSink()
	s := &Server{
		api:     apiClient,
		suggest: idx,
		market:  quotes,
		plans:   plans,
		sink:    sink,
	}
	s.tasks = tasks.NewManager(apiClient, sink, opts)

	s.mcp = server.NewMCPServer(
		"tickerdesk",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchSymbolsTool, s.handleSearchSymbols)
	s.mcp.AddTool(getQuotesTool, s.handleGetQuotes)
	s.mcp.AddTool(runAnalysisTool, s.handleRunAnalysis)
	s.mcp.AddTool(getPlanTool, s.handleGetPlan)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	defer s.tasks.CancelAll()
	return server.ServeStdio(s.mcp)
}
