package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchSymbolsTool defines the search_symbols MCP tool.
var searchSymbolsTool = mcp.NewTool("search_symbols",
	mcp.WithDescription("Search for stock symbols by ticker or company name. Returns matching symbols ranked by relevance."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Ticker fragment or company name, e.g. \"AAPL\" or \"apple\""),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 8)"),
	),
)

// getQuotesTool defines the get_quotes MCP tool.
var getQuotesTool = mcp.NewTool("get_quotes",
	mcp.WithDescription("Get current price quotes for one or more stock symbols."),
	mcp.WithString("symbols",
		mcp.Required(),
		mcp.Description("Comma-separated ticker symbols, e.g. \"AAPL,MSFT\""),
	),
)

// runAnalysisTool defines the run_analysis MCP tool.
var runAnalysisTool = mcp.NewTool("run_analysis",
	mcp.WithDescription("Run an AI analysis of a stock and wait for the result. May take a minute or two for deep analysis."),
	mcp.WithString("symbol",
		mcp.Required(),
		mcp.Description("Ticker symbol to analyze"),
	),
	mcp.WithString("tool",
		mcp.Description("Analysis type to run (default stock-analysis)"),
		mcp.Enum("stock-analysis", "deep-analysis", "screener"),
	),
)

// getPlanTool defines the get_plan MCP tool.
var getPlanTool = mcp.NewTool("get_plan",
	mcp.WithDescription("Get the user's current subscription tier and which analysis features it unlocks."),
)
