// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/signalvane/signalvane/internal/contract"
)

var (
	trendEnum = []string{"new", "rising", "falling", "stable"}
	sortEnum  = []string{"novelty", "alphabetical", "trend", "none"}
)

// NewMCPServer initializes and configures the SignalVane MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"SignalVane Narrative Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_trends ---
	s.AddTool(mcp.NewTool("get_trends",
		mcp.WithDescription("Classify every narrative of the latest snapshot as new, rising, falling or stable."),
		mcp.WithString("trend", mcp.Description("Only return narratives with this trend."), mcp.Enum(trendEnum...)),
		mcp.WithString("sort_by", mcp.Description("Ordering of the results. Defaults to 'novelty'."), mcp.Enum(sortEnum...)),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetTrends)

	// --- 2. Tool: get_entity_history ---
	s.AddTool(mcp.NewTool("get_entity_history",
		mcp.WithDescription("Return every recorded score of one narrative, oldest first, with its current trend."),
		mcp.WithString("name", mcp.Description("Exact narrative name."), mcp.Required()),
	), h.handleGetEntityHistory)

	// --- 3. Tool: get_narratives ---
	s.AddTool(mcp.NewTool("get_narratives",
		mcp.WithDescription("Return the narratives detected by the last refresh, labelled with their trends."),
		mcp.WithString("narrative", mcp.Description("Return a single narrative by name (case-insensitive).")),
		mcp.WithString("trend", mcp.Description("Only return narratives with this trend."), mcp.Enum(trendEnum...)),
		mcp.WithString("sort_by", mcp.Description("Ordering of the results. Defaults to 'novelty'."), mcp.Enum(sortEnum...)),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results.")),
	), h.handleGetNarratives)

	// --- 4. Tool: get_ideas ---
	s.AddTool(mcp.NewTool("get_ideas",
		mcp.WithDescription("Return the build ideas generated for narratives."),
		mcp.WithString("narrative", mcp.Description("Only return ideas for this narrative (case-insensitive).")),
	), h.handleGetIdeas)

	// --- 5. Tool: get_health ---
	s.AddTool(mcp.NewTool("get_health",
		mcp.WithDescription("Report when the data was last refreshed and whether it is still fresh."),
	), h.handleGetHealth)

	// --- 6. Tool: refresh ---
	s.AddTool(mcp.NewTool("refresh",
		mcp.WithDescription("Refresh signals and narratives when the cache window has elapsed."),
		mcp.WithBoolean("force", mcp.Description("Refresh even when the cache window has not elapsed.")),
	), h.handleRefresh)

	return s
}

// StartMCPServer starts the SignalVane MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
