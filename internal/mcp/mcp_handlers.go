package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/signalvane/signalvane/core"
	"github.com/signalvane/signalvane/internal/contract"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager

	refreshMu sync.Mutex // one pipeline run at a time
}

// presentationConfig clones the base config with per-request presentation overrides.
func (h *toolHandler) presentationConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidatePresentation(cfg,
		request.GetString("sort_by", string(h.baseCfg.Sort)),
		request.GetString("trend", string(h.baseCfg.TrendFilter)),
		request.GetString("narrative", h.baseCfg.NarrativeFilter),
	)
	if err != nil {
		return nil, err
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	return cfg, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetTrends(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.presentationConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	rows, _, err := core.GetTrendsResults(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trend lookup failed: %v", err)), nil
	}
	return jsonResult(rows), nil
}

func (h *toolHandler) handleGetEntityHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.EntityName = request.GetString("name", "")
	if cfg.EntityName == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	result, _, err := core.GetHistoryResults(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history lookup failed: %v", err)), nil
	}
	return jsonResult(result), nil
}

func (h *toolHandler) handleGetNarratives(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.presentationConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	narratives, _, err := core.GetNarrativesResults(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("narrative lookup failed: %v", err)), nil
	}
	return jsonResult(narratives), nil
}

func (h *toolHandler) handleGetIdeas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.NarrativeFilter = request.GetString("narrative", "")

	sets, _, err := core.GetIdeasResults(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("idea lookup failed: %v", err)), nil
	}
	return jsonResult(sets), nil
}

func (h *toolHandler) handleGetHealth(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := core.GetHealthResults(core.WithSuppressHeader(ctx), h.baseCfg.Clone())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("health check failed: %v", err)), nil
	}
	return jsonResult(report), nil
}

func (h *toolHandler) handleRefresh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.Force = request.GetBool("force", false)

	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	outcome, err := core.GetRefreshResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}
	return jsonResult(outcome), nil
}
