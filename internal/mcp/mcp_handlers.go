package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/benmcmorran/anamericanday/core"
	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// seriesOutput is the payload of get_series.
type seriesOutput struct {
	Timescale schema.Timescale     `json:"timescale"`
	Reference string               `json:"reference"`
	Order     []string             `json:"order"`
	Series    schema.StackedSeries `json:"series"`
}

// configFor applies the common tool arguments to a copy of the base config.
func (h *toolHandler) configFor(request mcp.CallToolRequest, needTimescale bool) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if d := request.GetString("data_dir", ""); d != "" {
		cfg.DataDir = d
	}
	cfg.Demographic = request.GetString("demographic", "")
	if !needTimescale {
		return cfg, nil
	}
	ts := schema.Timescale(request.GetString("timescale", ""))
	if _, ok := schema.ValidTimescales[ts]; !ok {
		return nil, fmt.Errorf("invalid timescale %q. must be day, week, year, lifetime", ts)
	}
	cfg.Timescale = ts
	return cfg, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListTimescales(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dataset, err := core.LoadDataset(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading datasets failed: %v", err)), nil
	}
	return jsonResult(core.Summaries(dataset))
}

func (h *toolHandler) handleGetSeries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series parameters: %v", err)), nil
	}
	if cfg.Demographic == "" {
		cfg.Demographic = schema.AggregateDemographic
	}

	ex, _, err := core.GetExtractionResult(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
	}
	series, err := core.SeriesFor(ex, cfg.Demographic)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(seriesOutput{
		Timescale: ex.Timescale,
		Reference: ex.Reference,
		Order:     ex.Order,
		Series:    series,
	})
}

func (h *toolHandler) handleGetLabels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid label parameters: %v", err)), nil
	}
	if _, ok := request.GetArguments()["threshold"]; ok {
		threshold := request.GetFloat("threshold", contract.DefaultThreshold)
		if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid label parameters: threshold must be a finite non-negative number (received %g)", threshold)), nil
		}
		cfg.Threshold = threshold
	}

	result, _, err := core.GetLabelsResult(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("labeling failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetBreakdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid breakdown parameters: %v", err)), nil
	}
	cfg.Index = nil
	if _, ok := request.GetArguments()["index"]; ok {
		index := request.GetInt("index", -1)
		if index < 0 {
			return mcp.NewToolResultError("invalid breakdown parameters: index must be a non-negative integer"), nil
		}
		cfg.Index = &index
	}

	result, _, err := core.GetBreakdownResult(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("breakdown failed: %v", err)), nil
	}
	return jsonResult(result)
}
