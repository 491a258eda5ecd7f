// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var timescaleEnum = mcp.Enum("day", "week", "year", "lifetime")

// NewMCPServer initializes and configures the time-use MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"An American Day Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: list_timescales ---
	s.AddTool(mcp.NewTool("list_timescales",
		mcp.WithDescription("List the loaded time-use timescales with their demographics, activities and stack order."),
		mcp.WithString("data_dir", mcp.Description("Directory holding day.csv, week.csv, year.csv and age.csv (defaults to the server's data directory).")),
	), h.handleListTimescales)

	// --- 2. Tool: get_series ---
	s.AddTool(mcp.NewTool("get_series",
		mcp.WithDescription("Get the stacked [low, high] series of every activity for one demographic."),
		mcp.WithString("timescale", mcp.Description("Time axis of the dataset."), timescaleEnum, mcp.Required()),
		mcp.WithString("demographic", mcp.Description("Demographic to return. Defaults to 'all'.")),
		mcp.WithString("data_dir", mcp.Description("Directory holding the datasets.")),
	), h.handleGetSeries)

	// --- 3. Tool: get_labels ---
	s.AddTool(mcp.NewTool("get_labels",
		mcp.WithDescription("Find where each activity layer is thick enough to carry its label."),
		mcp.WithString("timescale", mcp.Description("Time axis of the dataset."), timescaleEnum, mcp.Required()),
		mcp.WithString("demographic", mcp.Description("Demographic to label. Defaults to 'all'.")),
		mcp.WithNumber("threshold", mcp.Description("Minimum layer thickness for a label run.")),
		mcp.WithString("data_dir", mcp.Description("Directory holding the datasets.")),
	), h.handleGetLabels)

	// --- 4. Tool: get_breakdown ---
	s.AddTool(mcp.NewTool("get_breakdown",
		mcp.WithDescription("Get how a demographic splits its time between activities, largest share first."),
		mcp.WithString("timescale", mcp.Description("Time axis of the dataset."), timescaleEnum, mcp.Required()),
		mcp.WithString("demographic", mcp.Description("Demographic to break down. Defaults to 'all'.")),
		mcp.WithNumber("index", mcp.Description("Time index to read. Omit to average across the timescale.")),
		mcp.WithString("data_dir", mcp.Description("Directory holding the datasets.")),
	), h.handleGetBreakdown)

	return s
}

// StartMCPServer starts the time-use MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
