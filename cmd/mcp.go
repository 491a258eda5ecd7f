package cmd

import (
	"github.com/benmcmorran/anamericanday/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [data-dir]",
	Short: "Start the anamericanday MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents read stacked series, labels and breakdowns via standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Tool handlers suppress the header logs themselves since stdio carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
