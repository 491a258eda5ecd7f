package cmd

import (
	"github.com/benmcmorran/anamericanday/core"
	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/spf13/cobra"
)

// breakdownCmd ranks the activities of one demographic.
var breakdownCmd = &cobra.Command{
	Use:   "breakdown [data-dir]",
	Short: "Rank how one demographic spends its time",
	Long: `Rank the activities of one demographic by share, either at a single time index
or averaged across the whole timescale.

The heading describes the selected moment, for example "At 4:02 AM" on the day
timescale or "At 16 years old" on the lifetime timescale.

Examples:
  # Average day for everyone
  anamericanday breakdown ./data

  # Saturdays at noon for men
  anamericanday breakdown ./data --timescale week --demographic male --index 2160`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBreakdown(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run breakdown", err)
		}
	},
}
