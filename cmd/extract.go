package cmd

import (
	"github.com/benmcmorran/anamericanday/core"
	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/spf13/cobra"
)

// extractCmd turns one timescale dataset into stacked series.
var extractCmd = &cobra.Command{
	Use:   "extract [data-dir]",
	Short: "Stack one timescale dataset into per-demographic activity series",
	Long: `Read the dataset of one timescale and stack its activity shares for every demographic.

Layers are ordered by the total share of the reference demographic, largest at the
bottom, and every demographic uses that same order.

Output formats:
  text    - summary table of each layer with its mean and peak
  csv     - one row per layer interval
  json    - the full extraction
  parquet - one row per layer interval (requires --output-file)

Examples:
  # Stack the day dataset in ./data
  anamericanday extract ./data

  # Stack the week dataset for one demographic as CSV
  anamericanday extract ./data --timescale week --demographic female --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExtract(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run extract", err)
		}
	},
}
