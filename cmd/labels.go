package cmd

import (
	"github.com/benmcmorran/anamericanday/core"
	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/spf13/cobra"
)

// labelsCmd finds where each activity layer is thick enough to carry a label.
var labelsCmd = &cobra.Command{
	Use:   "labels [data-dir]",
	Short: "Find the label anchor of every activity layer",
	Long: `Find, for every layer of one demographic, the run of consecutive samples thicker
than --threshold whose accumulated thickness is largest, and anchor the label at the
thickness-weighted centroid of that run. Layers never thicker than the threshold have
no anchor.

When run tracking is enabled the anchors are recorded against the extraction run.

Examples:
  # Anchors for everyone on the day timescale
  anamericanday labels ./data

  # Anchors for the lifetime chart with a looser threshold
  anamericanday labels ./data --timescale lifetime --threshold 0.02`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLabels(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run labels", err)
		}
	},
}
