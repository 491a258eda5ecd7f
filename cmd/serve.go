package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benmcmorran/anamericanday/internal/httpapi"
	"github.com/spf13/cobra"
)

// serveCmd exposes the datasets over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve [data-dir]",
	Short: "Serve stacked series, labels and breakdowns over HTTP",
	Long: `Load every dataset found in the data directory and serve it as a JSON API.

Routes:
  GET  /health
  GET  /api/v1/timescales
  GET  /api/v1/series/:timescale
  GET  /api/v1/labels/:timescale
  GET  /api/v1/breakdown/:timescale
  POST /api/v1/view

The server stops gracefully on SIGINT or SIGTERM.

Examples:
  anamericanday serve ./data --addr :9090`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return httpapi.Serve(ctx, cfg, cacheManager)
	},
}
