package outwriter

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/schema"
)

// LogExtractionHeader prints which dataset is about to be extracted.
// Nothing is printed for machine-readable output formats.
func LogExtractionHeader(w io.Writer, cfg *contract.Config) {
	if cfg.Output != "" && cfg.Output != schema.TextOut {
		return
	}
	dataName := filepath.Base(cfg.DataDir)
	if dataName == "" || dataName == "." {
		dataName = "current"
	}

	// Line 1: The dataset (Data dir and Timescale)
	_, _ = fmt.Fprintf(w, "%s\n", heading(cfg, "🔎", fmt.Sprintf("Data: %s (Timescale: %s)", dataName, cfg.Timescale)))

	// Line 2: How the stack is pinned
	reference := cfg.Reference
	if reference == "" {
		reference = schema.AggregateDemographic
	}
	_, _ = fmt.Fprintf(w, "%s\n", heading(cfg, "📚", fmt.Sprintf("Stack order: %s (Missing: %s)", reference, cfg.Missing)))
}
