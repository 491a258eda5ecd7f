// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"time"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteExtraction prints an extraction using the configured output format.
func (ow *OutWriter) WriteExtraction(ex *schema.Extraction, cfg *contract.Config, duration time.Duration) error {
	return WriteExtraction(ex, cfg, duration)
}

// WriteLabels prints label anchors using the configured output format.
func (ow *OutWriter) WriteLabels(result *schema.LabelResult, cfg *contract.Config, duration time.Duration) error {
	return WriteLabels(result, cfg, duration)
}

// WriteBreakdown prints a breakdown using the configured output format.
func (ow *OutWriter) WriteBreakdown(result *schema.BreakdownResult, cfg *contract.Config, duration time.Duration) error {
	return WriteBreakdown(result, cfg, duration)
}

// GetMaxTableLabelWidth calculates the maximum width for activity names in
// table output based on terminal width.
func GetMaxTableLabelWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Demographic + Stack + Mean + Label + Peak columns with borders/padding
	baseWidth := 60

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 50 {
		return 50
	}
	return available
}

// shareLabel returns the share label, colored unless colors are disabled.
func shareLabel(cfg *contract.Config, share float64) string {
	if cfg.UseColors {
		return contract.GetColorLabel(share)
	}
	return contract.GetPlainLabel(share)
}

// heading prefixes a table heading with an emoji when enabled.
func heading(cfg *contract.Config, emoji, text string) string {
	if cfg.UseEmojis {
		return fmt.Sprintf("%s %s", emoji, text)
	}
	return text
}
