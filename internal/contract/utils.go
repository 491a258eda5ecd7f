package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Share label constants.
const (
	DominantValue = "Dominant" // Dominant share
	MajorValue    = "Major"    // Major share
	MinorValue    = "Minor"    // Minor share
	TraceValue    = "Trace"    // Trace share
)

// Color variables for console output.
var (
	DominantColor = color.New(color.FgRed, color.Bold)     // DominantColor marks activities filling most of the time.
	MajorColor    = color.New(color.FgMagenta, color.Bold) // MajorColor marks a large share.
	MinorColor    = color.New(color.FgYellow)              // MinorColor marks a small share.
	TraceColor    = color.New(color.FgCyan)                // TraceColor marks a barely visible layer.
)

// GetPlainLabel returns a plain text label describing how much of the time
// an activity takes. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(share float64) string {
	switch {
	case share >= 0.3:
		return DominantValue
	case share >= 0.1:
		return MajorValue
	case share >= 0.02:
		return MinorValue
	default:
		return TraceValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(share float64) string {
	text := GetPlainLabel(share)

	switch text {
	case DominantValue:
		return DominantColor.Sprint(text)
	case MajorValue:
		return MajorColor.Sprint(text)
	case MinorValue:
		return MinorColor.Sprint(text)
	default: // "Trace"
		return TraceColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".anamericanday_cache.db"
	}
	return filepath.Join(homeDir, ".anamericanday_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".anamericanday_runs.db"
	}
	return filepath.Join(homeDir, ".anamericanday_runs.db")
}

// TruncatePath truncates a path or label to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
