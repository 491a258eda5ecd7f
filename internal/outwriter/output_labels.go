package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/internal/parquet"
	"github.com/benmcmorran/anamericanday/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var labelsCSVHeader = []string{"timescale", "demographic", "activity", "stack_index", "found", "index", "value", "position"}

// WriteLabels outputs the label anchors of one demographic.
func WriteLabels(result *schema.LabelResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLabelsCSV(w, result, fmtFloat, fmtInt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteLabelsParquet(parquet.LabelAnchors(result), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		announceWrite(os.Stderr, "Wrote Parquet", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLabelsTable(w, result, cfg, fmtFloat, fmtInt, duration)
		}, "Wrote table")
	}
	return nil
}

func writeLabelsCSV(w io.Writer, result *schema.LabelResult, fmtFloat func(float64) string, fmtInt func(int) string) error {
	return writeCSVWithHeader(w, labelsCSVHeader, func(cw *csv.Writer) error {
		for _, anchor := range result.Anchors {
			index, value, position := "", "", ""
			if anchor.Found {
				index = fmtInt(anchor.Index)
				value = fmtFloat(anchor.Value)
			}
			if anchor.Position != nil {
				position = anchor.Position.String()
			}
			rec := []string{
				string(result.Timescale),
				result.Demographic,
				anchor.Activity,
				fmtInt(anchor.StackIndex),
				fmt.Sprintf("%t", anchor.Found),
				index,
				value,
				position,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeLabelsTable(w io.Writer, result *schema.LabelResult, cfg *contract.Config, fmtFloat func(float64) string, fmtInt func(int) string, duration time.Duration) error {
	title := fmt.Sprintf("Label anchors for %s (%s, threshold %s)", result.Demographic, result.Timescale, fmtFloat(result.Threshold))
	if _, err := fmt.Fprintln(w, heading(cfg, "🏷️", title)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Stack", "Activity", "Index", "Value", "Position"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	labelWidth := GetMaxTableLabelWidth(cfg)
	var data [][]string
	found := 0
	for _, anchor := range result.Anchors {
		index, value, position := "-", "-", "-"
		if anchor.Found {
			found++
			index = fmtInt(anchor.Index)
			value = fmtFloat(anchor.Value)
		}
		if anchor.Position != nil {
			position = anchor.Position.String()
		}
		data = append(data, []string{
			fmtInt(anchor.StackIndex),
			contract.TruncatePath(anchor.Activity, labelWidth),
			index,
			value,
			position,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Found %d of %d anchors in %v\n", found, len(result.Anchors), duration)
	return err
}
