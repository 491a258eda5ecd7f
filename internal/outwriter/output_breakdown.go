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

var breakdownCSVHeader = []string{"timescale", "demographic", "index", "heading", "activity", "stack_index", "share", "label"}

// WriteBreakdown outputs the share of every activity, largest first.
func WriteBreakdown(result *schema.BreakdownResult, cfg *contract.Config, duration time.Duration) error {
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
			return writeBreakdownCSV(w, result, fmtFloat, fmtInt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteBreakdownParquet(parquet.BreakdownShares(result), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		announceWrite(os.Stderr, "Wrote Parquet", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBreakdownTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

func writeBreakdownCSV(w io.Writer, result *schema.BreakdownResult, fmtFloat func(float64) string, fmtInt func(int) string) error {
	index := ""
	if result.Index != nil {
		index = fmtInt(*result.Index)
	}
	return writeCSVWithHeader(w, breakdownCSVHeader, func(cw *csv.Writer) error {
		for _, entry := range result.Entries {
			rec := []string{
				string(result.Timescale),
				result.Demographic,
				index,
				result.Heading,
				entry.Activity,
				fmtInt(entry.StackIndex),
				fmtFloat(entry.Share),
				contract.GetPlainLabel(entry.Share),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeBreakdownTable(w io.Writer, result *schema.BreakdownResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	title := fmt.Sprintf("%s, %s spend their time like this", result.Heading, result.Demographic)
	if _, err := fmt.Fprintln(w, heading(cfg, "⏰", title)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Rank", "Activity", "Share", "Percent", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	labelWidth := GetMaxTableLabelWidth(cfg)
	data := make([][]string, 0, len(result.Entries))
	for i, entry := range result.Entries {
		data = append(data, []string{
			fmt.Sprintf("%d", i+1),
			contract.TruncatePath(entry.Activity, labelWidth),
			fmtFloat(entry.Share),
			fmt.Sprintf("%.0f%%", entry.Share*100),
			shareLabel(cfg, entry.Share),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Computed %d shares in %v\n", len(result.Entries), duration)
	return err
}
