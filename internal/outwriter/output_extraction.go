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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// extractionCSVHeader is the long format of a stacked series.
var extractionCSVHeader = []string{"demographic", "activity", "stack_index", "index", "position", "low", "high"}

// WriteExtraction outputs an extraction, dispatching based on the output format configured.
// A non-empty cfg.Demographic restricts the output to that demographic.
func WriteExtraction(ex *schema.Extraction, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtInt := createFormatters(cfg.Precision)
	view := filterExtraction(ex, cfg.Demographic)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, view)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExtractionCSV(w, view, fmtFloat, fmtInt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteSeriesParquet(parquet.SeriesPoints(view, ""), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		announceWrite(os.Stderr, "Wrote Parquet", cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExtractionTable(w, view, cfg, fmtFloat, fmtInt, duration)
		}, "Wrote table")
	}
	return nil
}

// filterExtraction returns a shallow copy holding only one demographic.
func filterExtraction(ex *schema.Extraction, demographic string) *schema.Extraction {
	if demographic == "" {
		return ex
	}
	view := *ex
	view.Demographics = nil
	view.Series = make(map[string]schema.StackedSeries, 1)
	if series, ok := ex.Series[demographic]; ok {
		view.Demographics = []string{demographic}
		view.Series[demographic] = series
	}
	return &view
}

// writeExtractionCSV writes every stacked interval in long format.
func writeExtractionCSV(w io.Writer, ex *schema.Extraction, fmtFloat func(float64) string, fmtInt func(int) string) error {
	return writeCSVWithHeader(w, extractionCSVHeader, func(cw *csv.Writer) error {
		for _, d := range ex.Demographics {
			series := ex.Series[d]
			for _, layer := range series.InStackOrder() {
				for i, iv := range layer.Intervals {
					rec := []string{
						d,
						layer.Key,
						fmtInt(layer.Index),
						fmtInt(i),
						series.Records[i].Position.String(),
						fmtFloat(iv.Low()),
						fmtFloat(iv.High()),
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// layerSummary describes one layer for the table view.
type layerSummary struct {
	mean    float64
	peak    float64
	peakIdx int
}

// summarizeLayer computes the mean and peak thickness of a layer.
func summarizeLayer(layer schema.Layer) layerSummary {
	if len(layer.Intervals) == 0 {
		return layerSummary{peakIdx: -1}
	}
	thickness := make([]float64, len(layer.Intervals))
	for i, iv := range layer.Intervals {
		thickness[i] = iv.Thickness()
	}
	peakIdx := floats.MaxIdx(thickness)
	return layerSummary{
		mean:    stat.Mean(thickness, nil),
		peak:    thickness[peakIdx],
		peakIdx: peakIdx,
	}
}

// writeExtractionTable generates and writes the human-readable summary table.
func writeExtractionTable(w io.Writer, ex *schema.Extraction, cfg *contract.Config, fmtFloat func(float64) string, fmtInt func(int) string, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, heading(cfg, "📊", fmt.Sprintf("%s timescale, stacked by %s", ex.Timescale, ex.Reference))); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()
	table.Header([]string{"Demographic", "Stack", "Activity", "Mean", "Label", "Peak", "Peak At"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	labelWidth := GetMaxTableLabelWidth(cfg)
	var data [][]string
	for _, d := range ex.Demographics {
		series := ex.Series[d]
		for _, layer := range series.InStackOrder() {
			summary := summarizeLayer(layer)
			peakAt := ""
			if summary.peakIdx >= 0 {
				peakAt = series.Records[summary.peakIdx].Position.String()
			}
			data = append(data, []string{
				d,
				fmtInt(layer.Index),
				contract.TruncatePath(layer.Key, labelWidth),
				fmtFloat(summary.mean),
				shareLabel(cfg, summary.mean),
				fmtFloat(summary.peak),
				peakAt,
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Extracted %d rows, %d demographics and %d activities in %v. Cache backend: %s\n",
		ex.Rows, len(ex.Demographics), len(ex.Activities), duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}
