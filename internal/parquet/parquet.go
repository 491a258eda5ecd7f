// Package parquet provides data structures and functions for exporting stacked
// series, label anchors and run history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/benmcmorran/anamericanday/schema"
	"github.com/parquet-go/parquet-go"
)

// SeriesPoint is one stacked interval of one activity layer at one sample.
type SeriesPoint struct {
	Timescale   string  `parquet:"timescale,snappy,dict"`
	Demographic string  `parquet:"demographic,snappy,dict"`
	Activity    string  `parquet:"activity,snappy,dict"`
	StackIndex  int32   `parquet:"stack_index,snappy"`
	Index       int32   `parquet:"index,snappy"`
	Position    string  `parquet:"position,snappy"` // RFC3339 instant or age
	Low         float64 `parquet:"low,snappy"`
	High        float64 `parquet:"high,snappy"`
}

// LabelAnchor is the label anchor of one activity layer.
// This struct maps to the anamericanday_label_anchors database table.
type LabelAnchor struct {
	// RunID references the parent run; zero when exported outside a run
	RunID       int64    `parquet:"run_id,snappy"`
	Demographic string   `parquet:"demographic,snappy,dict"`
	Activity    string   `parquet:"activity,snappy,dict"`
	StackIndex  int32    `parquet:"stack_index,snappy"`
	Found       bool     `parquet:"found"`
	AnchorIndex *int32   `parquet:"anchor_index,optional,snappy"`
	AnchorValue *float64 `parquet:"anchor_value,optional,snappy"`
}

// BreakdownShare is the share of one activity in a breakdown.
type BreakdownShare struct {
	Timescale   string  `parquet:"timescale,snappy,dict"`
	Demographic string  `parquet:"demographic,snappy,dict"`
	Index       *int32  `parquet:"index,optional,snappy"` // Null when averaged
	Activity    string  `parquet:"activity,snappy,dict"`
	StackIndex  int32   `parquet:"stack_index,snappy"`
	Share       float64 `parquet:"share,snappy"`
}

// ExtractionRun represents a single extraction run with metadata.
// This struct maps to the anamericanday_runs database table.
type ExtractionRun struct {
	RunID         int64  `parquet:"run_id,snappy"`
	Timescale     string `parquet:"timescale,snappy,dict"`
	SourcePath    string `parquet:"source_path,snappy"`
	Reference     string `parquet:"reference,snappy,dict"`
	MissingPolicy string `parquet:"missing_policy,snappy,dict"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalRows       int32 `parquet:"total_rows,snappy"`
	DemographicsCnt int32 `parquet:"demographics_count,snappy"`
	ActivitiesCnt   int32 `parquet:"activities_count,snappy"`
}

// writeFile writes rows of any struct type to a Parquet file whose schema is
// derived from the struct tags.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return file.Close()
}

// WriteSeriesParquet writes stacked series points to a Parquet file.
func WriteSeriesParquet(data []SeriesPoint, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteLabelsParquet writes label anchors to a Parquet file.
func WriteLabelsParquet(data []LabelAnchor, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteBreakdownParquet writes breakdown shares to a Parquet file.
func WriteBreakdownParquet(data []BreakdownShare, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRunsParquet writes extraction runs to a Parquet file.
func WriteRunsParquet(data []ExtractionRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// SeriesPoints flattens the series of an extraction in stack order.
// An empty demographic selects every demographic in discovery order.
func SeriesPoints(ex *schema.Extraction, demographic string) []SeriesPoint {
	demographics := ex.Demographics
	if demographic != "" {
		demographics = []string{demographic}
	}

	var points []SeriesPoint
	for _, d := range demographics {
		series, ok := ex.Series[d]
		if !ok {
			continue
		}
		for _, layer := range series.InStackOrder() {
			for i, iv := range layer.Intervals {
				points = append(points, SeriesPoint{
					Timescale:   string(ex.Timescale),
					Demographic: d,
					Activity:    layer.Key,
					StackIndex:  int32(layer.Index),
					Index:       int32(i),
					Position:    series.Records[i].Position.String(),
					Low:         iv.Low(),
					High:        iv.High(),
				})
			}
		}
	}
	return points
}

// LabelAnchors converts a label result to rows outside of any run.
func LabelAnchors(result *schema.LabelResult) []LabelAnchor {
	rows := make([]LabelAnchor, len(result.Anchors))
	for i, anchor := range result.Anchors {
		row := LabelAnchor{
			Demographic: result.Demographic,
			Activity:    anchor.Activity,
			StackIndex:  int32(anchor.StackIndex),
			Found:       anchor.Found,
		}
		if anchor.Found {
			index := int32(anchor.Index)
			value := anchor.Value
			row.AnchorIndex = &index
			row.AnchorValue = &value
		}
		rows[i] = row
	}
	return rows
}

// BreakdownShares converts a breakdown result to rows, largest share first.
func BreakdownShares(result *schema.BreakdownResult) []BreakdownShare {
	var index *int32
	if result.Index != nil {
		i := int32(*result.Index)
		index = &i
	}
	rows := make([]BreakdownShare, len(result.Entries))
	for i, entry := range result.Entries {
		rows[i] = BreakdownShare{
			Timescale:   string(result.Timescale),
			Demographic: result.Demographic,
			Index:       index,
			Activity:    entry.Activity,
			StackIndex:  int32(entry.StackIndex),
			Share:       entry.Share,
		}
	}
	return rows
}

// ConvertRunRecords converts schema.RunRecord to ExtractionRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []ExtractionRun {
	result := make([]ExtractionRun, len(records))
	for i, record := range records {
		result[i] = ExtractionRun{
			RunID:           record.RunID,
			Timescale:       record.Timescale,
			SourcePath:      record.SourcePath,
			Reference:       record.Reference,
			MissingPolicy:   record.MissingPolicy,
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			RunDurationMs:   record.RunDurationMs,
			TotalRows:       record.TotalRows,
			DemographicsCnt: record.DemographicsCnt,
			ActivitiesCnt:   record.ActivitiesCnt,
		}
	}
	return result
}

// ConvertLabelRecords converts schema.LabelRecord to LabelAnchor for Parquet export.
func ConvertLabelRecords(records []schema.LabelRecord) []LabelAnchor {
	result := make([]LabelAnchor, len(records))
	for i, record := range records {
		result[i] = LabelAnchor{
			RunID:       record.RunID,
			Demographic: record.Demographic,
			Activity:    record.Activity,
			StackIndex:  record.StackIndex,
			Found:       record.Found,
			AnchorIndex: record.AnchorIndex,
			AnchorValue: record.AnchorValue,
		}
	}
	return result
}
