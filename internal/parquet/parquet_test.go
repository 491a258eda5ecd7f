package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmcmorran/anamericanday/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoSampleExtraction builds a small day extraction with two demographics.
func twoSampleExtraction() *schema.Extraction {
	start := time.Date(2001, 7, 4, 4, 0, 0, 0, time.UTC)
	records := []schema.Record{
		{Position: schema.TimePosition(start), Values: map[string]float64{"sleeping": 0.9, "work": 0.1}},
		{Position: schema.TimePosition(start.Add(time.Minute)), Values: map[string]float64{"sleeping": 0.8, "work": 0.2}},
	}
	return &schema.Extraction{
		Timescale:    schema.DayScale,
		Reference:    "all",
		Demographics: []string{"all", "male"},
		Activities:   []string{"work", "sleeping"},
		Order:        []string{"sleeping", "work"},
		Rows:         2,
		Series: map[string]schema.StackedSeries{
			"all": {
				Demographic: "all",
				Records:     records,
				Layers: []schema.Layer{
					{Key: "work", Index: 1, Intervals: []schema.Interval{{0.9, 1.0}, {0.8, 1.0}}},
					{Key: "sleeping", Index: 0, Intervals: []schema.Interval{{0, 0.9}, {0, 0.8}}},
				},
			},
			"male": {
				Demographic: "male",
				Records:     records,
				Layers: []schema.Layer{
					{Key: "work", Index: 1, Intervals: []schema.Interval{{0.9, 1.0}, {0.8, 1.0}}},
					{Key: "sleeping", Index: 0, Intervals: []schema.Interval{{0, 0.9}, {0, 0.8}}},
				},
			},
		},
	}
}

// readAll reads every row of a Parquet file.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"series", new(SeriesPoint), []string{"timescale", "demographic", "activity", "stack_index", "index", "position", "low", "high"}},
		{"labels", new(LabelAnchor), []string{"run_id", "demographic", "activity", "stack_index", "found", "anchor_index", "anchor_value"}},
		{"breakdown", new(BreakdownShare), []string{"timescale", "demographic", "index", "activity", "stack_index", "share"}},
		{"runs", new(ExtractionRun), []string{"run_id", "timescale", "source_path", "reference", "missing_policy", "start_time", "end_time", "run_duration_ms", "total_rows", "demographics_count", "activities_count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, colName := range tt.columns {
				_, ok := s.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestSeriesPoints(t *testing.T) {
	ex := twoSampleExtraction()

	all := SeriesPoints(ex, "")
	assert.Len(t, all, 8)

	male := SeriesPoints(ex, "male")
	require.Len(t, male, 4)
	// Bottom layer first, then samples in time order
	assert.Equal(t, "sleeping", male[0].Activity)
	assert.Equal(t, int32(0), male[0].StackIndex)
	assert.Equal(t, int32(1), male[1].Index)
	assert.Equal(t, "2001-07-04T04:01:00Z", male[1].Position)
	assert.Equal(t, "work", male[2].Activity)
	assert.InDelta(t, 0.9, male[2].Low, 1e-9)

	assert.Empty(t, SeriesPoints(ex, "female"))
}

func TestWriteSeriesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "series.parquet")
	data := SeriesPoints(twoSampleExtraction(), "all")

	require.NoError(t, WriteSeriesParquet(data, outputPath))

	readData := readAll[SeriesPoint](t, outputPath)
	assert.Equal(t, data, readData)
}

func TestWriteLabelsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "labels.parquet")
	result := &schema.LabelResult{
		Timescale:   schema.DayScale,
		Demographic: "all",
		Threshold:   0.05,
		Anchors: []schema.LabelAnchor{
			{Activity: "sleeping", StackIndex: 0, Found: true, Index: 12, Value: 0.9},
			{Activity: "work", StackIndex: 1},
		},
	}
	data := LabelAnchors(result)
	require.Len(t, data, 2)
	require.NotNil(t, data[0].AnchorIndex)
	assert.Equal(t, int32(12), *data[0].AnchorIndex)
	assert.Nil(t, data[1].AnchorValue)

	require.NoError(t, WriteLabelsParquet(data, outputPath))

	readData := readAll[LabelAnchor](t, outputPath)
	require.Len(t, readData, 2)
	assert.True(t, readData[0].Found)
	require.NotNil(t, readData[0].AnchorValue)
	assert.InDelta(t, 0.9, *readData[0].AnchorValue, 1e-9)
	assert.False(t, readData[1].Found)
	assert.Nil(t, readData[1].AnchorIndex)
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)

	data := ConvertRunRecords([]schema.RunRecord{
		{RunID: 1, Timescale: "day", SourcePath: "day.csv", Reference: "all", MissingPolicy: "zero",
			StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalRows: 1440, DemographicsCnt: 3, ActivitiesCnt: 12},
		{RunID: 2, Timescale: "week", SourcePath: "week.csv", Reference: "all", MissingPolicy: "strict", StartTime: start},
	})

	require.NoError(t, WriteRunsParquet(data, outputPath))

	readData := readAll[ExtractionRun](t, outputPath)
	require.Len(t, readData, 2)
	assert.Equal(t, int64(1), readData[0].RunID)
	assert.Equal(t, int32(1440), readData[0].TotalRows)
	require.NotNil(t, readData[0].EndTime)
	assert.WithinDuration(t, end, *readData[0].EndTime, time.Nanosecond)
	assert.Nil(t, readData[1].EndTime)
	assert.Nil(t, readData[1].RunDurationMs)
	assert.Equal(t, "strict", readData[1].MissingPolicy)
}

func TestWriteBreakdownParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "breakdown.parquet")
	idx := 3
	result := &schema.BreakdownResult{
		Timescale:   schema.WeekScale,
		Demographic: "female",
		Index:       &idx,
		Entries: []schema.BreakdownEntry{
			{Activity: "sleeping", StackIndex: 0, Share: 0.4},
			{Activity: "work", StackIndex: 1, Share: 0.2},
		},
	}
	data := BreakdownShares(result)
	require.NoError(t, WriteBreakdownParquet(data, outputPath))

	readData := readAll[BreakdownShare](t, outputPath)
	require.Len(t, readData, 2)
	require.NotNil(t, readData[1].Index)
	assert.Equal(t, int32(3), *readData[1].Index)
	assert.Equal(t, "work", readData[1].Activity)

	result.Index = nil
	for _, row := range BreakdownShares(result) {
		assert.Nil(t, row.Index)
	}
}

func TestConvertLabelRecords(t *testing.T) {
	idx := int32(4)
	val := 0.5
	rows := ConvertLabelRecords([]schema.LabelRecord{
		{RunID: 7, Demographic: "all", Activity: "work", StackIndex: 2, Found: true, AnchorIndex: &idx, AnchorValue: &val},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].RunID)
	assert.Equal(t, &idx, rows[0].AnchorIndex)
}

func TestWriteParquet_BadPath(t *testing.T) {
	err := WriteSeriesParquet(nil, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.Error(t, err)
}
