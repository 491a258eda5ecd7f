package outwriter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExtraction() *schema.Extraction {
	start := time.Date(2001, 7, 4, 4, 0, 0, 0, time.UTC)
	records := []schema.Record{
		{Position: schema.TimePosition(start), Values: map[string]float64{"sleeping": 0.9, "work": 0.1}},
		{Position: schema.TimePosition(start.Add(time.Minute)), Values: map[string]float64{"sleeping": 0.6, "work": 0.4}},
	}
	layers := []schema.Layer{
		{Key: "work", Index: 1, Intervals: []schema.Interval{{0.9, 1.0}, {0.6, 1.0}}},
		{Key: "sleeping", Index: 0, Intervals: []schema.Interval{{0, 0.9}, {0, 0.6}}},
	}
	return &schema.Extraction{
		Timescale:    schema.DayScale,
		Reference:    "all",
		Demographics: []string{"all", "male"},
		Activities:   []string{"work", "sleeping"},
		Order:        []string{"sleeping", "work"},
		Rows:         2,
		Series: map[string]schema.StackedSeries{
			"all":  {Demographic: "all", Records: records, Layers: layers},
			"male": {Demographic: "male", Records: records, Layers: layers},
		},
	}
}

func testConfig(t *testing.T, output schema.OutputMode, file string) *contract.Config {
	t.Helper()
	cfg := &contract.Config{
		Precision:    2,
		Output:       output,
		Width:        120,
		CacheBackend: schema.NoneBackend,
	}
	if file != "" {
		cfg.OutputFile = filepath.Join(t.TempDir(), file)
	}
	return cfg
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestGetMaxTableLabelWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 40, expected: 12},
		{width: 90, expected: 30},
		{width: 300, expected: 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxTableLabelWidth(&contract.Config{Width: tt.width}))
	}
}

func TestHeadingAndShareLabel(t *testing.T) {
	assert.Equal(t, "📊 title", heading(&contract.Config{UseEmojis: true}, "📊", "title"))
	assert.Equal(t, "title", heading(&contract.Config{}, "📊", "title"))
	assert.Equal(t, contract.DominantValue, shareLabel(&contract.Config{}, 0.5))
}

func TestSummarizeLayer(t *testing.T) {
	summary := summarizeLayer(schema.Layer{Intervals: []schema.Interval{{0, 0.2}, {0.1, 0.7}, {0.5, 0.6}}})
	assert.InDelta(t, 0.3, summary.mean, 1e-9)
	assert.InDelta(t, 0.6, summary.peak, 1e-9)
	assert.Equal(t, 1, summary.peakIdx)

	assert.Equal(t, -1, summarizeLayer(schema.Layer{}).peakIdx)
}

func TestWriteExtraction(t *testing.T) {
	ow := NewOutWriter()

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut, "series.csv")
		require.NoError(t, ow.WriteExtraction(testExtraction(), cfg, time.Second))

		lines := strings.Split(strings.TrimSpace(readOutput(t, cfg.OutputFile)), "\n")
		require.Len(t, lines, 9) // header + 2 demographics x 2 layers x 2 samples
		assert.Equal(t, "demographic,activity,stack_index,index,position,low,high", lines[0])
		assert.Equal(t, "all,sleeping,0,0,2001-07-04T04:00:00Z,0.00,0.90", lines[1])
		assert.Equal(t, "all,work,1,1,2001-07-04T04:01:00Z,0.60,1.00", lines[4])
	})

	t.Run("json filtered", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut, "series.json")
		cfg.Demographic = "male"
		require.NoError(t, ow.WriteExtraction(testExtraction(), cfg, time.Second))

		var decoded schema.Extraction
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg.OutputFile)), &decoded))
		assert.Equal(t, []string{"male"}, decoded.Demographics)
		assert.Len(t, decoded.Series, 1)
		assert.Contains(t, decoded.Series, "male")
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := testConfig(t, schema.ParquetOut, "series.parquet")
		require.NoError(t, ow.WriteExtraction(testExtraction(), cfg, time.Second))
		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut, "series.txt")
		require.NoError(t, ow.WriteExtraction(testExtraction(), cfg, time.Second))

		out := readOutput(t, cfg.OutputFile)
		assert.Contains(t, out, "day timescale, stacked by all")
		assert.Contains(t, out, "sleeping")
		assert.Contains(t, out, "0.75") // mean of sleeping
		assert.Contains(t, out, "Extracted 2 rows, 2 demographics and 2 activities")
	})
}

func TestFilterExtraction(t *testing.T) {
	ex := testExtraction()
	assert.Same(t, ex, filterExtraction(ex, ""))

	missing := filterExtraction(ex, "female")
	assert.Empty(t, missing.Demographics)
	assert.Empty(t, missing.Series)
	assert.Len(t, ex.Series, 2, "the original is left untouched")
}

func testLabels() *schema.LabelResult {
	pos := schema.TimePosition(time.Date(2001, 7, 4, 4, 1, 0, 0, time.UTC))
	return &schema.LabelResult{
		Timescale:   schema.DayScale,
		Demographic: "all",
		Threshold:   0.05,
		Anchors: []schema.LabelAnchor{
			{Activity: "sleeping", StackIndex: 0, Found: true, Index: 1, Value: 0.3, Position: &pos},
			{Activity: "work", StackIndex: 1},
		},
	}
}

func TestWriteLabels(t *testing.T) {
	ow := NewOutWriter()

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut, "labels.csv")
		require.NoError(t, ow.WriteLabels(testLabels(), cfg, time.Second))

		lines := strings.Split(strings.TrimSpace(readOutput(t, cfg.OutputFile)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "day,all,sleeping,0,true,1,0.30,2001-07-04T04:01:00Z", lines[1])
		assert.Equal(t, "day,all,work,1,false,,,", lines[2])
	})

	t.Run("text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut, "labels.txt")
		require.NoError(t, ow.WriteLabels(testLabels(), cfg, time.Second))
		out := readOutput(t, cfg.OutputFile)
		assert.Contains(t, out, "Label anchors for all")
		assert.Contains(t, out, "Found 1 of 2 anchors")
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := testConfig(t, schema.ParquetOut, "labels.parquet")
		require.NoError(t, ow.WriteLabels(testLabels(), cfg, time.Second))
		_, err := os.Stat(cfg.OutputFile)
		assert.NoError(t, err)
	})
}

func testBreakdown() *schema.BreakdownResult {
	idx := 0
	return &schema.BreakdownResult{
		Timescale:   schema.DayScale,
		Demographic: "all",
		Index:       &idx,
		Heading:     "At 4:00 AM",
		Entries: []schema.BreakdownEntry{
			{Activity: "sleeping", StackIndex: 0, Share: 0.9},
			{Activity: "work", StackIndex: 1, Share: 0.1},
		},
	}
}

func TestWriteBreakdown(t *testing.T) {
	ow := NewOutWriter()

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut, "breakdown.csv")
		require.NoError(t, ow.WriteBreakdown(testBreakdown(), cfg, time.Second))

		lines := strings.Split(strings.TrimSpace(readOutput(t, cfg.OutputFile)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "timescale,demographic,index,heading,activity,stack_index,share,label", lines[0])
		assert.Equal(t, "day,all,0,At 4:00 AM,sleeping,0,0.90,Dominant", lines[1])
	})

	t.Run("text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut, "breakdown.txt")
		require.NoError(t, ow.WriteBreakdown(testBreakdown(), cfg, time.Second))
		out := readOutput(t, cfg.OutputFile)
		assert.Contains(t, out, "At 4:00 AM, all spend their time like this")
		assert.Contains(t, out, "90%")
		assert.Contains(t, out, "Computed 2 shares")
	})

	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut, "breakdown.json")
		require.NoError(t, ow.WriteBreakdown(testBreakdown(), cfg, time.Second))

		var decoded schema.BreakdownResult
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg.OutputFile)), &decoded))
		require.NotNil(t, decoded.Index)
		assert.Equal(t, "sleeping", decoded.Entries[0].Activity)
	})

	t.Run("bad path", func(t *testing.T) {
		cfg := testConfig(t, schema.ParquetOut, "")
		cfg.OutputFile = filepath.Join(t.TempDir(), "missing", "breakdown.parquet")
		assert.Error(t, ow.WriteBreakdown(testBreakdown(), cfg, time.Second))
	})
}
