package core

import (
	"math"
	"testing"

	"github.com/benmcmorran/anamericanday/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTable has two demographics whose activity totals disagree on the order.
func sampleTable() schema.Table {
	return schema.Table{
		Columns: []string{"Minute", "all:sleeping", "all:work", "all:leisure", "male:sleeping", "male:work", "male:leisure"},
		Rows: []schema.Row{
			{"Minute": 0, "all:sleeping": .7, "all:work": .1, "all:leisure": .2, "male:sleeping": .1, "male:work": .8, "male:leisure": .1},
			{"Minute": 1, "all:sleeping": .5, "all:work": .3, "all:leisure": .2, "male:sleeping": .2, "male:work": .7, "male:leisure": .1},
			{"Minute": 2, "all:sleeping": .2, "all:work": .6, "all:leisure": .2, "male:sleeping": .1, "male:work": .6, "male:leisure": .3},
		},
	}
}

func TestExtract(t *testing.T) {
	ex, err := Extract(sampleTable(), DateFromMinute, ExtractOptions{Timescale: schema.DayScale})
	require.NoError(t, err)

	assert.Equal(t, []string{"all", "male"}, ex.Demographics)
	assert.Equal(t, []string{"sleeping", "work", "leisure"}, ex.Activities)
	assert.Equal(t, "all", ex.Reference)
	assert.Equal(t, 3, ex.Rows)
	assert.Equal(t, 0, ex.MissingCells)
	// all totals: sleeping 1.4, work 1.0, leisure .6
	assert.Equal(t, []string{"sleeping", "work", "leisure"}, ex.Order)

	all := ex.Series["all"]
	require.Len(t, all.Records, 3)
	assert.Equal(t, DateFromMinute(2), all.Records[2].Position)
	assert.InDelta(t, .6, all.Records[2].Values["work"], 1e-12)

	sleeping, ok := all.Layer("sleeping")
	require.True(t, ok)
	assert.Equal(t, 0, sleeping.Index)
	assert.Equal(t, schema.Interval{0, .7}, sleeping.Intervals[0])
}

func TestExtract_StackingPartitionsTotal(t *testing.T) {
	table := sampleTable()
	ex, err := Extract(table, DateFromMinute, ExtractOptions{})
	require.NoError(t, err)

	for _, d := range ex.Demographics {
		series := ex.Series[d]
		for i, row := range table.Rows {
			total := 0.0
			for _, a := range ex.Activities {
				total += row[d+":"+a]
			}
			prevHigh := 0.0
			for _, layer := range series.InStackOrder() {
				iv := layer.Intervals[i]
				assert.InDelta(t, prevHigh, iv.Low(), 1e-12, "%s layer %s at %d", d, layer.Key, i)
				assert.InDelta(t, row[d+":"+layer.Key], iv.Thickness(), 1e-12)
				prevHigh = iv.High()
			}
			assert.InDelta(t, total, prevHigh, 1e-12)
		}
	}
}

func TestExtract_OrderPinnedAcrossDemographics(t *testing.T) {
	ex, err := Extract(sampleTable(), DateFromMinute, ExtractOptions{})
	require.NoError(t, err)

	// male alone would put work at the bottom; the order from "all" wins.
	for _, d := range ex.Demographics {
		series := ex.Series[d]
		var keys []string
		for _, layer := range series.InStackOrder() {
			keys = append(keys, layer.Key)
		}
		assert.Equal(t, ex.Order, keys, d)
	}
	male := ex.Series["male"]
	work, _ := male.Layer("work")
	assert.Equal(t, 1, work.Index)
}

func TestExtract_Reference(t *testing.T) {
	ex, err := Extract(sampleTable(), DateFromMinute, ExtractOptions{Reference: "male"})
	require.NoError(t, err)
	assert.Equal(t, "male", ex.Reference)
	assert.Equal(t, []string{"work", "leisure", "sleeping"}, ex.Order)

	ex, err = Extract(sampleTable(), DateFromMinute, ExtractOptions{Reference: "retired"})
	require.NoError(t, err)
	assert.Equal(t, "all", ex.Reference, "falls back to the first demographic")

	table := schema.Table{
		Columns: []string{"female:a", "female:b"},
		Rows:    []schema.Row{{"female:a": .1, "female:b": .9}},
	}
	ex, err = Extract(table, AgeFromIndex, ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, "female", ex.Reference)
	assert.Equal(t, []string{"b", "a"}, ex.Order)
}

func TestExtract_ZeroRows(t *testing.T) {
	table := schema.Table{Columns: []string{"all:x", "all:y", "male:x"}}
	ex, err := Extract(table, DateFromMinute, ExtractOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, ex.Rows)
	require.Len(t, ex.Series, 2)
	for _, d := range []string{"all", "male"} {
		series := ex.Series[d]
		assert.Empty(t, series.Records)
		require.Len(t, series.Layers, 2)
		for _, layer := range series.Layers {
			assert.Empty(t, layer.Intervals)
		}
	}
}

func TestExtract_NoKeyedColumns(t *testing.T) {
	table := schema.Table{Columns: []string{"Minute"}, Rows: []schema.Row{{"Minute": 0}}}
	ex, err := Extract(table, DateFromMinute, ExtractOptions{})
	require.NoError(t, err)
	assert.Empty(t, ex.Demographics)
	assert.Empty(t, ex.Series)
	assert.Empty(t, ex.Order)
}

func TestExtract_MissingCells(t *testing.T) {
	table := schema.Table{
		Columns: []string{"all:x", "all:y", "male:x"},
		Rows: []schema.Row{
			{"all:x": .5, "all:y": math.NaN(), "male:x": 1},
		},
	}

	ex, err := Extract(table, DateFromMinute, ExtractOptions{Missing: schema.MissingZero})
	require.NoError(t, err)
	// all:y is NaN and male:y was never a column.
	assert.Equal(t, 2, ex.MissingCells)
	male := ex.Series["male"]
	y, ok := male.Layer("y")
	require.True(t, ok)
	assert.Equal(t, 0.0, y.Intervals[0].Thickness())

	_, err = Extract(table, DateFromMinute, ExtractOptions{Missing: schema.MissingStrict})
	assert.ErrorIs(t, err, ErrMissingCell)
}

func TestExtract_Deterministic(t *testing.T) {
	first, err := Extract(sampleTable(), DateFromMinute, ExtractOptions{})
	require.NoError(t, err)
	second, err := Extract(sampleTable(), DateFromMinute, ExtractOptions{})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("extraction not deterministic (-first +second):\n%s", diff)
	}
}

func TestCombine(t *testing.T) {
	tables := map[schema.Timescale]schema.Table{
		schema.DayScale:      sampleTable(),
		schema.LifetimeScale: sampleTable(),
	}
	dataset, err := Combine(tables, ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, dataset, 2)

	life, err := Lookup(dataset, schema.LifetimeScale)
	require.NoError(t, err)
	assert.Equal(t, schema.LifetimeScale, life.Timescale)
	assert.Equal(t, schema.NumberPosition(17), life.Series["all"].Records[2].Position)

	_, err = Lookup(dataset, schema.WeekScale)
	assert.ErrorIs(t, err, ErrUnknownTimescale)

	_, err = SeriesFor(life, "female")
	assert.ErrorIs(t, err, ErrUnknownDemographic)
}
