package core

import (
	"testing"

	"github.com/benmcmorran/anamericanday/core/algo"
	"github.com/benmcmorran/anamericanday/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelTable() schema.Table {
	thin := []float64{.01, .01, .3, .3, .3, .01}
	table := schema.Table{Columns: []string{"all:reading", "all:rest"}}
	for _, v := range thin {
		table.Rows = append(table.Rows, schema.Row{"all:reading": v, "all:rest": 1 - v})
	}
	return table
}

func TestLabels(t *testing.T) {
	ex, err := Extract(labelTable(), DateFromMinute, ExtractOptions{Timescale: schema.DayScale})
	require.NoError(t, err)

	result, err := Labels(ex, "all", algo.DefaultLabelThreshold)
	require.NoError(t, err)
	assert.Equal(t, "all", result.Demographic)
	require.Len(t, result.Anchors, 2)

	// rest is larger so it sits at the bottom.
	rest := result.Anchors[0]
	assert.Equal(t, "rest", rest.Activity)
	assert.Equal(t, 0, rest.StackIndex)

	reading := result.Anchors[1]
	assert.Equal(t, "reading", reading.Activity)
	assert.Equal(t, 1, reading.StackIndex)
	require.True(t, reading.Found)
	assert.Equal(t, 3, reading.Index)
	// Interval at index 3 is [.7, 1.0].
	assert.InDelta(t, .85, reading.Value, 1e-9)
	require.NotNil(t, reading.Position)
	assert.Equal(t, DateFromMinute(3), *reading.Position)
}

func TestLabels_NotFound(t *testing.T) {
	table := schema.Table{
		Columns: []string{"all:tiny", "all:rest"},
		Rows: []schema.Row{
			{"all:tiny": .01, "all:rest": .99},
			{"all:tiny": .02, "all:rest": .98},
		},
	}
	ex, err := Extract(table, AgeFromIndex, ExtractOptions{Timescale: schema.LifetimeScale})
	require.NoError(t, err)

	result, err := Labels(ex, "all", algo.DefaultLabelThreshold)
	require.NoError(t, err)
	for _, anchor := range result.Anchors {
		if anchor.Activity == "tiny" {
			assert.False(t, anchor.Found)
			assert.Nil(t, anchor.Position)
		}
	}
}

func TestLabels_UnknownDemographic(t *testing.T) {
	ex, err := Extract(labelTable(), DateFromMinute, ExtractOptions{})
	require.NoError(t, err)
	_, err = Labels(ex, "male", algo.DefaultLabelThreshold)
	assert.ErrorIs(t, err, ErrUnknownDemographic)
}
