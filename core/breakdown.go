package core

import (
	"fmt"
	"sort"

	"github.com/benmcmorran/anamericanday/schema"
	"gonum.org/v1/gonum/stat"
)

// Breakdown returns the share of every activity of a demographic, largest first.
// With a nil index the shares are averaged over the whole timescale; otherwise
// they are read at that time index. Ties keep stack order.
func Breakdown(ex *schema.Extraction, demographic string, index *int) (*schema.BreakdownResult, error) {
	series, err := SeriesFor(ex, demographic)
	if err != nil {
		return nil, err
	}
	if index != nil && (*index < 0 || *index >= series.Len()) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, *index, series.Len())
	}

	result := &schema.BreakdownResult{
		Timescale:   ex.Timescale,
		Demographic: demographic,
		Entries:     make([]schema.BreakdownEntry, 0, len(series.Layers)),
	}

	var pos *schema.Position
	if index != nil {
		i := *index
		result.Index = &i
		p := series.Records[i].Position
		pos = &p
	}
	result.Heading = Describe(ex.Timescale, pos)

	for _, layer := range series.InStackOrder() {
		entry := schema.BreakdownEntry{Activity: layer.Key, StackIndex: layer.Index}
		if index != nil {
			entry.Share = layer.Intervals[*index].Thickness()
		} else {
			entry.Share = meanThickness(layer.Intervals)
		}
		result.Entries = append(result.Entries, entry)
	}
	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].Share > result.Entries[j].Share
	})
	return result, nil
}

func meanThickness(intervals []schema.Interval) float64 {
	if len(intervals) == 0 {
		return 0
	}
	thickness := make([]float64, len(intervals))
	for i, iv := range intervals {
		thickness[i] = iv.Thickness()
	}
	return stat.Mean(thickness, nil)
}
