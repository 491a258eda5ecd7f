package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/benmcmorran/anamericanday/core/algo"
	"github.com/benmcmorran/anamericanday/schema"
)

// Lookup errors returned by the core.
var (
	ErrUnknownTimescale   = errors.New("unknown timescale")
	ErrUnknownDemographic = errors.New("unknown demographic")
	ErrIndexOutOfRange    = errors.New("time index out of range")
	ErrMissingCell        = errors.New("missing cell")
)

// ExtractOptions tunes a single extraction.
type ExtractOptions struct {
	Timescale schema.Timescale
	Reference string               // Demographic that pins the stack order, "all" when empty
	Missing   schema.MissingPolicy // "zero" when empty
}

// Extract turns a raw table into stacked series for every demographic.
//
// The stack order is computed once from the reference demographic and then
// applied to every other demographic, so a layer sits at the same height no
// matter which demographic is shown.
func Extract(table schema.Table, mapper IndexMapper, opts ExtractOptions) (*schema.Extraction, error) {
	demographics, activities := algo.DiscoverKeys(table.Columns)

	ex := &schema.Extraction{
		Timescale:    opts.Timescale,
		Demographics: demographics,
		Activities:   activities,
		Series:       make(map[string]schema.StackedSeries, len(demographics)),
		Rows:         len(table.Rows),
	}
	if len(demographics) == 0 {
		ex.Order = []string{}
		return ex, nil
	}

	// values[demographic][activity][t]
	values := make(map[string][][]float64, len(demographics))
	records := make(map[string][]schema.Record, len(demographics))
	for _, d := range demographics {
		layers := make([][]float64, len(activities))
		for a := range layers {
			layers[a] = make([]float64, len(table.Rows))
		}
		values[d] = layers
		records[d] = make([]schema.Record, len(table.Rows))
	}

	for i, row := range table.Rows {
		pos := mapper(i)
		for _, d := range demographics {
			rec := schema.Record{Position: pos, Values: make(map[string]float64, len(activities))}
			for a, activity := range activities {
				v, ok := row[algo.ColumnName(d, activity)]
				if !ok || math.IsNaN(v) {
					if opts.Missing == schema.MissingStrict {
						return nil, fmt.Errorf("%w: row %d column %q", ErrMissingCell, i, algo.ColumnName(d, activity))
					}
					ex.MissingCells++
					v = 0
				}
				rec.Values[activity] = v
				values[d][a][i] = v
			}
			records[d][i] = rec
		}
	}

	ex.Reference = resolveReference(opts.Reference, demographics)
	order := algo.OrderDescending(algo.SeriesSums(values[ex.Reference]))
	positions := algo.StackPositions(order)

	ex.Order = make([]string, len(order))
	for pos, a := range order {
		ex.Order[pos] = activities[a]
	}

	for _, d := range demographics {
		stacked := algo.StackWithOrder(values[d], order)
		layers := make([]schema.Layer, len(activities))
		for a, activity := range activities {
			layers[a] = schema.Layer{
				Key:       activity,
				Index:     positions[a],
				Intervals: stacked[a],
			}
		}
		ex.Series[d] = schema.StackedSeries{
			Demographic: d,
			Records:     records[d],
			Layers:      layers,
		}
	}
	return ex, nil
}

// resolveReference falls back to the first demographic when the requested one is absent.
func resolveReference(reference string, demographics []string) string {
	if reference == "" {
		reference = schema.AggregateDemographic
	}
	for _, d := range demographics {
		if d == reference {
			return reference
		}
	}
	return demographics[0]
}

// SeriesFor returns the stacked series of a demographic.
func SeriesFor(ex *schema.Extraction, demographic string) (schema.StackedSeries, error) {
	series, ok := ex.Series[demographic]
	if !ok {
		return schema.StackedSeries{}, fmt.Errorf("%w: %q", ErrUnknownDemographic, demographic)
	}
	return series, nil
}

// Combine extracts every table with the mapper of its timescale.
func Combine(tables map[schema.Timescale]schema.Table, opts ExtractOptions) (schema.Dataset, error) {
	dataset := make(schema.Dataset, len(tables))
	for _, ts := range schema.AllTimescales {
		table, ok := tables[ts]
		if !ok {
			continue
		}
		mapper, err := MapperFor(ts)
		if err != nil {
			return nil, err
		}
		tsOpts := opts
		tsOpts.Timescale = ts
		ex, err := Extract(table, mapper, tsOpts)
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", ts, err)
		}
		dataset[ts] = ex
	}
	return dataset, nil
}

// Lookup returns the extraction of a timescale from a dataset.
func Lookup(dataset schema.Dataset, ts schema.Timescale) (*schema.Extraction, error) {
	ex, ok := dataset[ts]
	if !ok || ex == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimescale, ts)
	}
	return ex, nil
}

// Summaries describes every loaded timescale in display order.
func Summaries(dataset schema.Dataset) []schema.ExtractionSummary {
	summaries := make([]schema.ExtractionSummary, 0, len(dataset))
	for _, ts := range schema.AllTimescales {
		if ex, ok := dataset[ts]; ok && ex != nil {
			summaries = append(summaries, ex.Summary())
		}
	}
	return summaries
}
