// Package schema has configs, models and global variables for all parts of anamericanday.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Row is one raw sample: column name to numeric value.
type Row map[string]float64

// Table is a row-oriented dataset whose rows all share Columns.
// Row order is the time order of the samples.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Position is where a sample sits on its timescale axis. Day, week and year
// datasets map to an instant; the lifetime dataset maps to an age in years.
type Position struct {
	Time    time.Time
	Number  float64
	Numeric bool
}

// TimePosition wraps an instant.
func TimePosition(t time.Time) Position {
	return Position{Time: t}
}

// NumberPosition wraps a plain number such as an age.
func NumberPosition(n float64) Position {
	return Position{Number: n, Numeric: true}
}

// String renders the position the way it is written to CSV and tables.
func (p Position) String() string {
	if p.Numeric {
		return fmt.Sprintf("%g", p.Number)
	}
	return p.Time.Format(time.RFC3339)
}

// MarshalJSON encodes an instant as an RFC3339 string and a number as a JSON number.
func (p Position) MarshalJSON() ([]byte, error) {
	if p.Numeric {
		return json.Marshal(p.Number)
	}
	return json.Marshal(p.Time.Format(time.RFC3339))
}

// UnmarshalJSON accepts either form produced by MarshalJSON.
func (p *Position) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", s, err)
		}
		*p = TimePosition(t)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid position %s: %w", string(data), err)
	}
	*p = NumberPosition(n)
	return nil
}

// Interval is one stacked [low, high] pair.
type Interval [2]float64

// Low is the bottom edge of the interval.
func (iv Interval) Low() float64 { return iv[0] }

// High is the top edge of the interval.
func (iv Interval) High() float64 { return iv[1] }

// Thickness is high - low.
func (iv Interval) Thickness() float64 { return iv[1] - iv[0] }

// Mid is the vertical center of the interval.
func (iv Interval) Mid() float64 { return (iv[0] + iv[1]) / 2 }

// Record is one time-indexed sample of a single demographic.
type Record struct {
	Position Position           `json:"position"`
	Values   map[string]float64 `json:"values"`
}

// Layer is the stacked series of one activity.
type Layer struct {
	Key       string     `json:"key"`   // Activity key
	Index     int        `json:"index"` // Position in the stack, 0 is the bottom
	Intervals []Interval `json:"intervals"`
}

// StackedSeries holds the records and stacked layers of one demographic.
// Layers are kept in first-seen activity order.
type StackedSeries struct {
	Demographic string   `json:"demographic"`
	Records     []Record `json:"records"`
	Layers      []Layer  `json:"layers"`
}

// Layer returns the layer of an activity.
func (s StackedSeries) Layer(activity string) (Layer, bool) {
	for _, l := range s.Layers {
		if l.Key == activity {
			return l, true
		}
	}
	return Layer{}, false
}

// InStackOrder returns the layers from the bottom of the stack to the top.
func (s StackedSeries) InStackOrder() []Layer {
	layers := make([]Layer, len(s.Layers))
	copy(layers, s.Layers)
	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].Index < layers[j].Index
	})
	return layers
}

// Len is the number of time samples in the series.
func (s StackedSeries) Len() int {
	return len(s.Records)
}

// Extraction is the immutable result of extracting one dataset.
type Extraction struct {
	Timescale    Timescale                `json:"timescale"`
	Reference    string                   `json:"reference"`
	Demographics []string                 `json:"demographics"`
	Activities   []string                 `json:"activities"`
	Order        []string                 `json:"order"` // Activity keys bottom-to-top
	Series       map[string]StackedSeries `json:"series"`
	Rows         int                      `json:"rows"`
	MissingCells int                      `json:"missing_cells"`
}

// HasDemographic reports whether the demographic was discovered.
func (e *Extraction) HasDemographic(demographic string) bool {
	_, ok := e.Series[demographic]
	return ok
}

// Dataset groups the extractions of every timescale.
type Dataset map[Timescale]*Extraction

// ExtractionSummary is a lightweight description of an extraction.
type ExtractionSummary struct {
	Timescale    Timescale `json:"timescale"`
	Reference    string    `json:"reference"`
	Demographics []string  `json:"demographics"`
	Activities   []string  `json:"activities"`
	Order        []string  `json:"order"`
	Rows         int       `json:"rows"`
}

// Summary returns the summary of the extraction.
func (e *Extraction) Summary() ExtractionSummary {
	return ExtractionSummary{
		Timescale:    e.Timescale,
		Reference:    e.Reference,
		Demographics: e.Demographics,
		Activities:   e.Activities,
		Order:        e.Order,
		Rows:         e.Rows,
	}
}
