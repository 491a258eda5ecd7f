// Package algo has the pure numeric routines behind extraction and labeling.
package algo

import (
	"sort"
	"strings"

	"github.com/benmcmorran/anamericanday/schema"
	"gonum.org/v1/gonum/floats"
)

// DiscoverKeys scans column names once and returns the demographics and
// activities in first-seen order without duplicates. Each name is split on
// its first delimiter; names without a delimiter are skipped.
func DiscoverKeys(columns []string) (demographics []string, activities []string) {
	seenDemo := make(map[string]struct{})
	seenAct := make(map[string]struct{})
	for _, col := range columns {
		demographic, activity, ok := SplitColumn(col)
		if !ok {
			continue
		}
		if _, dup := seenDemo[demographic]; !dup {
			seenDemo[demographic] = struct{}{}
			demographics = append(demographics, demographic)
		}
		if _, dup := seenAct[activity]; !dup {
			seenAct[activity] = struct{}{}
			activities = append(activities, activity)
		}
	}
	return demographics, activities
}

// SplitColumn splits a column name into its demographic and activity parts.
func SplitColumn(col string) (demographic string, activity string, ok bool) {
	return strings.Cut(col, schema.KeyDelimiter)
}

// ColumnName joins a demographic and an activity into a column name.
func ColumnName(demographic, activity string) string {
	return demographic + schema.KeyDelimiter + activity
}

// SeriesSums returns the total of each layer's values.
func SeriesSums(values [][]float64) []float64 {
	sums := make([]float64, len(values))
	for i, v := range values {
		sums[i] = floats.Sum(v)
	}
	return sums
}

// OrderDescending returns layer indices sorted by sum, largest first.
// The sort is stable, so equal sums keep their original order.
func OrderDescending(sums []float64) []int {
	order := make([]int, len(sums))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sums[order[a]] > sums[order[b]]
	})
	return order
}

// StackWithOrder stacks values[layer][t] in the given order. order[0] sits on
// the bottom of the stack at 0; each following layer starts where the
// previous one ended. The result is indexed like values, not like order.
func StackWithOrder(values [][]float64, order []int) [][]schema.Interval {
	out := make([][]schema.Interval, len(values))
	n := 0
	for i, v := range values {
		out[i] = make([]schema.Interval, len(v))
		n = max(n, len(v))
	}
	for t := range n {
		base := 0.0
		for _, layer := range order {
			if t >= len(values[layer]) {
				continue
			}
			top := base + values[layer][t]
			out[layer][t] = schema.Interval{base, top}
			base = top
		}
	}
	return out
}

// StackPositions inverts an order: positions[layer] is the layer's height in the stack.
func StackPositions(order []int) []int {
	positions := make([]int, len(order))
	for pos, layer := range order {
		positions[layer] = pos
	}
	return positions
}
