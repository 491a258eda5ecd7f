package algo

import (
	"math"

	"github.com/benmcmorran/anamericanday/schema"
)

// DefaultLabelThreshold is the thickness a sample needs to be part of a label run.
const DefaultLabelThreshold = 0.05

// FindWidestRun finds the run of samples thicker than threshold with the
// largest accumulated thickness and returns its weighted centroid.
//
// A run closes on the first sample that is not thick, or on the last sample
// while still open. The closing sample does not count toward its own run.
// Accumulators are only reset when a run becomes the best; a run that loses
// keeps its area for the next one. The second return is false when no run
// was ever closed.
func FindWidestRun(series []schema.Interval, threshold float64) (schema.Anchor, bool) {
	var (
		found     bool
		bestArea  float64
		bestMid   int
		inRun     bool
		runStart  int
		newArea   float64
		newMoment float64
	)
	last := len(series) - 1

	for i, iv := range series {
		thickness := iv.Thickness()

		if !inRun && thickness > threshold {
			runStart = i
			inRun = true
		} else if inRun && (thickness <= threshold || i == last) {
			if !found || newArea > bestArea {
				found = true
				bestArea = newArea
				bestMid = centroid(newMoment, newArea, runStart, last)
				newArea, newMoment = 0, 0
			}
			inRun = false
		}

		if inRun {
			newArea += thickness
			newMoment += float64(i) * thickness
		}
	}

	if !found {
		return schema.Anchor{}, false
	}
	return schema.Anchor{Index: bestMid, Value: series[bestMid].Mid()}, true
}

// centroid is floor(moment / area), falling back to the run start for an empty
// area and clamped to the series bounds.
func centroid(moment, area float64, start, last int) int {
	if area == 0 {
		return start
	}
	mid := int(math.Floor(moment / area))
	return min(max(mid, 0), last)
}
