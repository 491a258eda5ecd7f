package core

import (
	"github.com/benmcmorran/anamericanday/core/algo"
	"github.com/benmcmorran/anamericanday/schema"
)

// Labels finds the label anchor of every layer of a demographic, bottom to top.
// Layers whose runs never clear the threshold get an anchor with Found unset.
func Labels(ex *schema.Extraction, demographic string, threshold float64) (*schema.LabelResult, error) {
	series, err := SeriesFor(ex, demographic)
	if err != nil {
		return nil, err
	}

	result := &schema.LabelResult{
		Timescale:   ex.Timescale,
		Demographic: demographic,
		Threshold:   threshold,
	}
	for _, layer := range series.InStackOrder() {
		label := schema.LabelAnchor{Activity: layer.Key, StackIndex: layer.Index}
		if anchor, ok := algo.FindWidestRun(layer.Intervals, threshold); ok {
			label.Found = true
			label.Index = anchor.Index
			label.Value = anchor.Value
			pos := series.Records[anchor.Index].Position
			label.Position = &pos
		}
		result.Anchors = append(result.Anchors, label)
	}
	return result, nil
}
