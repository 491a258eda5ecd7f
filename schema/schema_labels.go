package schema

// Anchor is the label point of one stacked layer.
type Anchor struct {
	Index int     `json:"index"` // Time index of the run centroid
	Value float64 `json:"value"` // Vertical center of the interval at Index
}

// LabelAnchor is the anchor of one activity layer, or its absence.
type LabelAnchor struct {
	Activity   string    `json:"activity"`
	StackIndex int       `json:"stack_index"`
	Found      bool      `json:"found"`
	Index      int       `json:"index,omitempty"`
	Value      float64   `json:"value,omitempty"`
	Position   *Position `json:"position,omitempty"`
}

// LabelResult holds the anchors of one demographic in stack order.
type LabelResult struct {
	Timescale   Timescale     `json:"timescale"`
	Demographic string        `json:"demographic"`
	Threshold   float64       `json:"threshold"`
	Anchors     []LabelAnchor `json:"anchors"`
}

// BreakdownEntry is the share of time spent on one activity.
type BreakdownEntry struct {
	Activity   string  `json:"activity"`
	StackIndex int     `json:"stack_index"`
	Share      float64 `json:"share"`
}

// BreakdownResult holds the shares of one demographic, largest first.
// Index is nil when shares are averaged across the whole timescale.
type BreakdownResult struct {
	Timescale   Timescale        `json:"timescale"`
	Demographic string           `json:"demographic"`
	Index       *int             `json:"index,omitempty"`
	Heading     string           `json:"heading"`
	Entries     []BreakdownEntry `json:"entries"`
}
