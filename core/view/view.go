// Package view has the selection state of a visualization and its transitions.
package view

import (
	"fmt"

	"github.com/benmcmorran/anamericanday/schema"
)

// State is what a viewer currently has selected. The zero value shows the
// aggregate demographic of the day timescale, averaged, with no activity focused.
type State struct {
	Timescale   schema.Timescale `json:"timescale,omitempty"`
	Demographic string           `json:"demographic,omitempty"`
	Activity    string           `json:"activity,omitempty"` // Focused activity, empty for none
	Index       *int             `json:"index,omitempty"`    // Cursor position, nil when averaged
}

// Normalize fills the defaults of a zero State.
func (s State) Normalize() State {
	if s.Timescale == "" {
		s.Timescale = schema.DayScale
	}
	if s.Demographic == "" {
		s.Demographic = schema.AggregateDemographic
	}
	return s
}

// Event is a transition from one State to the next.
type Event interface {
	apply(State) State
}

// SelectTimescale switches the timescale. The cursor is cleared since indices
// do not carry over between timescales.
type SelectTimescale struct {
	Timescale schema.Timescale
}

func (e SelectTimescale) apply(s State) State {
	if e.Timescale == s.Timescale {
		return s
	}
	s.Timescale = e.Timescale
	s.Index = nil
	return s
}

// SelectDemographic switches the demographic.
type SelectDemographic struct {
	Demographic string
}

func (e SelectDemographic) apply(s State) State {
	s.Demographic = e.Demographic
	return s
}

// ToggleActivity focuses an activity, or clears the focus when it is already focused.
type ToggleActivity struct {
	Activity string
}

func (e ToggleActivity) apply(s State) State {
	if s.Activity == e.Activity {
		s.Activity = ""
	} else {
		s.Activity = e.Activity
	}
	return s
}

// MoveCursor points the cursor at a time index.
type MoveCursor struct {
	Index int
}

func (e MoveCursor) apply(s State) State {
	i := e.Index
	s.Index = &i
	return s
}

// ClearCursor returns to the averaged view.
type ClearCursor struct{}

func (ClearCursor) apply(s State) State {
	s.Index = nil
	return s
}

// Update applies an event to a state and returns the next state.
// The input state is never modified.
func Update(s State, e Event) State {
	s = s.Normalize()
	if s.Index != nil {
		i := *s.Index
		s.Index = &i
	}
	if e == nil {
		return s
	}
	return e.apply(s)
}

// Validate checks that everything a state refers to exists in the dataset.
func Validate(s State, dataset schema.Dataset) error {
	s = s.Normalize()
	if _, ok := schema.ValidTimescales[s.Timescale]; !ok {
		return fmt.Errorf("unknown timescale %q", s.Timescale)
	}
	ex, ok := dataset[s.Timescale]
	if !ok || ex == nil {
		return fmt.Errorf("timescale %q is not loaded", s.Timescale)
	}
	series, ok := ex.Series[s.Demographic]
	if !ok {
		return fmt.Errorf("unknown demographic %q", s.Demographic)
	}
	if s.Activity != "" {
		if _, ok := series.Layer(s.Activity); !ok {
			return fmt.Errorf("unknown activity %q", s.Activity)
		}
	}
	if s.Index != nil && (*s.Index < 0 || *s.Index >= series.Len()) {
		return fmt.Errorf("index %d out of range [0, %d)", *s.Index, series.Len())
	}
	return nil
}

// Event type names used by EventPayload.
const (
	SelectTimescaleEvent   = "select_timescale"
	SelectDemographicEvent = "select_demographic"
	ToggleActivityEvent    = "toggle_activity"
	MoveCursorEvent        = "move_cursor"
	ClearCursorEvent       = "clear_cursor"
)

// EventPayload is the wire form of an Event.
type EventPayload struct {
	Type        string           `json:"type"`
	Timescale   schema.Timescale `json:"timescale,omitempty"`
	Demographic string           `json:"demographic,omitempty"`
	Activity    string           `json:"activity,omitempty"`
	Index       int              `json:"index,omitempty"`
}

// Event converts the payload to its Event.
func (p EventPayload) Event() (Event, error) {
	switch p.Type {
	case SelectTimescaleEvent:
		if _, ok := schema.ValidTimescales[p.Timescale]; !ok {
			return nil, fmt.Errorf("unknown timescale %q", p.Timescale)
		}
		return SelectTimescale{Timescale: p.Timescale}, nil
	case SelectDemographicEvent:
		if p.Demographic == "" {
			return nil, fmt.Errorf("%s needs a demographic", p.Type)
		}
		return SelectDemographic{Demographic: p.Demographic}, nil
	case ToggleActivityEvent:
		if p.Activity == "" {
			return nil, fmt.Errorf("%s needs an activity", p.Type)
		}
		return ToggleActivity{Activity: p.Activity}, nil
	case MoveCursorEvent:
		return MoveCursor{Index: p.Index}, nil
	case ClearCursorEvent:
		return ClearCursor{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", p.Type)
	}
}
