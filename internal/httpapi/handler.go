package httpapi

import (
	"fmt"
	"math"
	"strconv"

	"github.com/benmcmorran/anamericanday/core"
	"github.com/benmcmorran/anamericanday/core/view"
	"github.com/benmcmorran/anamericanday/schema"
	"github.com/gin-gonic/gin"
)

// Handler serves a dataset that was extracted once at startup.
type Handler struct {
	dataset   schema.Dataset
	threshold float64
}

// NewHandler creates a handler over an extracted dataset.
func NewHandler(dataset schema.Dataset, threshold float64) *Handler {
	return &Handler{dataset: dataset, threshold: threshold}
}

// seriesResponse is the body of GET /api/v1/series/:timescale.
type seriesResponse struct {
	Timescale schema.Timescale     `json:"timescale"`
	Reference string               `json:"reference"`
	Order     []string             `json:"order"`
	Series    schema.StackedSeries `json:"series"`
}

// viewRequest is the body of POST /api/v1/view.
type viewRequest struct {
	State view.State         `json:"state"`
	Event *view.EventPayload `json:"event"`
}

// viewResponse is the state after the event together with what it shows.
type viewResponse struct {
	State     view.State              `json:"state"`
	Breakdown *schema.BreakdownResult `json:"breakdown"`
}

// extraction resolves the :timescale path parameter.
func (h *Handler) extraction(c *gin.Context) (*schema.Extraction, bool) {
	ex, err := core.Lookup(h.dataset, schema.Timescale(c.Param("timescale")))
	if err != nil {
		failWith(c, err)
		return nil, false
	}
	return ex, true
}

// Timescales handles GET /api/v1/timescales
func (h *Handler) Timescales(c *gin.Context) {
	success(c, core.Summaries(h.dataset))
}

// Series handles GET /api/v1/series/:timescale
func (h *Handler) Series(c *gin.Context) {
	ex, ok := h.extraction(c)
	if !ok {
		return
	}
	series, err := core.SeriesFor(ex, c.DefaultQuery("demographic", schema.AggregateDemographic))
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, seriesResponse{
		Timescale: ex.Timescale,
		Reference: ex.Reference,
		Order:     ex.Order,
		Series:    series,
	})
}

// Labels handles GET /api/v1/labels/:timescale
func (h *Handler) Labels(c *gin.Context) {
	ex, ok := h.extraction(c)
	if !ok {
		return
	}
	threshold := h.threshold
	if raw := c.Query("threshold"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			badRequest(c, fmt.Sprintf("Invalid threshold parameter %q", raw))
			return
		}
		threshold = t
	}
	result, err := core.Labels(ex, c.DefaultQuery("demographic", schema.AggregateDemographic), threshold)
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, result)
}

// Breakdown handles GET /api/v1/breakdown/:timescale
func (h *Handler) Breakdown(c *gin.Context) {
	ex, ok := h.extraction(c)
	if !ok {
		return
	}
	var index *int
	if raw := c.Query("index"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, fmt.Sprintf("Invalid index parameter %q", raw))
			return
		}
		index = &i
	}
	result, err := core.Breakdown(ex, c.DefaultQuery("demographic", schema.AggregateDemographic), index)
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, result)
}

// View handles POST /api/v1/view. It applies an optional event to a state
// and answers with the next state and its breakdown.
func (h *Handler) View(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Sprintf("Invalid view request: %v", err))
		return
	}

	var event view.Event
	if req.Event != nil {
		e, err := req.Event.Event()
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		event = e
	}

	next := view.Update(req.State, event)
	if err := view.Validate(next, h.dataset); err != nil {
		badRequest(c, err.Error())
		return
	}
	ex, err := core.Lookup(h.dataset, next.Timescale)
	if err != nil {
		failWith(c, err)
		return
	}
	breakdown, err := core.Breakdown(ex, next.Demographic, next.Index)
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, viewResponse{State: next, Breakdown: breakdown})
}
