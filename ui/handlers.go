package ui

import (
	"fmt"
	"net/http"
	"strconv"

	"casesim/app"
	"casesim/domain/core"
	apperrors "casesim/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps domain sentinels to stable codes and HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	code := apperrors.CodeFor(err)
	status := http.StatusInternalServerError
	switch {
	case code == "NOT_FOUND":
		status = http.StatusNotFound
	case apperrors.IsValidation(err):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Error("request failed: %v", err)
	}
	c.JSON(status, errorBody{Code: code, Message: err.Error()})
}

func (s *Server) handleSimulate(c *gin.Context) {
	var req app.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}
	if s.maxDrawCount > 0 && req.DrawCount > s.maxDrawCount {
		s.respondError(c, fmt.Errorf("%w: %d exceeds maximum %d",
			core.ErrInvalidDrawCount, req.DrawCount, s.maxDrawCount))
		return
	}

	result, err := s.simSvc.Simulate(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSweep(c *gin.Context) {
	var req app.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}

	result, err := s.sweepSvc.Sweep(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// variableView is the UI-facing shape of one variable spec. Markdown
// definitions are rendered server side so the front end stays dumb.
type variableView struct {
	ID                  string    `json:"id"`
	DisplayName         string    `json:"display_name"`
	DefinitionHTML      string    `json:"definition_html,omitempty"`
	SliderCandidate     bool      `json:"slider_candidate"`
	FacetCandidate      bool      `json:"facet_candidate"`
	AxisCandidate       bool      `json:"axis_candidate"`
	RoundingGranularity float64   `json:"rounding_granularity"`
	TransformKind       string    `json:"transform_kind"`
	AxisBreaks          []float64 `json:"axis_breaks,omitempty"`
	AxisLabels          []string  `json:"axis_labels,omitempty"`
}

func (s *Server) handleVariables(c *gin.Context) {
	specs := s.registry.Specs()
	views := make([]variableView, 0, len(specs))
	for _, spec := range specs {
		granularity, err := s.registry.RoundingGranularity(spec.ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		v := variableView{
			ID:                  spec.ID,
			DisplayName:         spec.DisplayName,
			SliderCandidate:     spec.SliderCandidate,
			FacetCandidate:      spec.FacetCandidate,
			AxisCandidate:       spec.AxisCandidate,
			RoundingGranularity: granularity,
			TransformKind:       string(spec.Transform.Kind),
			AxisBreaks:          spec.AxisBreaks,
			AxisLabels:          spec.AxisLabels,
		}
		if spec.Definition != "" {
			v.DefinitionHTML = string(markdown.ToHTML([]byte(spec.Definition), nil, nil))
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, gin.H{"variables": views})
}

func (s *Server) handleOutcomes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"outcomes":  s.fit.Outcomes,
		"reference": s.fit.Outcomes.Reference(),
	})
}

func (s *Server) handleRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []struct{}{}})
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Message: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	recs, err := s.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": recs})
}
