package app

import (
	"context"
	"fmt"
	"time"

	"casesim/domain/core"
	"casesim/domain/model"
	"casesim/domain/predict"
	"casesim/domain/present"
	"casesim/domain/run"
	"casesim/internal"
	"casesim/ports"
)

// SweepService produces ribbon data: one probability curve per outcome
// class across an ordered grid of one axis-eligible variable, evaluated at
// the point-estimate coefficients only. Deterministic; no draws.
type SweepService struct {
	fit       *model.FittedModel
	adapter   *present.Adapter
	predictor *predict.Predictor
	runs      ports.RunRepository // optional audit sink
	logger    *internal.Logger
}

// NewSweepService wires the sweep simulation engine. runs may be nil.
func NewSweepService(fit *model.FittedModel, adapter *present.Adapter, runs ports.RunRepository) (*SweepService, error) {
	if err := fit.Validate(); err != nil {
		return nil, err
	}
	return &SweepService{
		fit:       fit,
		adapter:   adapter,
		predictor: predict.NewPredictor(fit.Outcomes),
		runs:      runs,
		logger:    internal.DefaultLogger,
	}, nil
}

// SweepRequest describes one ribbon run. Grid holds display-space values
// for the swept variable, in the order the curve should be rendered; this
// engine never computes default grids.
type SweepRequest struct {
	Baseline model.CaseDescription `json:"baseline"`
	Variable string                `json:"variable"`
	Grid     []float64             `json:"grid"`
}

// SweepPoint is one evaluated grid position: the display-space x plus the
// probability per outcome.
type SweepPoint struct {
	X             float64                   `json:"x"`
	Probabilities map[model.Outcome]float64 `json:"probabilities"`
}

// SweepResult is the ordered ribbon output, one point per grid value.
type SweepResult struct {
	SweepID  core.SweepID     `json:"sweep_id"`
	Variable string           `json:"variable"`
	Outcomes model.OutcomeSet `json:"outcomes"`
	Points   []SweepPoint     `json:"points"`

	RuntimeMs int64 `json:"runtime_ms"`
}

// Sweep evaluates the point-estimate model across the grid: each covariate
// vector equals the baseline except the swept variable, which takes the
// grid value transformed to model space.
func (s *SweepService) Sweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	startTime := time.Now()

	axis, err := s.adapter.Registry().IsAxisCandidate(req.Variable)
	if err != nil {
		return nil, err
	}
	if !axis {
		return nil, fmt.Errorf("%w: %q", core.ErrNonAxisVariable, req.Variable)
	}
	if len(req.Grid) < 2 {
		return nil, fmt.Errorf("%w: got %d", core.ErrEmptyGrid, len(req.Grid))
	}

	baseline, err := s.adapter.CaseToModel(req.Baseline)
	if err != nil {
		return nil, fmt.Errorf("baseline conversion failed: %w", err)
	}
	modelGrid, err := s.adapter.GridToModel(req.Variable, req.Grid)
	if err != nil {
		return nil, fmt.Errorf("grid conversion failed: %w", err)
	}

	points := make([]SweepPoint, len(req.Grid))
	swept := make(map[string]float64, len(baseline)+1)
	for k, v := range baseline {
		swept[k] = v
	}
	for i, x := range modelGrid {
		swept[req.Variable] = x
		probs, err := s.predictor.PredictCase(s.fit, s.fit.Point, swept)
		if err != nil {
			return nil, fmt.Errorf("grid point %d failed: %w", i, err)
		}
		byOutcome := make(map[model.Outcome]float64, len(s.fit.Outcomes))
		for j, o := range s.fit.Outcomes {
			byOutcome[o] = probs[j]
		}
		points[i] = SweepPoint{X: req.Grid[i], Probabilities: byOutcome}
	}

	result := &SweepResult{
		SweepID:   core.NewSweepID(),
		Variable:  req.Variable,
		Outcomes:  s.fit.Outcomes,
		Points:    points,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}

	s.recordSweep(ctx, result, len(req.Grid))
	return result, nil
}

func (s *SweepService) recordSweep(ctx context.Context, result *SweepResult, gridSize int) {
	if s.runs == nil {
		return
	}
	rec := run.NewSweepRecord(
		s.fit.Fingerprint(),
		s.adapter.Registry().Fingerprint(),
		result.Variable,
		gridSize,
		result.RuntimeMs,
	)
	rec.ID = core.ID(result.SweepID)
	if err := s.runs.Record(ctx, rec); err != nil {
		s.logger.Warn("sweep audit write failed for %s: %v", result.SweepID, err)
	}
}
