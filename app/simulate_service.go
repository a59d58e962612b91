package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"casesim/domain/core"
	"casesim/domain/model"
	"casesim/domain/predict"
	"casesim/domain/present"
	"casesim/domain/run"
	"casesim/domain/sample"
	"casesim/domain/summary"
	"casesim/internal"
	"casesim/ports"

	"golang.org/x/sync/errgroup"
)

// DefaultDrawCount applies when a simulate request leaves the count unset.
const DefaultDrawCount = 1000

// SimulationService produces dot-cloud ensembles: one predicted probability
// vector per coefficient draw, for a fixed case description.
type SimulationService struct {
	fit       *model.FittedModel
	adapter   *present.Adapter
	predictor *predict.Predictor
	rngPort   ports.RNGPort
	runs      ports.RunRepository // optional audit sink
	logger    *internal.Logger

	defaultDraws int
}

// NewSimulationService wires the case simulation engine. runs may be nil
// when no audit store is configured.
func NewSimulationService(fit *model.FittedModel, adapter *present.Adapter, rngPort ports.RNGPort, runs ports.RunRepository, defaultDraws int) (*SimulationService, error) {
	if err := fit.Validate(); err != nil {
		return nil, err
	}
	if defaultDraws <= 0 {
		defaultDraws = DefaultDrawCount
	}
	return &SimulationService{
		fit:          fit,
		adapter:      adapter,
		predictor:    predict.NewPredictor(fit.Outcomes),
		rngPort:      rngPort,
		runs:         runs,
		logger:       internal.DefaultLogger,
		defaultDraws: defaultDraws,
	}, nil
}

// SimulateRequest describes one dot-cloud run. DrawCount zero means "use
// the configured default"; negative counts are rejected. Set Seeded for
// bit-for-bit reproducible ensembles.
type SimulateRequest struct {
	Case      model.CaseDescription `json:"case"`
	DrawCount int                   `json:"draw_count"`
	Seeded    bool                  `json:"seeded"`
	Seed      int64                 `json:"seed"`
}

// SimulationResult is the complete output of one simulate run. Draws are in
// draw order; each vector is in outcome-set order.
type SimulationResult struct {
	RunID    core.RunID                `json:"run_id"`
	Outcomes model.OutcomeSet          `json:"outcomes"`
	Draws    []model.ProbabilityVector `json:"draws"`
	Summary  []summary.OutcomeSummary  `json:"summary"`

	Seeded    bool  `json:"seeded"`
	Seed      int64 `json:"seed"`
	DrawCount int   `json:"draw_count"`
	RuntimeMs int64 `json:"runtime_ms"`
}

// Simulate runs the full ensemble: the case is converted to model space
// once, then drawCount coefficient realizations are drawn sequentially from
// one stream (preserving reproducibility under a fixed seed) and predicted
// concurrently into indexed slots. Any transform or predictor failure
// aborts the run; partial ensembles are never returned.
func (s *SimulationService) Simulate(ctx context.Context, req SimulateRequest) (*SimulationResult, error) {
	startTime := time.Now()

	drawCount := req.DrawCount
	if drawCount == 0 {
		drawCount = s.defaultDraws
	}
	if drawCount < 1 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidDrawCount, req.DrawCount)
	}

	modelCase, err := s.adapter.CaseToModel(req.Case)
	if err != nil {
		return nil, fmt.Errorf("case conversion failed: %w", err)
	}
	row, err := s.fit.CovariateRow(modelCase)
	if err != nil {
		return nil, fmt.Errorf("covariate row construction failed: %w", err)
	}

	stream, err := s.stream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("rng stream: %w", err)
	}
	sampler, err := sample.NewSampler(s.fit, stream)
	if err != nil {
		return nil, err
	}

	// Draws come off the stream sequentially so a fixed seed reproduces
	// the exact ensemble; only the predictions fan out.
	coeffs := make([]model.CoefficientSet, drawCount)
	for i := 0; i < drawCount; i++ {
		cs, err := sampler.Draw()
		if err != nil {
			return nil, fmt.Errorf("draw %d failed: %w", i, err)
		}
		coeffs[i] = cs
	}

	draws := make([]model.ProbabilityVector, drawCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < drawCount; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			probs, err := s.predictor.Predict(coeffs[i], row)
			if err != nil {
				return fmt.Errorf("prediction for draw %d failed: %w", i, err)
			}
			draws[i] = probs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries, err := summary.Summarize(s.fit.Outcomes, draws)
	if err != nil {
		return nil, fmt.Errorf("ensemble summary failed: %w", err)
	}

	result := &SimulationResult{
		RunID:     core.NewRunID(),
		Outcomes:  s.fit.Outcomes,
		Draws:     draws,
		Summary:   summaries,
		Seeded:    req.Seeded,
		Seed:      req.Seed,
		DrawCount: drawCount,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}

	s.recordRun(ctx, result)
	return result, nil
}

func (s *SimulationService) stream(ctx context.Context, req SimulateRequest) (*rand.Rand, error) {
	if req.Seeded {
		return s.rngPort.SeededStream(ctx, "simulate", req.Seed)
	}
	return s.rngPort.Stream(ctx, "simulate")
}

// recordRun writes the audit row. Best effort: a failed audit write is
// logged, never surfaced.
func (s *SimulationService) recordRun(ctx context.Context, result *SimulationResult) {
	if s.runs == nil {
		return
	}
	rec := run.NewSimulateRecord(
		s.fit.Fingerprint(),
		s.adapter.Registry().Fingerprint(),
		result.Seeded,
		result.Seed,
		result.DrawCount,
		result.RuntimeMs,
	)
	rec.ID = core.ID(result.RunID)
	if err := s.runs.Record(ctx, rec); err != nil {
		s.logger.Warn("run audit write failed for %s: %v", result.RunID, err)
	}
}
