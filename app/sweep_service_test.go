package app

import (
	"context"
	"errors"
	"math"
	"testing"

	"casesim/domain/core"
	"casesim/domain/predict"
	"casesim/domain/present"
	"casesim/domain/run"
	"casesim/internal/testkit"
	"casesim/ports"
)

func newSweepService(t *testing.T, runs *memRuns) *SweepService {
	t.Helper()
	adapter := present.NewAdapter(testkit.FosterRegistry())
	var sink ports.RunRepository
	if runs != nil {
		sink = runs
	}
	svc, err := NewSweepService(testkit.FosterModel(), adapter, sink)
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestSweep_GridShapeAndOrder(t *testing.T) {
	svc := newSweepService(t, nil)
	grid := []float64{1, 2, 4, 8, 16}

	result, err := svc.Sweep(context.Background(), SweepRequest{
		Baseline: testkit.FosterBaselineCase(),
		Variable: "log_age_eps_begin",
		Grid:     grid,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Points) != len(grid) {
		t.Fatalf("got %d points for %d grid values", len(result.Points), len(grid))
	}
	for i, p := range result.Points {
		if p.X != grid[i] {
			t.Errorf("point %d: x = %v, want %v (grid order must be preserved)", i, p.X, grid[i])
		}
		if len(p.Probabilities) != 4 {
			t.Fatalf("point %d has %d outcomes, want 4", i, len(p.Probabilities))
		}
		var sum float64
		for _, v := range p.Probabilities {
			if v < 0 || v > 1 {
				t.Errorf("point %d: probability %v outside [0,1]", i, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("point %d: probabilities sum to %v", i, sum)
		}
	}
}

func TestSweep_EmancipationRisesWithAge(t *testing.T) {
	svc := newSweepService(t, nil)

	result, err := svc.Sweep(context.Background(), SweepRequest{
		Baseline: testkit.FosterBaselineCase(),
		Variable: "log_age_eps_begin",
		Grid:     []float64{1, 2, 4, 8, 16},
	})
	if err != nil {
		t.Fatal(err)
	}

	prev := -1.0
	for i, p := range result.Points {
		e := p.Probabilities["Emancipation"]
		if e <= prev {
			t.Fatalf("emancipation probability not monotone at grid index %d: %v after %v", i, e, prev)
		}
		prev = e
	}
}

func TestSweep_Deterministic(t *testing.T) {
	svc := newSweepService(t, nil)
	req := SweepRequest{
		Baseline: testkit.FosterBaselineCase(),
		Variable: "rep_count",
		Grid:     []float64{0, 2, 4, 6},
	}

	a, err := svc.Sweep(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Sweep(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Points {
		for o, v := range a.Points[i].Probabilities {
			if b.Points[i].Probabilities[o] != v {
				t.Fatalf("sweep is not deterministic at point %d outcome %s", i, o)
			}
		}
	}
}

func TestSweep_MatchesPointPredictionAtBaseline(t *testing.T) {
	// A grid point equal to the baseline value must reproduce the direct
	// point-estimate prediction of the baseline case: everything except the
	// swept variable stays at baseline.
	svc := newSweepService(t, nil)
	baseline := testkit.FosterBaselineCase()

	result, err := svc.Sweep(context.Background(), SweepRequest{
		Baseline: baseline,
		Variable: "log_age_eps_begin",
		Grid:     []float64{baseline["log_age_eps_begin"], 16},
	})
	if err != nil {
		t.Fatal(err)
	}

	fm := testkit.FosterModel()
	adapter := present.NewAdapter(testkit.FosterRegistry())
	modelCase, err := adapter.CaseToModel(baseline)
	if err != nil {
		t.Fatal(err)
	}
	direct, err := predict.NewPredictor(fm.Outcomes).PredictCase(fm, fm.Point, modelCase)
	if err != nil {
		t.Fatal(err)
	}

	for i, o := range fm.Outcomes {
		got := result.Points[0].Probabilities[o]
		if math.Abs(got-direct[i]) > 1e-12 {
			t.Errorf("outcome %s: sweep %v, direct %v", o, got, direct[i])
		}
	}
}

func TestSweep_Validation(t *testing.T) {
	svc := newSweepService(t, nil)
	baseline := testkit.FosterBaselineCase()

	t.Run("non-axis variable", func(t *testing.T) {
		_, err := svc.Sweep(context.Background(), SweepRequest{
			Baseline: baseline,
			Variable: "housing_instability",
			Grid:     []float64{0, 1},
		})
		if !errors.Is(err, core.ErrNonAxisVariable) {
			t.Errorf("expected ErrNonAxisVariable, got %v", err)
		}
	})

	t.Run("facet variable", func(t *testing.T) {
		_, err := svc.Sweep(context.Background(), SweepRequest{
			Baseline: baseline,
			Variable: "region",
			Grid:     []float64{0, 1},
		})
		if !errors.Is(err, core.ErrNonAxisVariable) {
			t.Errorf("expected ErrNonAxisVariable, got %v", err)
		}
	})

	t.Run("unknown variable", func(t *testing.T) {
		_, err := svc.Sweep(context.Background(), SweepRequest{
			Baseline: baseline,
			Variable: "no_such_var",
			Grid:     []float64{0, 1},
		})
		if !errors.Is(err, core.ErrUnknownVariable) {
			t.Errorf("expected ErrUnknownVariable, got %v", err)
		}
	})

	t.Run("grid too small", func(t *testing.T) {
		_, err := svc.Sweep(context.Background(), SweepRequest{
			Baseline: baseline,
			Variable: "log_age_eps_begin",
			Grid:     []float64{4},
		})
		if !errors.Is(err, core.ErrEmptyGrid) {
			t.Errorf("expected ErrEmptyGrid, got %v", err)
		}
	})

	t.Run("grid outside transform domain", func(t *testing.T) {
		_, err := svc.Sweep(context.Background(), SweepRequest{
			Baseline: baseline,
			Variable: "log_age_eps_begin",
			Grid:     []float64{-1, 4},
		})
		if !errors.Is(err, core.ErrDomain) {
			t.Errorf("expected ErrDomain, got %v", err)
		}
	})
}

func TestSweep_RecordsAuditRow(t *testing.T) {
	runs := &memRuns{}
	svc := newSweepService(t, runs)

	result, err := svc.Sweep(context.Background(), SweepRequest{
		Baseline: testkit.FosterBaselineCase(),
		Variable: "log_age_eps_begin",
		Grid:     []float64{1, 4, 16},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(runs.recs) != 1 {
		t.Fatalf("got %d audit rows, want 1", len(runs.recs))
	}
	rec := runs.recs[0]
	if rec.Kind != run.KindSweep {
		t.Errorf("audit kind = %q, want sweep", rec.Kind)
	}
	if rec.ID != core.ID(result.SweepID) {
		t.Error("audit row id does not match sweep id")
	}
	if rec.SweepVariable != "log_age_eps_begin" || rec.GridSize != 3 {
		t.Errorf("audit row lost request shape: %+v", rec)
	}
}
