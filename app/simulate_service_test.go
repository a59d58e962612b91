package app

import (
	"context"
	"errors"
	"math"
	"testing"

	"casesim/adapters/rng"
	"casesim/domain/core"
	"casesim/domain/present"
	"casesim/domain/run"
	"casesim/internal/testkit"
	"casesim/ports"
)

type memRuns struct {
	recs []run.Record
}

func (m *memRuns) Record(_ context.Context, rec *run.Record) error {
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *memRuns) ListRecent(_ context.Context, limit int) ([]run.Record, error) {
	if limit > len(m.recs) {
		limit = len(m.recs)
	}
	return m.recs[len(m.recs)-limit:], nil
}

func newSimService(t *testing.T, runs *memRuns) *SimulationService {
	t.Helper()
	adapter := present.NewAdapter(testkit.FosterRegistry())
	var sink ports.RunRepository
	if runs != nil {
		sink = runs
	}
	svc, err := NewSimulationService(testkit.FosterModel(), adapter, rng.New(), sink, 50)
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestSimulate_EnsembleShape(t *testing.T) {
	svc := newSimService(t, nil)

	result, err := svc.Simulate(context.Background(), SimulateRequest{
		Case:      testkit.FosterBaselineCase(),
		DrawCount: 200,
		Seeded:    true,
		Seed:      11,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Draws) != 200 {
		t.Fatalf("got %d draws, want 200", len(result.Draws))
	}
	for i, probs := range result.Draws {
		if len(probs) != 4 {
			t.Fatalf("draw %d has %d outcomes, want 4", i, len(probs))
		}
		for j, v := range probs {
			if v < 0 || v > 1 {
				t.Fatalf("draw %d outcome %d: probability %v outside [0,1]", i, j, v)
			}
		}
		if s := probs.Sum(); math.Abs(s-1) > 1e-9 {
			t.Fatalf("draw %d sums to %v", i, s)
		}
	}
	if len(result.Summary) != 4 {
		t.Errorf("got %d outcome summaries, want 4", len(result.Summary))
	}
	if result.RunID.String() == "" {
		t.Error("missing run id")
	}
}

func TestSimulate_DefaultDrawCount(t *testing.T) {
	svc := newSimService(t, nil)

	result, err := svc.Simulate(context.Background(), SimulateRequest{
		Case:   testkit.FosterBaselineCase(),
		Seeded: true,
		Seed:   1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Draws) != 50 {
		t.Errorf("unset draw count should use the configured default of 50, got %d", len(result.Draws))
	}
}

func TestSimulate_SeededRunsAreReproducible(t *testing.T) {
	svc := newSimService(t, nil)
	req := SimulateRequest{
		Case:      testkit.FosterBaselineCase(),
		DrawCount: 100,
		Seeded:    true,
		Seed:      42,
	}

	a, err := svc.Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Draws {
		for j := range a.Draws[i] {
			if a.Draws[i][j] != b.Draws[i][j] {
				t.Fatalf("draw %d outcome %d differs between identically seeded runs", i, j)
			}
		}
	}

	req.Seed = 43
	c, err := svc.Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a.Draws {
		for j := range a.Draws[i] {
			if a.Draws[i][j] != c.Draws[i][j] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical ensembles")
	}
}

func TestSimulate_InvalidDrawCount(t *testing.T) {
	svc := newSimService(t, nil)

	_, err := svc.Simulate(context.Background(), SimulateRequest{
		Case:      testkit.FosterBaselineCase(),
		DrawCount: -5,
	})
	if !errors.Is(err, core.ErrInvalidDrawCount) {
		t.Errorf("expected ErrInvalidDrawCount, got %v", err)
	}
}

func TestSimulate_MissingPredictorAborts(t *testing.T) {
	svc := newSimService(t, nil)

	incomplete := testkit.FosterBaselineCase()
	delete(incomplete, "rep_count")

	result, err := svc.Simulate(context.Background(), SimulateRequest{
		Case:      incomplete,
		DrawCount: 10,
	})
	if !errors.Is(err, core.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if result != nil {
		t.Error("failed simulation must not return a partial ensemble")
	}
}

func TestSimulate_DomainErrorAborts(t *testing.T) {
	svc := newSimService(t, nil)

	bad := testkit.FosterBaselineCase()
	bad["log_age_eps_begin"] = -2 // log of a negative age

	_, err := svc.Simulate(context.Background(), SimulateRequest{Case: bad, DrawCount: 10})
	if !errors.Is(err, core.ErrDomain) {
		t.Errorf("expected ErrDomain, got %v", err)
	}
}

func TestSimulate_RecordsAuditRow(t *testing.T) {
	runs := &memRuns{}
	svc := newSimService(t, runs)

	result, err := svc.Simulate(context.Background(), SimulateRequest{
		Case:      testkit.FosterBaselineCase(),
		DrawCount: 10,
		Seeded:    true,
		Seed:      5,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(runs.recs) != 1 {
		t.Fatalf("got %d audit rows, want 1", len(runs.recs))
	}
	rec := runs.recs[0]
	if rec.Kind != run.KindSimulate {
		t.Errorf("audit kind = %q, want simulate", rec.Kind)
	}
	if rec.ID != core.ID(result.RunID) {
		t.Error("audit row id does not match run id")
	}
	if rec.DrawCount != 10 || !rec.Seeded || rec.Seed != 5 {
		t.Errorf("audit row lost request shape: %+v", rec)
	}
	if rec.ModelHash.String() == "" || rec.RegistryHash.String() == "" {
		t.Error("audit row missing fingerprints")
	}
}

func TestSimulate_CloudRespondsToCase(t *testing.T) {
	svc := newSimService(t, nil)

	young := testkit.FosterBaselineCase()
	young["log_age_eps_begin"] = 1
	old := testkit.FosterBaselineCase()
	old["log_age_eps_begin"] = 17

	resYoung, err := svc.Simulate(context.Background(), SimulateRequest{Case: young, DrawCount: 500, Seeded: true, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	resOld, err := svc.Simulate(context.Background(), SimulateRequest{Case: old, DrawCount: 500, Seeded: true, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}

	emanc := resYoung.Outcomes.Index("Emancipation")
	if resOld.Summary[emanc].Mean <= resYoung.Summary[emanc].Mean {
		t.Errorf("emancipation mass should rise with age: young=%v old=%v",
			resYoung.Summary[emanc].Mean, resOld.Summary[emanc].Mean)
	}
}
