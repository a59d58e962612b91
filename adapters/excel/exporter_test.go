package excel

import (
	"context"
	"path/filepath"
	"testing"

	"casesim/adapters/rng"
	"casesim/app"
	"casesim/domain/present"
	"casesim/internal/testkit"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExporter_RoundTripWorkbook(t *testing.T) {
	adapter := present.NewAdapter(testkit.FosterRegistry())
	simSvc, err := app.NewSimulationService(testkit.FosterModel(), adapter, rng.New(), nil, 50)
	require.NoError(t, err)
	sweepSvc, err := app.NewSweepService(testkit.FosterModel(), adapter, nil)
	require.NoError(t, err)

	sim, err := simSvc.Simulate(context.Background(), app.SimulateRequest{
		Case: testkit.FosterBaselineCase(), DrawCount: 25, Seeded: true, Seed: 2,
	})
	require.NoError(t, err)
	sweep, err := sweepSvc.Sweep(context.Background(), app.SweepRequest{
		Baseline: testkit.FosterBaselineCase(),
		Variable: "log_age_eps_begin",
		Grid:     []float64{1, 4, 16},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, NewExporter(path).Export(sim, sweep))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.ElementsMatch(t, []string{"Draws", "Summary", "Sweep"}, f.GetSheetList())

	rows, err := f.GetRows("Draws")
	require.NoError(t, err)
	require.Len(t, rows, 26, "header plus one row per draw")
	require.Equal(t, []string{"draw", "Reunification", "Adoption", "Guardianship", "Emancipation"}, rows[0])

	sweepRows, err := f.GetRows("Sweep")
	require.NoError(t, err)
	require.Len(t, sweepRows, 4, "header plus one row per grid point")
	require.Equal(t, "log_age_eps_begin", sweepRows[0][0])

	summaryRows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summaryRows, 5, "header plus one row per outcome")
}

func TestExporter_RequiresSomething(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.Error(t, NewExporter(path).Export(nil, nil))
}
