// Command export runs one simulate and optionally one sweep against the
// configured model and writes the results to an xlsx workbook, for analysts
// working outside the UI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"casesim/adapters/excel"
	"casesim/adapters/rng"
	"casesim/app"
	"casesim/domain/model"
	"casesim/domain/present"
	"casesim/internal/config"
	"casesim/internal/testkit"

	"github.com/joho/godotenv"
)

func main() {
	var (
		caseFile = flag.String("case", "", "path to a JSON case description (variable id -> display value); defaults to the demo baseline")
		draws    = flag.Int("draws", 0, "draw count (0 uses the configured default)")
		seed     = flag.Int64("seed", 0, "random seed; set -seeded to use it")
		seeded   = flag.Bool("seeded", false, "make the ensemble reproducible under -seed")
		sweepVar = flag.String("sweep", "", "axis-eligible variable to sweep (optional)")
		gridFlag = flag.String("grid", "", "comma-separated display-space grid for -sweep")
		out      = flag.String("out", "", "output workbook path (defaults to EXPORT_PATH)")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if *out == "" {
		*out = cfg.Export.OutputPath
	}

	fit := testkit.FosterModel()
	registry := testkit.FosterRegistry()
	adapter := present.NewAdapter(registry)

	caseDesc := testkit.FosterBaselineCase()
	if *caseFile != "" {
		caseDesc, err = readCase(*caseFile)
		if err != nil {
			log.Fatalf("case file: %v", err)
		}
	}

	simSvc, err := app.NewSimulationService(fit, adapter, rng.New(), nil, cfg.Simulation.DefaultDrawCount)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sim, err := simSvc.Simulate(ctx, app.SimulateRequest{
		Case:      caseDesc,
		DrawCount: *draws,
		Seeded:    *seeded,
		Seed:      *seed,
	})
	if err != nil {
		log.Fatalf("simulate failed: %v", err)
	}

	var sweep *app.SweepResult
	if *sweepVar != "" {
		grid, err := parseGrid(*gridFlag)
		if err != nil {
			log.Fatalf("grid: %v", err)
		}
		sweepSvc, err := app.NewSweepService(fit, adapter, nil)
		if err != nil {
			log.Fatal(err)
		}
		sweep, err = sweepSvc.Sweep(ctx, app.SweepRequest{
			Baseline: caseDesc,
			Variable: *sweepVar,
			Grid:     grid,
		})
		if err != nil {
			log.Fatalf("sweep failed: %v", err)
		}
	}

	if err := excel.NewExporter(*out).Export(sim, sweep); err != nil {
		log.Fatalf("export failed: %v", err)
	}
	fmt.Printf("wrote %s (%d draws", *out, sim.DrawCount)
	if sweep != nil {
		fmt.Printf(", %d sweep points", len(sweep.Points))
	}
	fmt.Println(")")
}

func readCase(path string) (model.CaseDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c model.CaseDescription
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func parseGrid(s string) ([]float64, error) {
	if s == "" {
		return nil, fmt.Errorf("-grid is required with -sweep")
	}
	parts := strings.Split(s, ",")
	grid := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad grid value %q: %w", p, err)
		}
		grid = append(grid, v)
	}
	return grid, nil
}
