package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"casesim/adapters/postgres"
	"casesim/adapters/rng"
	"casesim/app"
	"casesim/domain/core"
	"casesim/domain/model"
	"casesim/domain/present"
	"casesim/domain/transform"
	"casesim/internal"
	"casesim/internal/config"
	"casesim/internal/testkit"
	"casesim/ports"
	"casesim/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const version = "v0.3.0"

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := internal.DefaultLogger

	fit, registry, runs, err := loadModel(cfg, logger)
	if err != nil {
		log.Fatalf("model load failed: %v", err)
	}

	adapter := present.NewAdapter(registry)
	simSvc, err := app.NewSimulationService(fit, adapter, rng.New(), runs, cfg.Simulation.DefaultDrawCount)
	if err != nil {
		log.Fatalf("simulation service: %v", err)
	}
	sweepSvc, err := app.NewSweepService(fit, adapter, runs)
	if err != nil {
		log.Fatalf("sweep service: %v", err)
	}

	server := ui.NewServer(fit, registry, simSvc, sweepSvc, ui.ServerOptions{
		GinMode:      cfg.Server.GinMode,
		MaxDrawCount: cfg.Simulation.MaxDrawCount,
		Runs:         runs,
	})

	go func() {
		ops := ui.NewOpsRouter(version, func() bool { return true })
		logger.Info("ops listening on :%s", cfg.Server.OpsPort)
		if err := http.ListenAndServe(":"+cfg.Server.OpsPort, ops); err != nil {
			logger.Error("ops listener failed: %v", err)
		}
	}()

	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// loadModel prefers the database-backed model; with no DATABASE_URL it
// serves the built-in demo configuration so the server is usable standalone.
func loadModel(cfg *config.Config, logger *internal.Logger) (*model.FittedModel, *transform.Registry, ports.RunRepository, error) {
	if cfg.Database.URL == "" {
		logger.Warn("no DATABASE_URL configured, serving the built-in demo model")
		return testkit.FosterModel(), testkit.FosterRegistry(), nil, nil
	}

	if cfg.Database.ModelID == "" {
		return nil, nil, nil, fmt.Errorf("MODEL_ID is required when DATABASE_URL is set")
	}
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	modelID := core.ModelID(cfg.Database.ModelID)
	rec, err := postgres.NewModelRepository(db).GetByID(ctx, modelID)
	if err != nil {
		return nil, nil, nil, err
	}
	specs, err := postgres.NewSpecRepository(db).GetTable(ctx, modelID)
	if err != nil {
		return nil, nil, nil, err
	}
	registry, err := transform.NewRegistry(specs)
	if err != nil {
		return nil, nil, nil, err
	}

	logger.Info("loaded model %s (%s)", rec.ID, rec.Name)
	return rec.Fit, registry, postgres.NewRunRepository(db), nil
}
