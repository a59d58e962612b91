// Command migrate creates the casesim tables. Idempotent.
package main

import (
	"log"

	"casesim/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS fitted_models (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		formula        TEXT NOT NULL,
		outcomes       JSONB NOT NULL,
		predictors     JSONB NOT NULL,
		point_estimate JSONB NOT NULL,
		covariance     JSONB,
		ensemble       JSONB,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS variable_spec_tables (
		model_id   TEXT PRIMARY KEY REFERENCES fitted_models(id) ON DELETE CASCADE,
		specs      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS simulation_runs (
		id             TEXT PRIMARY KEY,
		kind           TEXT NOT NULL,
		model_hash     TEXT NOT NULL,
		registry_hash  TEXT NOT NULL,
		seeded         BOOLEAN NOT NULL,
		seed           BIGINT NOT NULL,
		draw_count     INTEGER NOT NULL DEFAULT 0,
		sweep_variable TEXT NOT NULL DEFAULT '',
		grid_size      INTEGER NOT NULL DEFAULT 0,
		runtime_ms     BIGINT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_simulation_runs_created_at
		ON simulation_runs (created_at DESC)`,
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration statement %d failed: %v", i, err)
		}
	}
	log.Println("migrations applied")
}
