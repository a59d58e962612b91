package postgres

import (
	"context"
	"fmt"

	"casesim/domain/run"
	"casesim/ports"

	"github.com/jmoiron/sqlx"
)

// runRepository implements ports.RunRepository
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a run audit repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Record inserts one audit row
func (r *runRepository) Record(ctx context.Context, rec *run.Record) error {
	query := `INSERT INTO simulation_runs (
		id, kind, model_hash, registry_hash, seeded, seed,
		draw_count, sweep_variable, grid_size, runtime_ms, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Kind, rec.ModelHash, rec.RegistryHash, rec.Seeded, rec.Seed,
		rec.DrawCount, rec.SweepVariable, rec.GridSize, rec.RuntimeMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// ListRecent returns the newest audit rows
func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]run.Record, error) {
	query := `SELECT id, kind, model_hash, registry_hash, seeded, seed,
		draw_count, sweep_variable, grid_size, runtime_ms, created_at
	FROM simulation_runs ORDER BY created_at DESC LIMIT $1`

	var out []run.Record
	if err := r.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return out, nil
}
