package run

import (
	"time"

	"casesim/domain/core"
)

// Kind distinguishes the two engine operations in the audit log.
type Kind string

const (
	KindSimulate Kind = "simulate"
	KindSweep    Kind = "sweep"
)

// Record is one audit row: enough to reproduce a run (model and registry
// fingerprints, seed, request shape) without storing the ephemeral result.
type Record struct {
	ID           core.ID           `json:"id" db:"id"`
	Kind         Kind              `json:"kind" db:"kind"`
	ModelHash    core.ModelHash    `json:"model_hash" db:"model_hash"`
	RegistryHash core.RegistryHash `json:"registry_hash" db:"registry_hash"`

	Seeded bool  `json:"seeded" db:"seeded"`
	Seed   int64 `json:"seed" db:"seed"`

	// Simulate runs.
	DrawCount int `json:"draw_count,omitempty" db:"draw_count"`

	// Sweep runs.
	SweepVariable string `json:"sweep_variable,omitempty" db:"sweep_variable"`
	GridSize      int    `json:"grid_size,omitempty" db:"grid_size"`

	RuntimeMs int64     `json:"runtime_ms" db:"runtime_ms"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewSimulateRecord builds the audit row for a dot-cloud run.
func NewSimulateRecord(modelHash core.ModelHash, registryHash core.RegistryHash, seeded bool, seed int64, drawCount int, runtimeMs int64) *Record {
	return &Record{
		ID:           core.NewID(),
		Kind:         KindSimulate,
		ModelHash:    modelHash,
		RegistryHash: registryHash,
		Seeded:       seeded,
		Seed:         seed,
		DrawCount:    drawCount,
		RuntimeMs:    runtimeMs,
		CreatedAt:    time.Now().UTC(),
	}
}

// NewSweepRecord builds the audit row for a ribbon run.
func NewSweepRecord(modelHash core.ModelHash, registryHash core.RegistryHash, sweepVariable string, gridSize int, runtimeMs int64) *Record {
	return &Record{
		ID:            core.NewID(),
		Kind:          KindSweep,
		ModelHash:     modelHash,
		RegistryHash:  registryHash,
		SweepVariable: sweepVariable,
		GridSize:      gridSize,
		RuntimeMs:     runtimeMs,
		CreatedAt:     time.Now().UTC(),
	}
}
