package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"casesim/domain/core"
	"casesim/domain/transform"
	"casesim/ports"

	"github.com/jmoiron/sqlx"
)

// specRepository implements ports.VariableSpecRepository
type specRepository struct {
	db *sqlx.DB
}

// NewSpecRepository creates a variable-spec table repository
func NewSpecRepository(db *sqlx.DB) ports.VariableSpecRepository {
	return &specRepository{db: db}
}

// specJSON is the persisted form of one variable spec. Only data-driven
// transform kinds round-trip; custom function pairs cannot be persisted.
type specJSON struct {
	ID                  string    `json:"id"`
	DisplayName         string    `json:"display_name"`
	Definition          string    `json:"definition,omitempty"`
	SliderCandidate     bool      `json:"slider_candidate"`
	FacetCandidate      bool      `json:"facet_candidate"`
	AxisCandidate       bool      `json:"axis_candidate"`
	RoundingGranularity float64   `json:"rounding_granularity,omitempty"`
	TransformKind       string    `json:"transform_kind"`
	Scale               float64   `json:"scale,omitempty"`
	Offset              float64   `json:"offset,omitempty"`
	AxisBreaks          []float64 `json:"axis_breaks,omitempty"`
	AxisLabels          []string  `json:"axis_labels,omitempty"`
}

func toSpecJSON(s transform.VariableSpec) (specJSON, error) {
	if s.Transform.Kind == transform.KindCustom {
		return specJSON{}, fmt.Errorf("%w: %q uses a custom transform, which cannot be persisted",
			core.ErrInvalidSpec, s.ID)
	}
	return specJSON{
		ID:                  s.ID,
		DisplayName:         s.DisplayName,
		Definition:          s.Definition,
		SliderCandidate:     s.SliderCandidate,
		FacetCandidate:      s.FacetCandidate,
		AxisCandidate:       s.AxisCandidate,
		RoundingGranularity: s.RoundingGranularity,
		TransformKind:       string(s.Transform.Kind),
		Scale:               s.Transform.Scale,
		Offset:              s.Transform.Offset,
		AxisBreaks:          s.AxisBreaks,
		AxisLabels:          s.AxisLabels,
	}, nil
}

func fromSpecJSON(sj specJSON) transform.VariableSpec {
	return transform.VariableSpec{
		ID:                  sj.ID,
		DisplayName:         sj.DisplayName,
		Definition:          sj.Definition,
		SliderCandidate:     sj.SliderCandidate,
		FacetCandidate:      sj.FacetCandidate,
		AxisCandidate:       sj.AxisCandidate,
		RoundingGranularity: sj.RoundingGranularity,
		Transform: transform.Transform{
			Kind:   transform.Kind(sj.TransformKind),
			Scale:  sj.Scale,
			Offset: sj.Offset,
		},
		AxisBreaks: sj.AxisBreaks,
		AxisLabels: sj.AxisLabels,
	}
}

// SaveTable replaces the spec table attached to a model, preserving order.
func (r *specRepository) SaveTable(ctx context.Context, modelID core.ModelID, specs []transform.VariableSpec) error {
	payload := make([]specJSON, 0, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		sj, err := toSpecJSON(s)
		if err != nil {
			return err
		}
		payload = append(payload, sj)
	}
	tableJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal spec table: %w", err)
	}

	query := `INSERT INTO variable_spec_tables (model_id, specs, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (model_id) DO UPDATE SET specs = EXCLUDED.specs, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, modelID, tableJSON); err != nil {
		return fmt.Errorf("failed to save spec table: %w", err)
	}
	return nil
}

// GetTable loads the spec table for a model, in stored order.
func (r *specRepository) GetTable(ctx context.Context, modelID core.ModelID) ([]transform.VariableSpec, error) {
	var tableJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT specs FROM variable_spec_tables WHERE model_id = $1`, modelID,
	).Scan(&tableJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: model %s", core.ErrSpecNotFound, modelID)
	}

	var payload []specJSON
	if err := json.Unmarshal(tableJSON, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spec table: %w", err)
	}

	out := make([]transform.VariableSpec, 0, len(payload))
	for _, sj := range payload {
		s := fromSpecJSON(sj)
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("stored spec table for %s is corrupt: %w", modelID, err)
		}
		out = append(out, s)
	}
	return out, nil
}
