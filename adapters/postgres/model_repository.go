package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"casesim/domain/core"
	"casesim/domain/model"
	"casesim/ports"

	"github.com/jmoiron/sqlx"
	"gonum.org/v1/gonum/mat"
)

// modelRepository implements ports.FittedModelRepository
type modelRepository struct {
	db *sqlx.DB
}

// NewModelRepository creates a fitted-model repository
func NewModelRepository(db *sqlx.DB) ports.FittedModelRepository {
	return &modelRepository{db: db}
}

// covarianceJSON is the persisted form of a symmetric coefficient
// covariance: dimension plus full row-major storage.
type covarianceJSON struct {
	Dim  int       `json:"dim"`
	Data []float64 `json:"data"`
}

func marshalCovariance(cov *mat.SymDense) ([]byte, error) {
	if cov == nil {
		return nil, nil
	}
	n := cov.SymmetricDim()
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data[i*n+j] = cov.At(i, j)
		}
	}
	return json.Marshal(covarianceJSON{Dim: n, Data: data})
}

func unmarshalCovariance(raw []byte) (*mat.SymDense, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var cj covarianceJSON
	if err := json.Unmarshal(raw, &cj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal covariance: %w", err)
	}
	if len(cj.Data) != cj.Dim*cj.Dim {
		return nil, fmt.Errorf("%w: covariance payload has %d entries for dim %d",
			core.ErrInvalidModel, len(cj.Data), cj.Dim)
	}
	return mat.NewSymDense(cj.Dim, cj.Data), nil
}

// Save inserts or updates a fitted model
func (r *modelRepository) Save(ctx context.Context, rec *model.Record) error {
	if rec.Fit == nil {
		return fmt.Errorf("%w: record has no fit", core.ErrInvalidModel)
	}
	if err := rec.Fit.Validate(); err != nil {
		return err
	}

	outcomesJSON, err := json.Marshal(rec.Fit.Outcomes)
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}
	predictorsJSON, err := json.Marshal(rec.Fit.Predictors)
	if err != nil {
		return fmt.Errorf("failed to marshal predictors: %w", err)
	}
	pointJSON, err := json.Marshal(rec.Fit.Point)
	if err != nil {
		return fmt.Errorf("failed to marshal point estimate: %w", err)
	}
	covJSON, err := marshalCovariance(rec.Fit.Covariance)
	if err != nil {
		return fmt.Errorf("failed to marshal covariance: %w", err)
	}
	var ensembleJSON []byte
	if rec.Fit.HasEnsemble() {
		ensembleJSON, err = json.Marshal(rec.Fit.Ensemble)
		if err != nil {
			return fmt.Errorf("failed to marshal ensemble: %w", err)
		}
	}

	now := time.Now().UTC()
	query := `INSERT INTO fitted_models (
		id, name, formula, outcomes, predictors, point_estimate, covariance, ensemble, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, formula = EXCLUDED.formula,
		outcomes = EXCLUDED.outcomes, predictors = EXCLUDED.predictors,
		point_estimate = EXCLUDED.point_estimate, covariance = EXCLUDED.covariance,
		ensemble = EXCLUDED.ensemble, updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.Formula, outcomesJSON, predictorsJSON, pointJSON, covJSON, ensembleJSON, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save fitted model: %w", err)
	}
	return nil
}

// GetByID retrieves a fitted model by its ID
func (r *modelRepository) GetByID(ctx context.Context, id core.ModelID) (*model.Record, error) {
	query := `SELECT id, name, formula, outcomes, predictors, point_estimate,
		covariance, ensemble, created_at, updated_at
	FROM fitted_models WHERE id = $1`

	var rec model.Record
	var outcomesJSON, predictorsJSON, pointJSON, covJSON, ensembleJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Name, &rec.Formula,
		&outcomesJSON, &predictorsJSON, &pointJSON, &covJSON, &ensembleJSON,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: id %s", core.ErrModelNotFound, id)
		}
		return nil, fmt.Errorf("failed to get fitted model: %w", err)
	}

	fit := &model.FittedModel{}
	if err := json.Unmarshal(outcomesJSON, &fit.Outcomes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outcomes: %w", err)
	}
	if err := json.Unmarshal(predictorsJSON, &fit.Predictors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal predictors: %w", err)
	}
	if err := json.Unmarshal(pointJSON, &fit.Point); err != nil {
		return nil, fmt.Errorf("failed to unmarshal point estimate: %w", err)
	}
	fit.Covariance, err = unmarshalCovariance(covJSON)
	if err != nil {
		return nil, err
	}
	if len(ensembleJSON) > 0 {
		if err := json.Unmarshal(ensembleJSON, &fit.Ensemble); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ensemble: %w", err)
		}
	}
	if err := fit.Validate(); err != nil {
		return nil, fmt.Errorf("stored model %s is corrupt: %w", id, err)
	}

	rec.Fit = fit
	return &rec, nil
}

// List returns catalog metadata for all stored models, newest first. The
// fits themselves are not loaded.
func (r *modelRepository) List(ctx context.Context) ([]*model.Record, error) {
	query := `SELECT id, name, formula, created_at, updated_at
	FROM fitted_models ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list fitted models: %w", err)
	}
	defer rows.Close()

	var out []*model.Record
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Formula, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan model row: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
