package ports

import (
	"context"

	"casesim/domain/core"
	"casesim/domain/model"
	"casesim/domain/run"
	"casesim/domain/transform"
)

// FittedModelRepository persists fitted multinomial models. The engine only
// reads; fits are written by external model-fitting tooling.
type FittedModelRepository interface {
	Save(ctx context.Context, rec *model.Record) error
	GetByID(ctx context.Context, id core.ModelID) (*model.Record, error)
	List(ctx context.Context) ([]*model.Record, error)
}

// VariableSpecRepository persists the declarative per-variable metadata
// table attached to a fitted model. Custom-function transforms are not
// persistable and are rejected on save.
type VariableSpecRepository interface {
	SaveTable(ctx context.Context, modelID core.ModelID, specs []transform.VariableSpec) error
	GetTable(ctx context.Context, modelID core.ModelID) ([]transform.VariableSpec, error)
}

// RunRepository records simulation and sweep runs for audit. Recording is
// best effort; a failed audit write never fails the run itself.
type RunRepository interface {
	Record(ctx context.Context, rec *run.Record) error
	ListRecent(ctx context.Context, limit int) ([]run.Record, error)
}
