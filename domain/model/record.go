package model

import (
	"time"

	"casesim/domain/core"
)

// Record is a persisted fitted model with its catalog metadata.
type Record struct {
	ID      core.ModelID `json:"id"`
	Name    string       `json:"name"`
	Formula string       `json:"formula"`

	Fit *FittedModel `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
