package present

import (
	"math"

	"casesim/domain/model"
	"casesim/domain/transform"
)

// Adapter converts between display space and model space at the edges of
// the simulation engines, using the transform registry. Slider-driven
// inputs are snapped to their rounding granularity before conversion so the
// value a user sees and the value fed to the model agree at the displayed
// precision.
type Adapter struct {
	registry *transform.Registry
}

// NewAdapter wraps a registry.
func NewAdapter(registry *transform.Registry) *Adapter {
	return &Adapter{registry: registry}
}

// Registry exposes the wrapped registry for metadata consumers.
func (a *Adapter) Registry() *transform.Registry {
	return a.registry
}

// RoundToGranularity snaps a display-space value to the variable's slider
// step. Non-slider variables pass through unchanged.
func (a *Adapter) RoundToGranularity(varID string, displayValue float64) (float64, error) {
	slider, err := a.registry.IsSliderCandidate(varID)
	if err != nil {
		return 0, err
	}
	if !slider {
		return displayValue, nil
	}
	g, err := a.registry.RoundingGranularity(varID)
	if err != nil {
		return 0, err
	}
	return math.Round(displayValue/g) * g, nil
}

// CaseToModel converts a display-space case description into model space,
// rounding slider inputs first. The input case is never mutated.
func (a *Adapter) CaseToModel(c model.CaseDescription) (map[string]float64, error) {
	out := make(map[string]float64, len(c))
	for varID, displayValue := range c {
		rounded, err := a.RoundToGranularity(varID, displayValue)
		if err != nil {
			return nil, err
		}
		mv, err := a.registry.ToModel(varID, rounded)
		if err != nil {
			return nil, err
		}
		out[varID] = mv
	}
	return out, nil
}

// GridToModel converts an ordered display-space grid for one variable into
// model space, preserving order.
func (a *Adapter) GridToModel(varID string, grid []float64) ([]float64, error) {
	out := make([]float64, len(grid))
	for i, v := range grid {
		mv, err := a.registry.ToModel(varID, v)
		if err != nil {
			return nil, err
		}
		out[i] = mv
	}
	return out, nil
}

// ValueToDisplay converts one model-space value back for rendering.
func (a *Adapter) ValueToDisplay(varID string, modelValue float64) (float64, error) {
	return a.registry.ToDisplay(varID, modelValue)
}
