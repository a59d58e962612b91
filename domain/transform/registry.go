package transform

import (
	"fmt"

	"casesim/domain/core"
)

// DefaultRoundingGranularity applies when a slider candidate does not
// declare its own granularity.
const DefaultRoundingGranularity = 0.1

// VariableSpec is the typed form of one row of the declarative per-variable
// configuration: identity, UI metadata, candidate roles, and the transform
// pair relating model space to display space.
type VariableSpec struct {
	ID          string
	DisplayName string
	// Definition is optional explanatory text, in markdown.
	Definition string

	SliderCandidate bool
	FacetCandidate  bool
	AxisCandidate   bool

	// RoundingGranularity applies to slider-driven inputs; zero means
	// unspecified, in which case DefaultRoundingGranularity is used.
	RoundingGranularity float64

	Transform Transform

	// AxisBreaks/AxisLabels override automatic axis labeling, in display
	// space. Lengths must agree when both are set.
	AxisBreaks []float64
	AxisLabels []string
}

// Validate enforces the per-variable invariants.
func (s VariableSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty variable id", core.ErrInvalidSpec)
	}
	if s.FacetCandidate && (s.SliderCandidate || s.AxisCandidate) {
		return fmt.Errorf("%w: %q: facet candidacy excludes slider/axis (facet implies categorical)",
			core.ErrInvalidSpec, s.ID)
	}
	if s.RoundingGranularity < 0 {
		return fmt.Errorf("%w: %q: negative rounding granularity", core.ErrInvalidSpec, s.ID)
	}
	if len(s.AxisLabels) > 0 && len(s.AxisLabels) != len(s.AxisBreaks) {
		return fmt.Errorf("%w: %q: %d axis labels for %d breaks",
			core.ErrInvalidSpec, s.ID, len(s.AxisLabels), len(s.AxisBreaks))
	}
	if err := s.Transform.Validate(); err != nil {
		return fmt.Errorf("%q: %w", s.ID, err)
	}
	return nil
}

// Registry holds the variable spec table. Immutable after construction and
// safe for concurrent readers.
type Registry struct {
	specs map[string]VariableSpec
	order []string
}

// NewRegistry validates and indexes a spec table. Spec order is preserved
// for listing.
func NewRegistry(specs []VariableSpec) (*Registry, error) {
	r := &Registry{
		specs: make(map[string]VariableSpec, len(specs)),
		order: make([]string, 0, len(specs)),
	}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.specs[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %q", core.ErrInvalidSpec, s.ID)
		}
		r.specs[s.ID] = s
		r.order = append(r.order, s.ID)
	}
	return r, nil
}

// Spec looks up one variable's spec.
func (r *Registry) Spec(varID string) (VariableSpec, error) {
	s, ok := r.specs[varID]
	if !ok {
		return VariableSpec{}, core.NewUnknownVariableError(varID)
	}
	return s, nil
}

// Specs lists all registered specs in registration order.
func (r *Registry) Specs() []VariableSpec {
	out := make([]VariableSpec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.specs[id])
	}
	return out
}

// Has reports whether a variable is registered.
func (r *Registry) Has(varID string) bool {
	_, ok := r.specs[varID]
	return ok
}

// ToDisplay converts one model-space value to display space.
func (r *Registry) ToDisplay(varID string, modelValue float64) (float64, error) {
	s, err := r.Spec(varID)
	if err != nil {
		return 0, err
	}
	v, err := s.Transform.ToDisplay(modelValue)
	if err != nil {
		return 0, fmt.Errorf("variable %q: %w", varID, err)
	}
	return v, nil
}

// ToModel converts one display-space value to model space.
func (r *Registry) ToModel(varID string, displayValue float64) (float64, error) {
	s, err := r.Spec(varID)
	if err != nil {
		return 0, err
	}
	v, err := s.Transform.ToModel(displayValue)
	if err != nil {
		return 0, fmt.Errorf("variable %q: %w", varID, err)
	}
	return v, nil
}

// RoundingGranularity returns the slider step for a variable, falling back
// to DefaultRoundingGranularity when unspecified.
func (r *Registry) RoundingGranularity(varID string) (float64, error) {
	s, err := r.Spec(varID)
	if err != nil {
		return 0, err
	}
	if s.RoundingGranularity == 0 {
		return DefaultRoundingGranularity, nil
	}
	return s.RoundingGranularity, nil
}

// IsSliderCandidate reports slider eligibility.
func (r *Registry) IsSliderCandidate(varID string) (bool, error) {
	s, err := r.Spec(varID)
	if err != nil {
		return false, err
	}
	return s.SliderCandidate, nil
}

// IsFacetCandidate reports facet eligibility.
func (r *Registry) IsFacetCandidate(varID string) (bool, error) {
	s, err := r.Spec(varID)
	if err != nil {
		return false, err
	}
	return s.FacetCandidate, nil
}

// IsAxisCandidate reports x-axis eligibility.
func (r *Registry) IsAxisCandidate(varID string) (bool, error) {
	s, err := r.Spec(varID)
	if err != nil {
		return false, err
	}
	return s.AxisCandidate, nil
}

// Fingerprint hashes the table's identity-relevant fields so run audit rows
// can reference the exact configuration in force.
func (r *Registry) Fingerprint() core.RegistryHash {
	summary := make(map[string]float64, len(r.specs))
	for id, s := range r.specs {
		g := s.RoundingGranularity
		var flags float64
		if s.SliderCandidate {
			flags += 1
		}
		if s.FacetCandidate {
			flags += 2
		}
		if s.AxisCandidate {
			flags += 4
		}
		summary[id+"/"+string(s.Transform.Kind)] = flags*1000 + g
	}
	return core.RegistryHash(core.HashKeyedValues(summary))
}
