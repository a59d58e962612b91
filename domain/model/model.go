package model

import (
	"fmt"
	"strings"

	"casesim/domain/core"

	"gonum.org/v1/gonum/mat"
)

// InterceptPredictor names the implicit constant column of the design row.
// Case descriptions never supply it; CovariateRow fills in 1.0.
const InterceptPredictor = "intercept"

// Outcome is one category label of a multinomial model.
type Outcome string

// OutcomeSet is the ordered, fixed list of mutually exclusive categories.
// Index 0 is the reference category; order fixes color assignment and
// plotting order downstream and never changes for a configured instance.
type OutcomeSet []Outcome

// Validate checks the outcome set is usable for a multinomial fit.
func (s OutcomeSet) Validate() error {
	if len(s) < 2 {
		return fmt.Errorf("%w: need at least 2 outcomes, got %d", core.ErrInvalidModel, len(s))
	}
	seen := make(map[Outcome]bool, len(s))
	for _, o := range s {
		if o == "" {
			return fmt.Errorf("%w: empty outcome label", core.ErrInvalidModel)
		}
		if seen[o] {
			return fmt.Errorf("%w: duplicate outcome %q", core.ErrInvalidModel, o)
		}
		seen[o] = true
	}
	return nil
}

// Reference returns the reference category.
func (s OutcomeSet) Reference() Outcome {
	return s[0]
}

// NonReference returns the modeled (non-reference) categories in set order.
func (s OutcomeSet) NonReference() []Outcome {
	return s[1:]
}

// Index returns the position of an outcome, or -1 if absent.
func (s OutcomeSet) Index(o Outcome) int {
	for i, c := range s {
		if c == o {
			return i
		}
	}
	return -1
}

// CoefficientSet holds one realization of model coefficients: a weight
// vector per non-reference outcome, aligned to the predictor order.
type CoefficientSet struct {
	Predictors []string              `json:"predictors"`
	Weights    map[Outcome][]float64 `json:"weights"`
}

// Validate checks shape agreement against an outcome set.
func (c CoefficientSet) Validate(outcomes OutcomeSet) error {
	if len(c.Weights) != len(outcomes)-1 {
		return fmt.Errorf("%w: %d weight vectors for %d non-reference outcomes",
			core.ErrInvalidModel, len(c.Weights), len(outcomes)-1)
	}
	for _, o := range outcomes.NonReference() {
		w, ok := c.Weights[o]
		if !ok {
			return fmt.Errorf("%w: missing weights for outcome %q", core.ErrInvalidModel, o)
		}
		if len(w) != len(c.Predictors) {
			return fmt.Errorf("%w: outcome %q has %d weights for %d predictors",
				core.ErrInvalidModel, o, len(w), len(c.Predictors))
		}
	}
	return nil
}

// Clone deep-copies the coefficient set.
func (c CoefficientSet) Clone() CoefficientSet {
	out := CoefficientSet{
		Predictors: append([]string(nil), c.Predictors...),
		Weights:    make(map[Outcome][]float64, len(c.Weights)),
	}
	for o, w := range c.Weights {
		out.Weights[o] = append([]float64(nil), w...)
	}
	return out
}

// CaseDescription maps variable id to a display-space scalar. Constructed by
// the caller, consumed and never mutated by the engine.
type CaseDescription map[string]float64

// Clone copies the case so callers can derive variants safely.
func (c CaseDescription) Clone() CaseDescription {
	out := make(CaseDescription, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// ProbabilityVector is a probability simplex over an OutcomeSet, in set order.
type ProbabilityVector []float64

// Sum returns the total mass; 1.0 within tolerance for a valid vector.
func (p ProbabilityVector) Sum() float64 {
	var s float64
	for _, v := range p {
		s += v
	}
	return s
}

// FittedModel wraps a previously fit multinomial classifier: point-estimate
// coefficients plus at most one uncertainty representation. Read-only to the
// engine; safe to share across concurrent simulations.
type FittedModel struct {
	Outcomes   OutcomeSet
	Predictors []string

	Point CoefficientSet

	// Covariance of the flattened coefficient vector (see Flatten for the
	// ordering), for multivariate-normal uncertainty draws. Nil if absent.
	Covariance *mat.SymDense

	// Ensemble is a precomputed bootstrap of coefficient realizations.
	// Nil if absent.
	Ensemble []CoefficientSet
}

// Validate checks internal shape agreement.
func (m *FittedModel) Validate() error {
	if err := m.Outcomes.Validate(); err != nil {
		return err
	}
	if len(m.Predictors) == 0 {
		return fmt.Errorf("%w: no predictors", core.ErrInvalidModel)
	}
	if err := m.Point.Validate(m.Outcomes); err != nil {
		return err
	}
	if len(m.Point.Predictors) != len(m.Predictors) {
		return fmt.Errorf("%w: point estimate predictor order disagrees with model", core.ErrInvalidModel)
	}
	if m.Covariance != nil {
		if d := m.Covariance.SymmetricDim(); d != m.Dim() {
			return fmt.Errorf("%w: covariance is %dx%d, expected %dx%d",
				core.ErrInvalidModel, d, d, m.Dim(), m.Dim())
		}
	}
	for i, cs := range m.Ensemble {
		if err := cs.Validate(m.Outcomes); err != nil {
			return fmt.Errorf("ensemble member %d: %w", i, err)
		}
	}
	return nil
}

// Dim is the length of the flattened coefficient vector.
func (m *FittedModel) Dim() int {
	return (len(m.Outcomes) - 1) * len(m.Predictors)
}

// Flatten lays out a coefficient set outcome-major: for each non-reference
// outcome in set order, its weights in predictor order. The covariance
// matrix uses this same ordering.
func (m *FittedModel) Flatten(c CoefficientSet) []float64 {
	flat := make([]float64, 0, m.Dim())
	for _, o := range m.Outcomes.NonReference() {
		flat = append(flat, c.Weights[o]...)
	}
	return flat
}

// Unflatten is the inverse of Flatten.
func (m *FittedModel) Unflatten(flat []float64) (CoefficientSet, error) {
	if len(flat) != m.Dim() {
		return CoefficientSet{}, fmt.Errorf("%w: flat vector has %d entries, expected %d",
			core.ErrDimensionMismatch, len(flat), m.Dim())
	}
	out := CoefficientSet{
		Predictors: m.Predictors,
		Weights:    make(map[Outcome][]float64, len(m.Outcomes)-1),
	}
	p := len(m.Predictors)
	for i, o := range m.Outcomes.NonReference() {
		out.Weights[o] = append([]float64(nil), flat[i*p:(i+1)*p]...)
	}
	return out, nil
}

// CovariateRow builds the design row for one model-space case, aligned to
// the predictor order. The intercept column is filled with 1.0; every other
// predictor must be present in the case.
func (m *FittedModel) CovariateRow(modelCase map[string]float64) ([]float64, error) {
	row := make([]float64, len(m.Predictors))
	for i, p := range m.Predictors {
		if p == InterceptPredictor {
			row[i] = 1.0
			continue
		}
		v, ok := modelCase[p]
		if !ok {
			return nil, core.NewDimensionMismatchError(p, "missing from case description")
		}
		row[i] = v
	}
	return row, nil
}

// Fingerprint hashes the point estimate for run audit rows.
func (m *FittedModel) Fingerprint() core.ModelHash {
	var b strings.Builder
	for _, o := range m.Outcomes {
		fmt.Fprintf(&b, "%s;", o)
	}
	for _, p := range m.Predictors {
		fmt.Fprintf(&b, "%s;", p)
	}
	for _, w := range m.Flatten(m.Point) {
		fmt.Fprintf(&b, "%g;", w)
	}
	return core.NewModelHash([]byte(b.String()))
}

// HasCovariance reports whether covariance-based draws are possible.
func (m *FittedModel) HasCovariance() bool {
	return m.Covariance != nil
}

// HasEnsemble reports whether bootstrap resampling is possible.
func (m *FittedModel) HasEnsemble() bool {
	return len(m.Ensemble) > 0
}
