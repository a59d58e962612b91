package predict

import (
	"math"

	"casesim/domain/core"
	"casesim/domain/model"
)

// Predictor computes outcome probabilities for one coefficient realization
// and one covariate row under the multinomial logit link. Stateless.
type Predictor struct {
	outcomes model.OutcomeSet
}

// NewPredictor creates a predictor for a fixed outcome set.
func NewPredictor(outcomes model.OutcomeSet) *Predictor {
	return &Predictor{outcomes: outcomes}
}

// Predict computes the probability simplex over the outcome set, in set
// order. The reference category carries an implicit zero score; scores are
// max-shifted before exponentiation so large-magnitude linear predictors do
// not overflow.
func (p *Predictor) Predict(coeffs model.CoefficientSet, row []float64) (model.ProbabilityVector, error) {
	if len(row) != len(coeffs.Predictors) {
		return nil, core.NewDimensionMismatchError("", "covariate row length disagrees with coefficient set")
	}

	scores := make([]float64, len(p.outcomes))
	// scores[0] stays 0 for the reference category.
	for i, o := range p.outcomes.NonReference() {
		w, ok := coeffs.Weights[o]
		if !ok {
			return nil, core.NewDimensionMismatchError(string(o), "no coefficient vector for outcome")
		}
		if len(w) != len(row) {
			return nil, core.NewDimensionMismatchError(string(o), "coefficient vector length disagrees with covariate row")
		}
		var s float64
		for j, x := range row {
			s += w[j] * x
		}
		scores[i+1] = s
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	probs := make(model.ProbabilityVector, len(scores))
	var total float64
	for i, s := range scores {
		e := math.Exp(s - maxScore)
		probs[i] = e
		total += e
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs, nil
}

// PredictCase builds the covariate row from a model-space case and predicts
// in one step.
func (p *Predictor) PredictCase(fm *model.FittedModel, coeffs model.CoefficientSet, modelCase map[string]float64) (model.ProbabilityVector, error) {
	row, err := fm.CovariateRow(modelCase)
	if err != nil {
		return nil, err
	}
	return p.Predict(coeffs, row)
}
