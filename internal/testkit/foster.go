// Package testkit builds a small foster-care outcome model used by tests
// and by the binaries when no database-backed model is configured. The
// coefficients are illustrative, not fit to real data.
package testkit

import (
	"casesim/domain/model"
	"casesim/domain/transform"

	"gonum.org/v1/gonum/mat"
)

// FosterOutcomes is the four-way exit outcome set. Reunification is the
// reference category.
func FosterOutcomes() model.OutcomeSet {
	return model.OutcomeSet{"Reunification", "Adoption", "Guardianship", "Emancipation"}
}

// FosterPredictors lists the design row in model order.
func FosterPredictors() []string {
	return []string{
		model.InterceptPredictor,
		"log_age_eps_begin",
		"rep_count",
		"housing_instability",
	}
}

// FosterModel builds the demo fit with a diagonal coefficient covariance.
// The Emancipation weight on log age dominates every other outcome's, so
// swept age shifts mass monotonically toward Emancipation.
func FosterModel() *model.FittedModel {
	outcomes := FosterOutcomes()
	predictors := FosterPredictors()

	point := model.CoefficientSet{
		Predictors: predictors,
		Weights: map[model.Outcome][]float64{
			"Adoption":     {0.8, -1.4, 0.05, 0.20},
			"Guardianship": {-0.6, 0.3, 0.10, 0.15},
			"Emancipation": {-6.0, 2.4, 0.02, 0.10},
		},
	}

	// Diagonal covariance: one variance per flattened coefficient, in
	// outcome-major order matching FittedModel.Flatten.
	perOutcome := []float64{0.25, 0.04, 0.0025, 0.01}
	dim := (len(outcomes) - 1) * len(predictors)
	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		cov.SetSym(i, i, perOutcome[i%len(predictors)])
	}

	return &model.FittedModel{
		Outcomes:   outcomes,
		Predictors: predictors,
		Point:      point,
		Covariance: cov,
	}
}

// FosterSpecs is the per-variable metadata table for the demo model.
func FosterSpecs() []transform.VariableSpec {
	return []transform.VariableSpec{
		{
			ID:                  "log_age_eps_begin",
			DisplayName:         "Age at episode begin",
			Definition:          "Child's age in **years** when the removal episode began.",
			SliderCandidate:     true,
			AxisCandidate:       true,
			RoundingGranularity: 0.5,
			Transform:           transform.Exp(),
			AxisBreaks:          []float64{1, 2, 4, 8, 16},
			AxisLabels:          []string{"1", "2", "4", "8", "16"},
		},
		{
			ID:                  "rep_count",
			DisplayName:         "Prior report count",
			Definition:          "Number of screened-in reports before the episode.",
			SliderCandidate:     true,
			AxisCandidate:       true,
			RoundingGranularity: 1,
			Transform:           transform.Identity(),
		},
		{
			ID:                  "housing_instability",
			DisplayName:         "Housing instability",
			Definition:          "Indicator for unstable housing at episode begin.",
			SliderCandidate:     true,
			RoundingGranularity: 1,
			Transform:           transform.Identity(),
		},
		{
			ID:             "region",
			DisplayName:    "Region",
			Definition:     "Administrative region of the supervising office.",
			FacetCandidate: true,
			Transform:      transform.Identity(),
		},
	}
}

// FosterRegistry builds the registry over FosterSpecs.
func FosterRegistry() *transform.Registry {
	reg, err := transform.NewRegistry(FosterSpecs())
	if err != nil {
		panic("testkit: invalid foster specs: " + err.Error())
	}
	return reg
}

// FosterBaselineCase holds every predictor at a representative value, in
// display space.
func FosterBaselineCase() model.CaseDescription {
	return model.CaseDescription{
		"log_age_eps_begin":   8, // years
		"rep_count":           2,
		"housing_instability": 1,
	}
}
