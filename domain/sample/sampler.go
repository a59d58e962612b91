package sample

import (
	"fmt"
	"math/rand/v2"

	"casesim/domain/core"
	"casesim/domain/model"

	"gonum.org/v1/gonum/stat/distmv"
)

// Sampler draws independent coefficient realizations from a fitted model's
// uncertainty representation. Implementations hold no state beyond their
// RNG stream, so each simulation owns its own instance.
type Sampler interface {
	Draw() (model.CoefficientSet, error)
}

// NewSampler selects the sampler matching the model's uncertainty
// representation: multivariate-normal around the point estimate when a
// coefficient covariance is present, bootstrap resampling when only an
// ensemble is. Fails with ErrInsufficientUncertaintyData when the fit
// carries neither.
func NewSampler(fm *model.FittedModel, rng *rand.Rand) (Sampler, error) {
	switch {
	case fm.HasCovariance():
		return NewCovarianceSampler(fm, rng)
	case fm.HasEnsemble():
		return NewEnsembleSampler(fm, rng)
	default:
		return nil, core.ErrInsufficientUncertaintyData
	}
}

// CovarianceSampler draws from N(point estimate, covariance) over the
// flattened coefficient vector.
type CovarianceSampler struct {
	fm     *model.FittedModel
	normal *distmv.Normal
}

// NewCovarianceSampler builds the multivariate normal. A covariance that is
// not positive definite cannot be factorized and is treated as unusable
// uncertainty data.
func NewCovarianceSampler(fm *model.FittedModel, rng *rand.Rand) (*CovarianceSampler, error) {
	if !fm.HasCovariance() {
		return nil, core.ErrInsufficientUncertaintyData
	}
	mu := fm.Flatten(fm.Point)
	normal, ok := distmv.NewNormal(mu, fm.Covariance, rng)
	if !ok {
		return nil, fmt.Errorf("%w: covariance is not positive definite", core.ErrInsufficientUncertaintyData)
	}
	return &CovarianceSampler{fm: fm, normal: normal}, nil
}

// Draw samples one perturbed coefficient set.
func (s *CovarianceSampler) Draw() (model.CoefficientSet, error) {
	flat := s.normal.Rand(nil)
	return s.fm.Unflatten(flat)
}

// EnsembleSampler resamples uniformly from a precomputed bootstrap of
// coefficient realizations.
type EnsembleSampler struct {
	ensemble []model.CoefficientSet
	rng      *rand.Rand
}

// NewEnsembleSampler wraps the model's bootstrap ensemble.
func NewEnsembleSampler(fm *model.FittedModel, rng *rand.Rand) (*EnsembleSampler, error) {
	if !fm.HasEnsemble() {
		return nil, core.ErrInsufficientUncertaintyData
	}
	return &EnsembleSampler{ensemble: fm.Ensemble, rng: rng}, nil
}

// Draw picks one ensemble member. The member is cloned so callers can never
// alias the shared model.
func (s *EnsembleSampler) Draw() (model.CoefficientSet, error) {
	i := s.rng.IntN(len(s.ensemble))
	return s.ensemble[i].Clone(), nil
}
