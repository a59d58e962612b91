package transform

import (
	"fmt"
	"math"

	"casesim/domain/core"
)

// Kind names the forward (model space -> display space) mapping of a
// transform pair. The inverse is derived from the kind, which keeps the
// mutually-inverse invariant checkable instead of hiding it in closures.
type Kind string

const (
	// KindIdentity leaves values unchanged in both directions.
	KindIdentity Kind = "identity"
	// KindNegate flips sign; self-inverse.
	KindNegate Kind = "negate"
	// KindExp displays exp(model); model space holds logged values.
	KindExp Kind = "exp"
	// KindExpm1 displays expm1(model); model space holds log1p values.
	KindExpm1 Kind = "expm1"
	// KindAffine displays scale*model + offset.
	KindAffine Kind = "affine"
	// KindCustom uses a caller-supplied pure function pair.
	KindCustom Kind = "custom"
)

// Func is a pure scalar mapping used by custom transforms.
type Func func(float64) (float64, error)

// Transform is one direction-pair for a variable.
type Transform struct {
	Kind Kind

	// Affine parameters, meaningful only for KindAffine.
	Scale  float64
	Offset float64

	// Custom pair, meaningful only for KindCustom. Both must be set and
	// mutually inverse over the variable's valid domain.
	Forward Func
	Inverse Func
}

// Identity returns the identity transform.
func Identity() Transform { return Transform{Kind: KindIdentity} }

// Exp returns the log-model / exp-display transform.
func Exp() Transform { return Transform{Kind: KindExp} }

// Expm1 returns the log1p-model / expm1-display transform.
func Expm1() Transform { return Transform{Kind: KindExpm1} }

// Negate returns the sign-flip transform.
func Negate() Transform { return Transform{Kind: KindNegate} }

// Affine returns display = scale*model + offset.
func Affine(scale, offset float64) Transform {
	return Transform{Kind: KindAffine, Scale: scale, Offset: offset}
}

// Custom wraps a caller-supplied pure pair.
func Custom(forward, inverse Func) Transform {
	return Transform{Kind: KindCustom, Forward: forward, Inverse: inverse}
}

// Validate rejects incoherent definitions before registration.
func (t Transform) Validate() error {
	switch t.Kind {
	case KindIdentity, KindNegate, KindExp, KindExpm1:
		return nil
	case KindAffine:
		if t.Scale == 0 {
			return fmt.Errorf("%w: affine transform with zero scale is not invertible", core.ErrInvalidSpec)
		}
		return nil
	case KindCustom:
		if t.Forward == nil || t.Inverse == nil {
			return fmt.Errorf("%w: custom transform needs both forward and inverse", core.ErrInvalidSpec)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown transform kind %q", core.ErrInvalidSpec, t.Kind)
	}
}

// ToDisplay maps a model-space value to display space.
func (t Transform) ToDisplay(x float64) (float64, error) {
	switch t.Kind {
	case KindIdentity:
		return x, nil
	case KindNegate:
		return -x, nil
	case KindExp:
		return math.Exp(x), nil
	case KindExpm1:
		return math.Expm1(x), nil
	case KindAffine:
		return t.Scale*x + t.Offset, nil
	case KindCustom:
		return t.Forward(x)
	default:
		return 0, fmt.Errorf("%w: unknown transform kind %q", core.ErrInvalidSpec, t.Kind)
	}
}

// ToModel maps a display-space value back to model space.
func (t Transform) ToModel(x float64) (float64, error) {
	switch t.Kind {
	case KindIdentity:
		return x, nil
	case KindNegate:
		return -x, nil
	case KindExp:
		if x <= 0 {
			return 0, fmt.Errorf("%w: log undefined at %v", core.ErrDomain, x)
		}
		return math.Log(x), nil
	case KindExpm1:
		if x <= -1 {
			return 0, fmt.Errorf("%w: log1p undefined at %v", core.ErrDomain, x)
		}
		return math.Log1p(x), nil
	case KindAffine:
		return (x - t.Offset) / t.Scale, nil
	case KindCustom:
		return t.Inverse(x)
	default:
		return 0, fmt.Errorf("%w: unknown transform kind %q", core.ErrInvalidSpec, t.Kind)
	}
}
