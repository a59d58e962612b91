package transform

import (
	"errors"
	"math"
	"testing"

	"casesim/domain/core"
)

func TestTransform_RoundTrip(t *testing.T) {
	// toModel(toDisplay(x)) == x within floating tolerance, for each kind
	// over a representative sample of model-space values.
	const tol = 1e-9

	tests := []struct {
		name      string
		transform Transform
		samples   []float64
	}{
		{"identity", Identity(), []float64{-10, -0.5, 0, 0.5, 10, 1e6}},
		{"negate", Negate(), []float64{-10, -0.5, 0, 0.5, 10}},
		{"exp", Exp(), []float64{-5, -1, 0, 1, 2.5, 5}},
		{"expm1", Expm1(), []float64{-5, -1, 0, 1, 2.5, 5}},
		{"affine", Affine(12, -3), []float64{-10, 0, 0.25, 7}},
		{"custom sqrt pair", Custom(
			func(x float64) (float64, error) { return x * x, nil },
			func(x float64) (float64, error) {
				if x < 0 {
					return 0, core.ErrDomain
				}
				return math.Sqrt(x), nil
			},
		), []float64{0, 0.5, 2, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, x := range tt.samples {
				d, err := tt.transform.ToDisplay(x)
				if err != nil {
					t.Fatalf("ToDisplay(%v): %v", x, err)
				}
				back, err := tt.transform.ToModel(d)
				if err != nil {
					t.Fatalf("ToModel(ToDisplay(%v)): %v", x, err)
				}
				if math.Abs(back-x) > tol*math.Max(1, math.Abs(x)) {
					t.Errorf("round trip drifted: %v -> %v -> %v", x, d, back)
				}
			}
		})
	}
}

func TestTransform_DomainErrors(t *testing.T) {
	tests := []struct {
		name      string
		transform Transform
		display   float64
	}{
		{"exp rejects zero", Exp(), 0},
		{"exp rejects negative", Exp(), -3},
		{"expm1 rejects -1", Expm1(), -1},
		{"expm1 rejects below -1", Expm1(), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.transform.ToModel(tt.display)
			if !errors.Is(err, core.ErrDomain) {
				t.Errorf("expected ErrDomain, got %v", err)
			}
		})
	}
}

func TestTransform_Validate(t *testing.T) {
	if err := Affine(0, 5).Validate(); !errors.Is(err, core.ErrInvalidSpec) {
		t.Errorf("zero-scale affine should be rejected, got %v", err)
	}
	if err := (Transform{Kind: KindCustom, Forward: nil, Inverse: nil}).Validate(); !errors.Is(err, core.ErrInvalidSpec) {
		t.Errorf("custom transform without pair should be rejected, got %v", err)
	}
	if err := (Transform{Kind: "mystery"}).Validate(); !errors.Is(err, core.ErrInvalidSpec) {
		t.Errorf("unknown kind should be rejected, got %v", err)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg, err := NewRegistry([]VariableSpec{
		{
			ID:                  "log_age_eps_begin",
			DisplayName:         "Age at episode begin",
			SliderCandidate:     true,
			AxisCandidate:       true,
			RoundingGranularity: 0.5,
			Transform:           Exp(),
		},
		{
			ID:          "region",
			DisplayName: "Region",
			FacetCandidate: true,
			Transform:   Identity(),
		},
		{
			ID:              "rep_count",
			DisplayName:     "Prior report count",
			SliderCandidate: true,
			Transform:       Identity(),
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	t.Run("to display applies exp", func(t *testing.T) {
		got, err := reg.ToDisplay("log_age_eps_begin", 0)
		if err != nil {
			t.Fatal(err)
		}
		if got != 1 {
			t.Errorf("exp(0) = %v, want 1", got)
		}
	})

	t.Run("unknown variable", func(t *testing.T) {
		_, err := reg.ToModel("no_such_var", 1)
		if !errors.Is(err, core.ErrUnknownVariable) {
			t.Errorf("expected ErrUnknownVariable, got %v", err)
		}
	})

	t.Run("granularity fallback", func(t *testing.T) {
		g, err := reg.RoundingGranularity("rep_count")
		if err != nil {
			t.Fatal(err)
		}
		if g != DefaultRoundingGranularity {
			t.Errorf("fallback granularity = %v, want %v", g, DefaultRoundingGranularity)
		}

		g, err = reg.RoundingGranularity("log_age_eps_begin")
		if err != nil {
			t.Fatal(err)
		}
		if g != 0.5 {
			t.Errorf("declared granularity = %v, want 0.5", g)
		}
	})

	t.Run("candidacy flags", func(t *testing.T) {
		axis, _ := reg.IsAxisCandidate("log_age_eps_begin")
		if !axis {
			t.Error("log_age_eps_begin should be axis-eligible")
		}
		facet, _ := reg.IsFacetCandidate("region")
		if !facet {
			t.Error("region should be facet-eligible")
		}
		slider, _ := reg.IsSliderCandidate("region")
		if slider {
			t.Error("region should not be slider-eligible")
		}
	})

	t.Run("spec order preserved", func(t *testing.T) {
		specs := reg.Specs()
		if len(specs) != 3 || specs[0].ID != "log_age_eps_begin" || specs[2].ID != "rep_count" {
			t.Errorf("Specs() lost registration order: %+v", specs)
		}
	})
}

func TestRegistry_RejectsInvalidSpecs(t *testing.T) {
	tests := []struct {
		name  string
		specs []VariableSpec
	}{
		{"facet combined with slider", []VariableSpec{
			{ID: "x", SliderCandidate: true, FacetCandidate: true, Transform: Identity()},
		}},
		{"facet combined with axis", []VariableSpec{
			{ID: "x", AxisCandidate: true, FacetCandidate: true, Transform: Identity()},
		}},
		{"duplicate id", []VariableSpec{
			{ID: "x", Transform: Identity()},
			{ID: "x", Transform: Identity()},
		}},
		{"label count mismatch", []VariableSpec{
			{ID: "x", AxisCandidate: true, Transform: Identity(),
				AxisBreaks: []float64{0, 1, 2}, AxisLabels: []string{"lo", "hi"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.specs); !errors.Is(err, core.ErrInvalidSpec) {
				t.Errorf("expected ErrInvalidSpec, got %v", err)
			}
		})
	}
}
