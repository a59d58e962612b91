package core

import (
	"testing"
)

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatal("NewID returned empty ID")
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestHashKeyedValues_OrderIndependent(t *testing.T) {
	a := map[string]float64{"log_age_eps_begin": 2.1, "rep_count": 3, "housing_instability": 1}
	b := map[string]float64{"housing_instability": 1, "log_age_eps_begin": 2.1, "rep_count": 3}

	if HashKeyedValues(a) != HashKeyedValues(b) {
		t.Error("hash should not depend on map construction order")
	}

	c := map[string]float64{"housing_instability": 1, "log_age_eps_begin": 2.2, "rep_count": 3}
	if HashKeyedValues(a) == HashKeyedValues(c) {
		t.Error("hash should change when a value changes")
	}
}
