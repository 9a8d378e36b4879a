package reembed

import (
	"math"
	"testing"
)

func TestNormalizeVector(t *testing.T) {
	got := NormalizeVector([]float32{3, 4})
	if math.Abs(float64(got[0])-0.6) > 0.0001 || math.Abs(float64(got[1])-0.8) > 0.0001 {
		t.Fatalf("expected [0.6 0.8], got %v", got)
	}
}

func TestNormalizeVectorZero(t *testing.T) {
	got := NormalizeVector([]float32{0, 0, 0})
	for i, v := range got {
		if v != 0 {
			t.Fatalf("expected zero vector, got %v at index %d", v, i)
		}
	}
}

func TestNormalizeVectorEmpty(t *testing.T) {
	if got := NormalizeVector(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestNormalizeVectorDoesNotMutateInput(t *testing.T) {
	input := []float32{3, 4}
	_ = NormalizeVector(input)
	if input[0] != 3 || input[1] != 4 {
		t.Fatalf("input mutated: %v", input)
	}
}
