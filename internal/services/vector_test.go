package services

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"nil a", nil, []float32{1, 2}, 0.0},
		{"nil b", []float32{1, 2}, nil, 0.0},
		{"both empty", []float32{}, []float32{}, 0.0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}, 0.0},
		{"negative clamped", []float32{1, 0}, []float32{-1, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityMismatchedLengths(t *testing.T) {
	// Pairs positionally up to the shorter vector instead of panicking.
	got := CosineSimilarity([]float32{1, 0, 5, 5}, []float32{1, 0})
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("CosineSimilarity with mismatched lengths = %v, want 1.0", got)
	}
}

func TestCosineSimilarityNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	got := CosineSimilarity([]float32{nan, 1, 0}, []float32{2, 1, 0})
	if math.IsNaN(got) {
		t.Fatal("result must never be NaN")
	}
	if got < 0 || got > 1 {
		t.Fatalf("result %v out of [0,1]", got)
	}
}

func TestRoundHelpers(t *testing.T) {
	if got := round2(45.6789); got != 45.68 {
		t.Errorf("round2 = %v, want 45.68", got)
	}
	if got := round4(0.123456); got != 0.1235 {
		t.Errorf("round4 = %v, want 0.1235", got)
	}
}
