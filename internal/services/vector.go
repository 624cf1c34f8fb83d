package services

import "math"

// CosineSimilarity is the defensive cosine used in every scoring path. It
// pairs elements positionally up to the shorter vector, skips non-finite
// pairs, and returns 0.0 for nil, empty or zero-norm input. The result is
// clamped to [0,1]; it never panics.
func CosineSimilarity(vecA, vecB []float32) float64 {
	if len(vecA) == 0 || len(vecB) == 0 {
		return 0.0
	}

	n := len(vecA)
	if len(vecB) < n {
		n = len(vecB)
	}

	var dot, sumA, sumB float64
	for i := 0; i < n; i++ {
		a := float64(vecA[i])
		b := float64(vecB[i])
		if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(b) || math.IsInf(b, 0) {
			continue
		}
		dot += a * b
		sumA += a * a
		sumB += b * b
	}

	if sumA == 0 || sumB == 0 {
		return 0.0
	}

	sim := dot / (math.Sqrt(sumA) * math.Sqrt(sumB))
	if math.IsNaN(sim) || sim < 0 {
		return 0.0
	}
	if sim > 1 {
		return 1.0
	}
	return sim
}

// round2 and round4 keep scores and similarities at the precision they are
// stored and compared with.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
