// Package vector provides pure numeric helpers for embedding vectors.
package vector

import (
	"math"

	"github.com/talentgrid/matchd/internal/domain"
)

// CosineSimilarity returns the normalized dot product of two equal-length
// vectors. Returns ErrDimensionMismatch on unequal or zero lengths. A zero
// norm on either side yields 0.0 rather than dividing by zero.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, domain.ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Clamp01 clamps a score into [0.0, 1.0].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
