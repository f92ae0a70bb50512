package common

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Lerp returns the point a fraction t of the way from a to b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Distance is the Euclidean distance between (x1, y1) and (x2, y2).
func Distance[T constraints.Float](x1, y1, x2, y2 T) T {
	return T(math.Hypot(float64(x2-x1), float64(y2-y1)))
}

// IsFinite reports whether every value is neither NaN nor infinite.
func IsFinite[T constraints.Float](values ...T) bool {
	for _, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
