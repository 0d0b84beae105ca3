package distance

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidP is returned for a NaN or non-positive exponent.
var ErrInvalidP = errors.New("minkowski exponent must be > 0")

// Func is a function type for distance calculation.
// Both slices must have the same length (caller's responsibility).
type Func func(a, b []float32) float32

// ValidateP reports whether p is a usable Minkowski exponent.
func ValidateP(p float32) error {
	if math.IsNaN(float64(p)) || p <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidP, p)
	}
	return nil
}

// New returns the distance function for exponent p.
// p = 1, 2 and +Inf get dedicated kernels.
func New(p float32) (Func, error) {
	if err := ValidateP(p); err != nil {
		return nil, err
	}

	switch {
	case p == 1:
		return Manhattan, nil
	case p == 2:
		return Euclidean, nil
	case math.IsInf(float64(p), 1):
		return Chebyshev, nil
	default:
		return func(a, b []float32) float32 {
			return minkowski(a, b, float64(p))
		}, nil
	}
}

// Minkowski computes (Σ|a_i - b_i|^p)^(1/p).
// Assumes vectors are the same length and p passed ValidateP.
func Minkowski(a, b []float32, p float32) float32 {
	switch {
	case p == 1:
		return Manhattan(a, b)
	case p == 2:
		return Euclidean(a, b)
	case math.IsInf(float64(p), 1):
		return Chebyshev(a, b)
	default:
		return minkowski(a, b, float64(p))
	}
}

func minkowski(a, b []float32, p float64) float32 {
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(float64(a[i])-float64(b[i])), p)
	}
	return float32(math.Pow(sum, 1/p))
}

// Manhattan computes the L1 distance.
func Manhattan(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return float32(sum)
}

// Euclidean computes the L2 distance.
func Euclidean(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

// Chebyshev computes the L-infinity distance.
func Chebyshev(a, b []float32) float32 {
	var maxVal float64
	for i := range a {
		if v := math.Abs(float64(a[i]) - float64(b[i])); v > maxVal {
			maxVal = v
		}
	}
	return float32(maxVal)
}
