package distance

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinkowski(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		p        float32
		expected float32
	}{
		{"Euclidean", []float32{0, 0}, []float32{3, 4}, 2, 5},
		{"EuclideanNear", []float32{1, 1}, []float32{0.9, 0.9}, 2, 0.14142136},
		{"Manhattan", []float32{1, -1}, []float32{-1, 1}, 1, 4},
		{"Chebyshev", []float32{1, 5, 2}, []float32{2, 1, 2}, float32(math.Inf(1)), 4},
		{"Cubic", []float32{0, 0}, []float32{1, 1}, 3, float32(math.Cbrt(2))},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 2, 0},
		{"Empty", []float32{}, []float32{}, 2, 0},
		// Odd and fractional exponents must not depend on the sign of the difference.
		{"CubicNegativeDiff", []float32{1, 1}, []float32{0, 0}, 3, float32(math.Cbrt(2))},
		{"Fractional", []float32{0, 0}, []float32{-1, 1}, 0.5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Minkowski(tt.a, tt.b, tt.p)
			assert.InDelta(t, tt.expected, got, 1e-5)

			fn, err := New(tt.p)
			require.NoError(t, err)
			assert.InDelta(t, got, fn(tt.a, tt.b), 1e-6)
		})
	}
}

func TestMinkowskiSymmetric(t *testing.T) {
	a := []float32{0.5, -2, 7.25, 3}
	b := []float32{-1.5, 4, 7, -3}

	for _, p := range []float32{0.5, 1, 1.5, 2, 3, float32(math.Inf(1))} {
		assert.InDelta(t, Minkowski(a, b, p), Minkowski(b, a, p), 1e-6, "p=%v", p)
	}
}

func TestValidateP(t *testing.T) {
	for _, p := range []float32{0.1, 1, 2, 7.5, float32(math.Inf(1))} {
		assert.NoError(t, ValidateP(p), "p=%v", p)
	}

	for _, p := range []float32{0, -1, float32(math.NaN()), float32(math.Inf(-1))} {
		err := ValidateP(p)
		require.Error(t, err, "p=%v", p)
		assert.ErrorIs(t, err, ErrInvalidP)
	}

	_, err := New(0)
	assert.ErrorIs(t, err, ErrInvalidP)
}

func BenchmarkMinkowski(b *testing.B) {
	x := make([]float32, 128)
	y := make([]float32, 128)
	for i := range x {
		x[i] = float32(i)
		y[i] = float32(128 - i)
	}

	for _, p := range []float32{1, 2, 3} {
		fn, _ := New(p)
		b.Run(fmt.Sprintf("p=%v", p), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = fn(x, y)
			}
		})
	}
}
