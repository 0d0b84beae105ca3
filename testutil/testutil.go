package testutil

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/kdknn/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// UniformPoints generates a rows x dim row-major array with values in [0, 1).
func (r *RNG) UniformPoints(rows, dim int) []float32 {
	data := make([]float32, rows*dim)
	r.FillUniform(data)
	return data
}

// GaussianPoints generates a rows x dim row-major array of standard normal values.
func (r *RNG) GaussianPoints(rows, dim int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, rows*dim)
	for i := range data {
		data[i] = float32(r.rand.NormFloat64())
	}
	return data
}

// ClusteredPoints generates points scattered around random centroids in
// [-10, 10)^dim with Gaussian noise of the given spread.
func (r *RNG) ClusteredPoints(rows, dim, clusters int, spread float32) []float32 {
	centroids := make([]float32, clusters*dim)
	r.FillUniformRange(centroids, -10, 10)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, rows*dim)
	for i := range rows {
		c := centroids[(i%clusters)*dim : (i%clusters+1)*dim]
		row := data[i*dim : (i+1)*dim]
		for j := range row {
			row[j] = c[j] + float32(r.rand.NormFloat64())*spread
		}
	}
	return data
}

// DuplicateHeavyPoints generates points whose coordinates take only
// `distinct` different values per dimension, so many points share the same
// value on every split dimension and many points are exact duplicates.
func (r *RNG) DuplicateHeavyPoints(rows, dim, distinct int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, rows*dim)
	for i := range data {
		data[i] = float32(r.rand.Intn(distinct))
	}
	return data
}

// Labels generates rows class labels in [0, classes).
func (r *RNG) Labels(rows, classes int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	labels := make([]float32, rows)
	for i := range labels {
		labels[i] = float32(r.rand.Intn(classes))
	}
	return labels
}

// BruteForceKNN returns the k points of data closest to query under the
// Minkowski distance with exponent p, in ascending distance order (ties by
// id). It scans every row.
func BruteForceKNN(data []float32, dim int, query []float32, k int, p float64) []model.Neighbor {
	rows := len(data) / dim
	q := toFloat64(query, nil)
	row := make([]float64, dim)

	all := make([]model.Neighbor, rows)
	for i := range rows {
		row = toFloat64(data[i*dim:(i+1)*dim], row)
		all[i] = model.Neighbor{ID: uint32(i), Distance: float32(floats.Distance(row, q, p))}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].ID < all[j].ID
	})

	return all[:min(k, rows)]
}

func toFloat64(src []float32, dst []float64) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = float64(v)
	}
	return dst
}

// ErrMismatch is returned by CheckKNN when a result differs from the ground truth.
var ErrMismatch = errors.New("knn result mismatch")

// CheckKNN verifies that got holds the same multiset of distances as want
// (within tol) and no duplicate ids. Ids are not compared directly, since
// points at equal distance may be returned in either order.
func CheckKNN(got, want []model.Neighbor, tol float32) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: got %d results, want %d", ErrMismatch, len(got), len(want))
	}

	seen := make(map[uint32]struct{}, len(got))
	for _, n := range got {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: id %d returned twice", ErrMismatch, n.ID)
		}
		seen[n.ID] = struct{}{}
	}

	g := sortedDistances(got)
	w := sortedDistances(want)
	for i := range g {
		if math.Abs(float64(g[i]-w[i])) > float64(tol) {
			return fmt.Errorf("%w: rank %d distance %v, want %v", ErrMismatch, i, g[i], w[i])
		}
	}
	return nil
}

func sortedDistances(ns []model.Neighbor) []float32 {
	d := make([]float32, len(ns))
	for i, n := range ns {
		d[i] = n.Distance
	}
	sort.Slice(d, func(i, j int) bool { return d[i] < d[j] })
	return d
}

// ComputeRecall returns the fraction of ground-truth ids present in the result.
func ComputeRecall(groundTruth, result []model.Neighbor) float64 {
	if len(groundTruth) == 0 {
		return 1.0
	}
	ids := make(map[uint32]struct{}, len(result))
	for _, n := range result {
		ids[n.ID] = struct{}{}
	}
	hits := 0
	for _, n := range groundTruth {
		if _, ok := ids[n.ID]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(groundTruth))
}
