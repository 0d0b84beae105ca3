package kdknn

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// predictor is the state shared by Classifier and Regressor.
type predictor struct {
	mu     sync.Mutex
	k      int
	p      float32
	opts   []Option
	index  *Index
	labels []float32
}

func newPredictor(k int, p float32, opts []Option) (*predictor, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidK, k)
	}
	if err := validateP(p); err != nil {
		return nil, err
	}
	return &predictor{k: k, p: p, opts: opts}, nil
}

// fit builds a fresh index, releasing any previous one.
func (m *predictor) fit(points []float32, rows, cols int, labels []float32) error {
	if len(labels) != rows {
		return &ErrShapeMismatch{Rows: rows, Cols: 1, Len: len(labels)}
	}
	if err := checkFinite(labels); err != nil {
		return fmt.Errorf("labels: %w", err)
	}

	idx, err := Build(points, rows, cols, m.p, m.opts...)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index != nil {
		m.index.Release()
	}
	m.index = idx
	m.labels = labels
	return nil
}

// predict runs a batch search with k clamped to the fitted set and
// calls agg with the labels of each query's neighbors.
func (m *predictor) predict(ctx context.Context, queries []float32, rows int, agg func([]float32) float32) ([]float32, error) {
	m.mu.Lock()
	idx, labels := m.index, m.labels
	m.mu.Unlock()

	if idx == nil {
		return nil, ErrNotFitted
	}

	k := min(m.k, idx.Len())
	if k == 0 {
		return nil, ErrReleased
	}

	results, err := idx.SearchBatch(ctx, queries, rows, k)
	if err != nil {
		return nil, err
	}

	out := make([]float32, rows)
	buf := make([]float32, 0, k)
	for i, res := range results {
		buf = buf[:0]
		for _, n := range res {
			buf = append(buf, labels[n.ID])
		}
		out[i] = agg(buf)
	}
	return out, nil
}

func (m *predictor) close() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == nil {
		return 0
	}
	n := m.index.Release()
	m.index = nil
	m.labels = nil
	return n
}

// Classifier predicts the majority label among the k nearest training rows.
type Classifier struct {
	*predictor
}

// NewClassifier creates a classifier voting over k neighbors under the
// Minkowski distance with exponent p. opts are passed to Build on Fit.
func NewClassifier(k int, p float32, opts ...Option) (*Classifier, error) {
	m, err := newPredictor(k, p, opts)
	if err != nil {
		return nil, err
	}
	return &Classifier{predictor: m}, nil
}

// Fit indexes rows x cols training points with one label per row.
// points and labels are borrowed until the next Fit or Close.
func (c *Classifier) Fit(points []float32, rows, cols int, labels []float32) error {
	return c.fit(points, rows, cols, labels)
}

// Predict returns one label per query row. The most frequent label among
// the neighbors wins; ties go to the smallest label.
func (c *Classifier) Predict(ctx context.Context, queries []float32, rows int) ([]float32, error) {
	return c.predict(ctx, queries, rows, vote)
}

// Close releases the fitted index and returns the number of nodes released.
func (c *Classifier) Close() int { return c.close() }

// Regressor predicts the mean label of the k nearest training rows.
type Regressor struct {
	*predictor
}

// NewRegressor creates a regressor averaging over k neighbors under the
// Minkowski distance with exponent p. opts are passed to Build on Fit.
func NewRegressor(k int, p float32, opts ...Option) (*Regressor, error) {
	m, err := newPredictor(k, p, opts)
	if err != nil {
		return nil, err
	}
	return &Regressor{predictor: m}, nil
}

// Fit indexes rows x cols training points with one target value per row.
// points and labels are borrowed until the next Fit or Close.
func (r *Regressor) Fit(points []float32, rows, cols int, labels []float32) error {
	return r.fit(points, rows, cols, labels)
}

// Predict returns the arithmetic mean of the neighbors' targets per query row.
func (r *Regressor) Predict(ctx context.Context, queries []float32, rows int) ([]float32, error) {
	vals := make([]float64, 0, r.k)
	return r.predict(ctx, queries, rows, func(labels []float32) float32 {
		vals = vals[:0]
		for _, l := range labels {
			vals = append(vals, float64(l))
		}
		return float32(stat.Mean(vals, nil))
	})
}

// Close releases the fitted index and returns the number of nodes released.
func (r *Regressor) Close() int { return r.close() }

// vote returns the most frequent label, preferring the smallest on ties.
func vote(labels []float32) float32 {
	var best float32
	bestCount := 0
	for i, l := range labels {
		count := 0
		for _, o := range labels {
			if o == l {
				count++
			}
		}
		if i == 0 || count > bestCount || (count == bestCount && l < best) {
			best, bestCount = l, count
		}
	}
	return best
}
