package kdknn

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hupe1980/kdknn/internal/conv"
	"github.com/hupe1980/kdknn/internal/kdtree"
	"github.com/hupe1980/kdknn/internal/pool"
	"github.com/hupe1980/kdknn/model"
)

// Neighbor is one search result: a row index of the point array and its
// distance to the query.
type Neighbor = model.Neighbor

// SearchContext holds the per-query state of a search. See
// Index.SearchWithContext.
type SearchContext = kdtree.SearchContext

// Index is an immutable k-d tree over a borrowed point array.
//
// Search, Nearest and SearchBatch are safe for concurrent use. Release
// waits for in-flight searches to finish.
type Index struct {
	mu       sync.RWMutex
	tree     *kdtree.Tree
	pool     *pool.ContextPool
	opts     options
	log      *Logger
	dim      int
	p        float32
	reserved int64
}

// scratchBytesPerPoint is the transient build memory per indexed point:
// the id buffer, the partition buffer and the median candidates.
const scratchBytesPerPoint = 4 + 4 + 8

// nodeBytes is the arena size of one tree node.
const nodeBytes = 16

// Build constructs an index over points, a row-major array of rows x cols
// values, using the Minkowski distance with exponent p.
//
// points is borrowed: it must not be modified while the index is in use.
func Build(points []float32, rows, cols int, p float32, opts ...Option) (*Index, error) {
	o := applyOptions(opts)
	start := time.Now()

	idx, err := build(points, rows, cols, p, o)
	depth := 0
	if idx != nil {
		depth = idx.tree.Depth()
	}

	o.metricsCollector.RecordBuild(rows, time.Since(start), err)
	o.logger.WithDimension(cols).LogBuild(context.Background(), rows, p, depth, time.Since(start), err)

	return idx, err
}

func build(points []float32, rows, cols int, p float32, o options) (*Index, error) {
	if rows <= 0 || len(points) == 0 {
		return nil, ErrEmptyPointSet
	}
	if cols <= 0 || len(points) != rows*cols {
		return nil, &ErrShapeMismatch{Rows: rows, Cols: cols, Len: len(points)}
	}
	// Node links are int32 arena indices.
	if _, err := conv.IntToInt32(rows); err != nil {
		return nil, &ErrShapeMismatch{Rows: rows, Cols: cols, Len: len(points), cause: err}
	}
	if err := validateP(p); err != nil {
		return nil, err
	}
	if err := checkFinite(points); err != nil {
		return nil, err
	}

	ids, err := selectRows(rows, o)
	if err != nil {
		return nil, err
	}

	n := int64(len(ids))
	scratch := n * scratchBytesPerPoint
	arena := n * nodeBytes
	if err := o.controller.AcquireMemory(arena + scratch); err != nil {
		return nil, fmt.Errorf("build %d points: %w", n, err)
	}

	tree, err := kdtree.Build(points, cols, ids, p)
	o.controller.ReleaseMemory(scratch)
	if err != nil {
		o.controller.ReleaseMemory(arena)
		return nil, translateError(err, p)
	}

	return &Index{
		tree:     tree,
		pool:     pool.New(rows),
		opts:     o,
		log:      o.logger.WithDimension(cols),
		dim:      cols,
		p:        p,
		reserved: arena,
	}, nil
}

func selectRows(rows int, o options) ([]uint32, error) {
	if o.rowFilter == nil {
		ids := make([]uint32, rows)
		for i := range ids {
			ids[i] = uint32(i)
		}
		return ids, nil
	}

	if o.rowFilter.IsEmpty() {
		return nil, ErrEmptyRowFilter
	}
	if last := o.rowFilter.Maximum(); int(last) >= rows {
		return nil, fmt.Errorf("%w: row %d, %d rows", ErrRowOutOfRange, last, rows)
	}
	return o.rowFilter.ToArray(), nil
}

// Search returns the k nearest indexed points to query in ascending
// distance order. Among points at exactly equal distance, the first one
// evaluated is kept.
func (idx *Index) Search(query []float32, k int) ([]Neighbor, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	start := time.Now()

	if err := idx.checkQuery(query, k); err != nil {
		idx.opts.metricsCollector.RecordSearch(k, 0, time.Since(start), err)
		idx.log.LogSearch(context.Background(), k, 0, 0, err)
		return nil, err
	}

	sc := idx.pool.Get()
	res := idx.tree.Search(sc, query, k, make([]Neighbor, 0, k))
	evals := sc.Evaluations
	idx.pool.Put(sc)

	idx.opts.metricsCollector.RecordSearch(k, evals, time.Since(start), nil)
	idx.log.LogSearch(context.Background(), k, len(res), evals, nil)

	return res, nil
}

// NewSearchContext returns a search context sized for this index.
func (idx *Index) NewSearchContext() *SearchContext {
	return kdtree.NewSearchContext(idx.pool.Rows())
}

// SearchWithContext is Search with caller-owned state: results are
// appended to dst and nothing is allocated once sc and dst have grown to
// size. sc must not be used by two searches at once.
func (idx *Index) SearchWithContext(sc *SearchContext, query []float32, k int, dst []Neighbor) ([]Neighbor, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if sc == nil {
		return dst, fmt.Errorf("kdknn: nil search context")
	}
	if err := idx.checkQuery(query, k); err != nil {
		return dst, err
	}

	return idx.tree.Search(sc, query, k, dst), nil
}

// Nearest returns the single nearest indexed point to query.
func (idx *Index) Nearest(query []float32) (Neighbor, error) {
	res, err := idx.Search(query, 1)
	if err != nil {
		return Neighbor{}, err
	}
	return res[0], nil
}

// checkQuery must be called with idx.mu held.
func (idx *Index) checkQuery(query []float32, k int) error {
	if idx.tree == nil {
		return ErrReleased
	}
	if len(query) != idx.dim {
		return &ErrDimensionMismatch{Expected: idx.dim, Actual: len(query)}
	}
	if k < 1 || k > idx.tree.Len() {
		return fmt.Errorf("%w: k=%d, %d points", ErrInvalidK, k, idx.tree.Len())
	}
	return checkFinite(query)
}

// Release tears down the tree and returns the number of nodes released.
// It returns the index's memory reservation to the resource controller.
// Release is idempotent; later calls return 0.
func (idx *Index) Release() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.tree == nil {
		return 0
	}

	nodes := idx.tree.Release()
	idx.tree = nil
	idx.opts.controller.ReleaseMemory(idx.reserved)

	idx.opts.metricsCollector.RecordRelease(nodes)
	idx.log.LogRelease(context.Background(), nodes, idx.reserved)
	idx.reserved = 0

	return nodes
}

// Released reports whether Release has been called.
func (idx *Index) Released() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree == nil
}

// Len returns the number of indexed points, or 0 after Release.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.tree == nil {
		return 0
	}
	return idx.tree.Len()
}

// Dim returns the number of columns per point.
func (idx *Index) Dim() int { return idx.dim }

// P returns the Minkowski exponent.
func (idx *Index) P() float32 { return idx.p }

// Depth returns the number of nodes on the longest root-to-leaf path, or 0
// after Release.
func (idx *Index) Depth() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.tree == nil {
		return 0
	}
	return idx.tree.Depth()
}

// Validate checks the split invariant over every node.
func (idx *Index) Validate() error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.tree == nil {
		return ErrReleased
	}
	return idx.tree.Validate()
}

// ReservedBytes returns the memory reserved with the resource controller.
func (idx *Index) ReservedBytes() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.reserved
}

func checkFinite(values []float32) error {
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: position %d", ErrNonFiniteValue, i)
		}
	}
	return nil
}
