// Package pool provides a per-tree pool of search contexts for
// allocation-free steady-state queries.
package pool

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/kdknn/internal/kdtree"
)

// ContextPool hands out search contexts sized for one tree.
// Each context is used by one goroutine at a time; the pool itself is
// safe for concurrent use.
type ContextPool struct {
	rows   int
	pool   sync.Pool
	gets   atomic.Int64
	allocs atomic.Int64
}

// New creates a pool of contexts for a tree whose point array has rows rows.
func New(rows int) *ContextPool {
	p := &ContextPool{rows: rows}
	p.pool.New = func() any {
		p.allocs.Add(1)
		return kdtree.NewSearchContext(p.rows)
	}
	return p
}

// Rows returns the point-array size the pooled contexts are sized for.
func (p *ContextPool) Rows() int { return p.rows }

// Get retrieves a SearchContext from the pool.
func (p *ContextPool) Get() *kdtree.SearchContext {
	p.gets.Add(1)
	return p.pool.Get().(*kdtree.SearchContext)
}

// Put returns a SearchContext to the pool for reuse.
// Contexts that grew far beyond the tree size are dropped.
func (p *ContextPool) Put(sc *kdtree.SearchContext) {
	if sc == nil || sc.Capacity() > 10*max(p.rows, 64) {
		return
	}
	p.pool.Put(sc)
}

// Stats is a snapshot of pool usage.
type Stats struct {
	Gets   int64 // contexts handed out
	Allocs int64 // contexts created because the pool was empty
}

// Stats returns current statistics about this pool.
func (p *ContextPool) Stats() Stats {
	return Stats{
		Gets:   p.gets.Load(),
		Allocs: p.allocs.Load(),
	}
}
