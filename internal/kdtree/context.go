package kdtree

import (
	"github.com/hupe1980/kdknn/internal/queue"
	"github.com/hupe1980/kdknn/internal/visited"
)

// SearchContext owns the mutable state of one search: the bounded
// candidate heap, the visited marker and the path stack.
//
// SearchContext is NOT thread-safe. Concurrent searches against the same
// tree must each use their own context.
type SearchContext struct {
	heap    *queue.BoundedMaxHeap
	visited *visited.VisitedSet
	path    []int32

	// Evaluations is the number of distance computations performed by the
	// most recent search.
	Evaluations int
}

// NewSearchContext creates a context for trees whose point array has up to
// rows rows. It grows on demand if used with a larger tree.
func NewSearchContext(rows int) *SearchContext {
	return &SearchContext{
		heap:    queue.NewBoundedMaxHeap(16),
		visited: visited.New(rows),
		path:    make([]int32, 0, 64),
	}
}

// Reset clears the context for a new search with bound k.
func (sc *SearchContext) Reset(k int) {
	sc.heap.Reset(k)
	sc.visited.Reset()
	sc.path = sc.path[:0]
	sc.Evaluations = 0
}

// Capacity returns the number of point ids the visited marker holds without growing.
func (sc *SearchContext) Capacity() int { return sc.visited.Capacity() }
