package kdtree

import "github.com/hupe1980/kdknn/model"

// Neighbor is a search result.
type Neighbor = model.Neighbor

// Search appends the k nearest points to query to dst, in ascending
// distance order, and returns the extended slice.
//
// Preconditions (checked by callers, not here): the tree is not released,
// len(query) == Dim(), and 1 <= k <= Len(). Among points at exactly equal
// distance, the first one evaluated is kept.
func (t *Tree) Search(sc *SearchContext, query []float32, k int, dst []Neighbor) []Neighbor {
	sc.Reset(k)
	sc.visited.EnsureCapacity(t.rows)

	// Descent: follow the query's side of each split down to a leaf.
	for cur := t.root; cur != none; {
		t.visit(sc, cur, query)
		n := &t.nodes[cur]
		if query[n.Split] <= t.value(n.ID, n.Split) {
			cur = n.Left
		} else {
			cur = n.Right
		}
	}

	// Backtrack.
	for len(sc.path) > 0 {
		idx := sc.path[len(sc.path)-1]
		sc.path = sc.path[:len(sc.path)-1]

		n := &t.nodes[idx]
		if n.IsLeaf() {
			continue
		}

		if !sc.heap.Full() {
			if n.Left != none {
				t.visit(sc, n.Left, query)
			}
			if n.Right != none {
				t.visit(sc, n.Right, query)
			}
			continue
		}

		near, far := n.Left, n.Right
		gap := query[n.Split] - t.value(n.ID, n.Split)
		if gap > 0 {
			near, far = far, near
		} else {
			gap = -gap
		}

		// The near side may be a node reached during backtracking whose own
		// children have not been considered yet, so it is always revisited.
		if near != none {
			t.visit(sc, near, query)
		}
		// The far side can only hold a closer point if the splitting plane
		// cuts the ball around the query whose radius is the current k-th
		// best distance.
		if far != none {
			if worst, _ := sc.heap.Top(); gap < worst.Distance {
				t.visit(sc, far, query)
			}
		}
	}

	return sc.heap.DrainAscending(dst)
}

// visit pushes node idx on the path and scores its point on first visit.
func (t *Tree) visit(sc *SearchContext, idx int32, query []float32) {
	sc.path = append(sc.path, idx)

	id := t.nodes[idx].ID
	if sc.visited.Visit(id) {
		return
	}
	sc.Evaluations++
	sc.heap.Push(Neighbor{ID: id, Distance: t.Distance(id, query)})
}
