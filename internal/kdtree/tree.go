package kdtree

import (
	"github.com/hupe1980/kdknn/distance"
)

// Tree is an immutable k-d tree over a borrowed row-major point array.
type Tree struct {
	data  []float32 // borrowed, rows x dim
	rows  int
	dim   int
	p     float32
	dist  distance.Func
	nodes []Node
	root  int32
	live  int // nodes not yet released
}

// Len returns the number of points stored in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Rows returns the number of rows in the borrowed point array.
// Ids returned by Search are always < Rows.
func (t *Tree) Rows() int { return t.rows }

// Dim returns the dimensionality of each point.
func (t *Tree) Dim() int { return t.dim }

// P returns the Minkowski exponent.
func (t *Tree) P() float32 { return t.p }

// Live returns the number of nodes that have not been released.
func (t *Tree) Live() int { return t.live }

// Released reports whether Release has run.
func (t *Tree) Released() bool { return t.root == none && t.nodes == nil }

// Root returns the arena index of the root node, or -1 after Release.
func (t *Tree) Root() int32 { return t.root }

// Node returns the node at arena index i.
func (t *Tree) Node(i int32) Node { return t.nodes[i] }

// ArenaBytes returns the memory held by the node arena.
func (t *Tree) ArenaBytes() int64 { return int64(cap(t.nodes)) * nodeBytes }

// Point returns the borrowed feature vector of row id.
func (t *Tree) Point(id uint32) []float32 {
	off := int(id) * t.dim
	return t.data[off : off+t.dim : off+t.dim]
}

func (t *Tree) value(id uint32, dim uint32) float32 {
	return t.data[int(id)*t.dim+int(dim)]
}

// Distance returns the distance between row id and query.
func (t *Tree) Distance(id uint32, query []float32) float32 {
	return t.dist(t.Point(id), query)
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if t.root == none {
		return 0
	}

	type frame struct {
		idx   int32
		depth int
	}

	maxDepth := 0
	stack := []frame{{t.root, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		maxDepth = max(maxDepth, f.depth)

		n := &t.nodes[f.idx]
		if n.Left != none {
			stack = append(stack, frame{n.Left, f.depth + 1})
		}
		if n.Right != none {
			stack = append(stack, frame{n.Right, f.depth + 1})
		}
	}
	return maxDepth
}
