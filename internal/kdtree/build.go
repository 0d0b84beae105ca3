package kdtree

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kdknn/distance"
)

var (
	// ErrNoPoints is returned when Build is given an empty id list.
	ErrNoPoints = errors.New("kdtree: at least one point is required")
	// ErrInvalidID is returned when an id is outside the point array.
	ErrInvalidID = errors.New("kdtree: point id out of range")
)

// pair is one median-selection candidate.
type pair struct {
	id  uint32
	val float32
}

// task is one pending subset ids[lo:hi] whose node hangs off parent.
type task struct {
	parent int32
	right  bool
	lo, hi int
}

// builder owns the scratch memory of a single Build call.
type builder struct {
	data  []float32
	dim   int
	ids   []uint32
	pairs []pair
	tmp   []uint32
}

// Build constructs a tree over the rows listed in ids.
//
// data is a row-major array of len(data)/dim points and is borrowed for the
// lifetime of the tree. ids must be non-empty and free of duplicates; Build
// reorders it in place and does not retain it. Callers are expected to have
// validated dim and p; Build re-checks only what it cannot work without.
func Build(data []float32, dim int, ids []uint32, p float32) (*Tree, error) {
	if len(ids) == 0 {
		return nil, ErrNoPoints
	}
	if dim <= 0 {
		return nil, fmt.Errorf("kdtree: invalid dimension %d", dim)
	}
	fn, err := distance.New(p)
	if err != nil {
		return nil, err
	}

	rows := len(data) / dim
	for _, id := range ids {
		if int(id) >= rows {
			return nil, fmt.Errorf("%w: %d >= %d", ErrInvalidID, id, rows)
		}
	}

	t := &Tree{
		data:  data,
		rows:  rows,
		dim:   dim,
		p:     p,
		dist:  fn,
		nodes: make([]Node, 0, len(ids)),
		root:  none,
	}

	b := &builder{
		data:  data,
		dim:   dim,
		ids:   ids,
		pairs: make([]pair, len(ids)),
		tmp:   make([]uint32, len(ids)),
	}
	b.build(t)

	t.live = len(t.nodes)
	return t, nil
}

func (b *builder) build(t *Tree) {
	stack := []task{{parent: none, lo: 0, hi: len(b.ids)}}

	for len(stack) > 0 {
		tk := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sub := b.ids[tk.lo:tk.hi]
		dim := b.splitDim(sub)
		medID, medVal := b.median(sub, dim)

		idx := int32(len(t.nodes))
		t.nodes = append(t.nodes, Node{ID: medID, Split: uint32(dim), Left: none, Right: none})

		switch {
		case tk.parent == none:
			t.root = idx
		case tk.right:
			t.nodes[tk.parent].Right = idx
		default:
			t.nodes[tk.parent].Left = idx
		}

		// Left is ids[lo:mid], right is ids[mid:hi-1]; the pivot is gone.
		mid := b.partition(tk.lo, tk.hi, medID, dim, medVal)

		// Right is pushed first so the left subtree is built first,
		// giving the same node order as a recursive pre-order build.
		if mid < tk.hi-1 {
			stack = append(stack, task{parent: idx, right: true, lo: mid, hi: tk.hi - 1})
		}
		if mid > tk.lo {
			stack = append(stack, task{parent: idx, right: false, lo: tk.lo, hi: mid})
		}
	}
}

func (b *builder) value(id uint32, dim int) float32 {
	return b.data[int(id)*b.dim+dim]
}

// splitDim returns the dimension with the largest max-min spread over ids.
// Ties resolve to the lowest dimension. A singleton set returns 0.
func (b *builder) splitDim(ids []uint32) int {
	if len(ids) == 1 {
		return 0
	}

	best := 0
	bestSpread := float32(-1)
	for d := 0; d < b.dim; d++ {
		lo := b.value(ids[0], d)
		hi := lo
		for _, id := range ids[1:] {
			v := b.value(id, d)
			if v > hi {
				hi = v
			} else if v < lo {
				lo = v
			}
		}
		if spread := hi - lo; spread > bestSpread {
			bestSpread = spread
			best = d
		}
	}
	return best
}

// median returns the element at position len(ids)/2 when ids is ordered by
// dim. ids itself is left untouched.
func (b *builder) median(ids []uint32, dim int) (uint32, float32) {
	pairs := b.pairs[:len(ids)]
	for i, id := range ids {
		pairs[i] = pair{id: id, val: b.value(id, dim)}
	}
	k := len(pairs) / 2
	selectKth(pairs, k)
	return pairs[k].id, pairs[k].val
}

// partition stably splits ids[lo:hi] around the pivot: values <= medVal go
// to the front, greater values follow, and medID is dropped. It returns the
// start of the right-hand range, which ends at hi-1.
func (b *builder) partition(lo, hi int, medID uint32, dim int, medVal float32) int {
	w, r := lo, 0
	for i := lo; i < hi; i++ {
		id := b.ids[i]
		if id == medID {
			continue
		}
		if b.value(id, dim) <= medVal {
			b.ids[w] = id
			w++
		} else {
			b.tmp[r] = id
			r++
		}
	}
	copy(b.ids[w:], b.tmp[:r])
	return w
}

// selectKth rearranges a so that a[k] holds the value it would hold if a
// were sorted by val, with smaller-or-equal values before it and
// greater-or-equal values after. Expected linear time; deterministic for a
// given input order (median-of-three pivot, no randomness).
func selectKth(a []pair, k int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		if a[mid].val < a[lo].val {
			a[lo], a[mid] = a[mid], a[lo]
		}
		if a[hi].val < a[lo].val {
			a[lo], a[hi] = a[hi], a[lo]
		}
		if a[hi].val < a[mid].val {
			a[mid], a[hi] = a[hi], a[mid]
		}
		pivot := a[mid].val

		i, j := lo, hi
		for i <= j {
			for a[i].val < pivot {
				i++
			}
			for a[j].val > pivot {
				j--
			}
			if i <= j {
				a[i], a[j] = a[j], a[i]
				i++
				j--
			}
		}

		// a[lo:j+1] <= pivot, a[i:hi+1] >= pivot, anything between equals pivot.
		switch {
		case k <= j:
			hi = j
		case k >= i:
			lo = i
		default:
			return
		}
	}
}
