// Package queue implements the bounded candidate heap used by nearest-neighbor search.
package queue

import "github.com/hupe1980/kdknn/model"

// Item is a candidate: a point id and its distance to the query.
type Item = model.Neighbor

// BoundedMaxHeap keeps the k smallest-distance items seen so far.
// The root is always the worst (largest distance) of the kept items.
//
// Value-based storage, no container/heap, so Push and Pop do not allocate
// once the backing slice has reached capacity.
type BoundedMaxHeap struct {
	k     int
	items []Item
}

// NewBoundedMaxHeap creates a heap that keeps at most k items.
func NewBoundedMaxHeap(k int) *BoundedMaxHeap {
	return &BoundedMaxHeap{
		k:     k,
		items: make([]Item, 0, k),
	}
}

// Reset empties the heap and sets a new bound, keeping the backing array.
func (h *BoundedMaxHeap) Reset(k int) {
	h.k = k
	if cap(h.items) < k {
		h.items = make([]Item, 0, k)
		return
	}
	h.items = h.items[:0]
}

// Len returns the number of items in the heap.
func (h *BoundedMaxHeap) Len() int { return len(h.items) }

// Cap returns the bound k.
func (h *BoundedMaxHeap) Cap() int { return h.k }

// Full reports whether the heap holds k items.
func (h *BoundedMaxHeap) Full() bool { return len(h.items) >= h.k }

// Top returns the worst kept item.
func (h *BoundedMaxHeap) Top() (Item, bool) {
	if len(h.items) == 0 {
		return Item{}, false
	}
	return h.items[0], true
}

// Push offers an item to the heap.
// Below the bound it is always inserted. At the bound it replaces the root
// only if its distance is strictly smaller. Reports whether it was kept.
func (h *BoundedMaxHeap) Push(item Item) bool {
	if len(h.items) < h.k {
		h.items = append(h.items, item)
		h.siftUp(len(h.items) - 1)
		return true
	}
	if h.k == 0 || item.Distance >= h.items[0].Distance {
		return false
	}
	h.items[0] = item
	h.siftDown(0)
	return true
}

// Pop removes and returns the worst kept item.
func (h *BoundedMaxHeap) Pop() (Item, bool) {
	n := len(h.items)
	if n == 0 {
		return Item{}, false
	}
	root := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if n-1 > 0 {
		h.siftDown(0)
	}
	return root, true
}

// DrainAscending pops every item and appends them to dst in ascending
// distance order. The heap is empty afterwards.
func (h *BoundedMaxHeap) DrainAscending(dst []Item) []Item {
	n := len(h.items)
	start := len(dst)
	dst = append(dst, make([]Item, n)...)
	for i := start + n - 1; i >= start; i-- {
		dst[i], _ = h.Pop()
	}
	return dst
}

func (h *BoundedMaxHeap) less(i, j int) bool {
	return h.items[i].Distance > h.items[j].Distance
}

func (h *BoundedMaxHeap) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !h.less(i, p) {
			return
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *BoundedMaxHeap) siftDown(i int) {
	n := len(h.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && h.less(r, l) {
			best = r
		}
		if !h.less(best, i) {
			return
		}
		h.items[i], h.items[best] = h.items[best], h.items[i]
		i = best
	}
}
