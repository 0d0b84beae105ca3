package queue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedMaxHeap(t *testing.T) {
	t.Run("TopIsWorst", func(t *testing.T) {
		h := NewBoundedMaxHeap(3)

		assert.True(t, h.Push(Item{ID: 1, Distance: 10}))
		assert.True(t, h.Push(Item{ID: 2, Distance: 5}))
		assert.True(t, h.Push(Item{ID: 3, Distance: 20}))
		assert.True(t, h.Full())

		top, ok := h.Top()
		require.True(t, ok)
		assert.Equal(t, uint32(3), top.ID)
	})

	t.Run("EvictsOnlyStrictlyBetter", func(t *testing.T) {
		h := NewBoundedMaxHeap(2)
		h.Push(Item{ID: 1, Distance: 1})
		h.Push(Item{ID: 2, Distance: 4})

		// Equal to the root: rejected.
		assert.False(t, h.Push(Item{ID: 3, Distance: 4}))
		// Worse than the root: rejected.
		assert.False(t, h.Push(Item{ID: 4, Distance: 9}))
		// Better: evicts id 2.
		assert.True(t, h.Push(Item{ID: 5, Distance: 2}))

		got := h.DrainAscending(nil)
		assert.Equal(t, []Item{{ID: 1, Distance: 1}, {ID: 5, Distance: 2}}, got)
		assert.Equal(t, 0, h.Len())
	})

	t.Run("PopDescending", func(t *testing.T) {
		h := NewBoundedMaxHeap(4)
		for i, d := range []float32{3, 1, 4, 2} {
			h.Push(Item{ID: uint32(i), Distance: d})
		}

		var order []float32
		for h.Len() > 0 {
			item, ok := h.Pop()
			require.True(t, ok)
			order = append(order, item.Distance)
		}
		assert.Equal(t, []float32{4, 3, 2, 1}, order)

		_, ok := h.Pop()
		assert.False(t, ok)
		_, ok = h.Top()
		assert.False(t, ok)
	})

	t.Run("Reset", func(t *testing.T) {
		h := NewBoundedMaxHeap(1)
		h.Push(Item{ID: 1, Distance: 1})

		h.Reset(8)
		assert.Equal(t, 0, h.Len())
		assert.Equal(t, 8, h.Cap())
		for i := 0; i < 8; i++ {
			assert.True(t, h.Push(Item{ID: uint32(i), Distance: float32(i)}))
		}
		assert.True(t, h.Full())
	})

	t.Run("DrainAppends", func(t *testing.T) {
		h := NewBoundedMaxHeap(2)
		h.Push(Item{ID: 7, Distance: 3})
		h.Push(Item{ID: 8, Distance: 1})

		dst := []Item{{ID: 99, Distance: 0}}
		dst = h.DrainAscending(dst)
		assert.Equal(t, []Item{{ID: 99}, {ID: 8, Distance: 1}, {ID: 7, Distance: 3}}, dst)
	})
}

func TestBoundedMaxHeapKeepsKSmallest(t *testing.T) {
	r := rand.New(rand.NewSource(4711))

	for trial := 0; trial < 50; trial++ {
		k := 1 + r.Intn(16)
		n := r.Intn(200)

		all := make([]float32, n)
		h := NewBoundedMaxHeap(k)
		for i := range all {
			all[i] = r.Float32()
			h.Push(Item{ID: uint32(i), Distance: all[i]})
		}

		sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
		want := all[:min(k, n)]

		got := h.DrainAscending(nil)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i], got[i].Distance)
		}
	}
}
