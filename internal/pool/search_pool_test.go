package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdknn/internal/kdtree"
)

func TestContextPool(t *testing.T) {
	p := New(128)

	sc := p.Get()
	require.NotNil(t, sc)
	assert.GreaterOrEqual(t, sc.Capacity(), 128)

	p.Put(sc)
	p.Put(nil) // ignored

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Gets)
	assert.Equal(t, int64(1), stats.Allocs)
}

func TestContextPool_DropsOversized(t *testing.T) {
	p := New(8)

	// Put must not panic for a context that outgrew the tree.
	p.Put(kdtree.NewSearchContext(1 << 20))
}

func TestContextPool_Concurrent(t *testing.T) {
	data := []float32{0, 0, 1, 1, 5, 5, 2, 8}
	tree, err := kdtree.Build(data, 2, []uint32{0, 1, 2, 3}, 2)
	require.NoError(t, err)

	p := New(tree.Rows())

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				sc := p.Get()
				got := tree.Search(sc, []float32{0.9, 0.9}, 1, nil)
				p.Put(sc)

				if assert.Len(t, got, 1) {
					assert.Equal(t, uint32(1), got[0].ID)
				}
			}
		}()
	}
	wg.Wait()

	stats := p.Stats()
	assert.Equal(t, int64(1600), stats.Gets)
	assert.LessOrEqual(t, stats.Allocs, stats.Gets)
}
