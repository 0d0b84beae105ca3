package kdtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdknn/testutil"
)

func TestRelease(t *testing.T) {
	rng := testutil.NewRNG(21)

	for _, n := range []int{1, 2, 3, 100, 4097} {
		tree := mustBuild(t, rng.UniformPoints(n, 3), 3, 2)
		require.Equal(t, n, tree.Live())
		assert.Equal(t, int64(n)*nodeBytes, tree.ArenaBytes())

		assert.Equal(t, n, tree.Release(), "n=%d", n)
		assert.Equal(t, 0, tree.Live())
		assert.True(t, tree.Released())
		assert.Equal(t, none, tree.Root())
		assert.Equal(t, 0, tree.Len())
		assert.Equal(t, 0, tree.Depth())

		// Idempotent.
		assert.Equal(t, 0, tree.Release())
		assert.Equal(t, 0, tree.Live())
	}
}

func TestReleaseDeepChain(t *testing.T) {
	const n = 5000
	// One distinct value: the tree is a single left-leaning chain.
	data := make([]float32, n)
	ids := allIDs(n)

	tree, err := Build(data, 1, ids, 2)
	require.NoError(t, err)

	assert.Equal(t, n, tree.Release())
	assert.Equal(t, 0, tree.Live())
}

func TestReleaseRoundTripManyTrees(t *testing.T) {
	rng := testutil.NewRNG(22)
	built, freed := 0, 0

	for i := 0; i < 50; i++ {
		n := 1 + rng.Intn(300)
		tree := mustBuild(t, rng.DuplicateHeavyPoints(n, 2, 4), 2, 1)
		built += tree.Live()
		freed += tree.Release()
	}

	assert.Equal(t, built, freed)
}
