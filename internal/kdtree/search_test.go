package kdtree

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kdknn/model"
	"github.com/hupe1980/kdknn/testutil"
)

func search(tree *Tree, query []float32, k int) []Neighbor {
	sc := NewSearchContext(tree.Rows())
	return tree.Search(sc, query, k, nil)
}

func TestSearchScenarios(t *testing.T) {
	data := []float32{
		0, 0, // id 0
		1, 1, // id 1
		5, 5, // id 2
	}
	tree := mustBuild(t, data, 2, 2)

	t.Run("NearestToOne", func(t *testing.T) {
		got := search(tree, []float32{0.9, 0.9}, 1)
		require.Len(t, got, 1)
		assert.Equal(t, uint32(1), got[0].ID)
		assert.InDelta(t, 0.1414, got[0].Distance, 1e-4)
	})

	t.Run("FarQuery", func(t *testing.T) {
		got := search(tree, []float32{10, 10}, 2)
		require.Len(t, got, 2)
		assert.ElementsMatch(t, []uint32{2, 1}, model.IDs(got))
		assert.InDelta(t, 7.0711, got[0].Distance, 1e-4)
		assert.InDelta(t, 12.727, got[1].Distance, 1e-3)
	})

	t.Run("AllPoints", func(t *testing.T) {
		got := search(tree, []float32{0, 0}, 3)
		assert.Equal(t, []uint32{0, 1, 2}, model.IDs(got))
	})
}

func TestSearchAscendingOrder(t *testing.T) {
	rng := testutil.NewRNG(3)
	data := rng.UniformPoints(500, 4)
	tree := mustBuild(t, data, 4, 2)

	got := search(tree, []float32{0.5, 0.5, 0.5, 0.5}, 25)
	require.Len(t, got, 25)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
}

func TestSearchMatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(4711)

	type dataset struct {
		name string
		gen  func(n, dim int) []float32
	}
	datasets := []dataset{
		{"Uniform", rng.UniformPoints},
		{"Gaussian", rng.GaussianPoints},
		{"Clustered", func(n, dim int) []float32 { return rng.ClusteredPoints(n, dim, 5, 0.3) }},
		{"DuplicateHeavy", func(n, dim int) []float32 { return rng.DuplicateHeavyPoints(n, dim, 3) }},
	}

	for _, ds := range datasets {
		for _, p := range []float32{0.5, 1, 2, 3, float32(math.Inf(1))} {
			for _, shape := range [][2]int{{1, 1}, {7, 2}, {200, 3}, {1000, 2}, {300, 8}} {
				n, dim := shape[0], shape[1]
				name := fmt.Sprintf("%s/p=%v/n=%d/dim=%d", ds.name, p, n, dim)

				t.Run(name, func(t *testing.T) {
					data := ds.gen(n, dim)
					tree := mustBuild(t, data, dim, p)
					sc := NewSearchContext(n)

					for q := 0; q < 10; q++ {
						query := make([]float32, dim)
						rng.FillUniformRange(query, -1, 2)

						for _, k := range []int{1, 2, 5, n} {
							if k > n {
								continue
							}
							got := tree.Search(sc, query, k, nil)
							want := testutil.BruteForceKNN(data, dim, query, k, float64(p))
							require.NoError(t, testutil.CheckKNN(got, want, 1e-4), "k=%d query=%v", k, query)
						}
					}
				})
			}
		}
	}
}

func TestSearchReportsTrueDistances(t *testing.T) {
	rng := testutil.NewRNG(5)
	data := rng.UniformPoints(300, 3)
	tree := mustBuild(t, data, 3, 1.5)

	query := []float32{0.2, 0.7, 0.4}
	for _, n := range search(tree, query, 10) {
		assert.InDelta(t, tree.Distance(n.ID, query), n.Distance, 1e-7)
	}
}

func TestSearchKEqualsN(t *testing.T) {
	rng := testutil.NewRNG(6)
	data := rng.DuplicateHeavyPoints(64, 2, 2)
	tree := mustBuild(t, data, 2, 2)

	got := search(tree, []float32{0.5, 0.5}, 64)
	assert.ElementsMatch(t, allIDs(64), model.IDs(got))
}

func TestSearchIdempotent(t *testing.T) {
	rng := testutil.NewRNG(7)
	data := rng.ClusteredPoints(1000, 4, 8, 0.5)
	tree := mustBuild(t, data, 4, 2)
	sc := NewSearchContext(tree.Rows())

	query := []float32{1, -2, 0.5, 3}
	first := tree.Search(sc, query, 15, nil)
	second := tree.Search(sc, query, 15, nil)
	assert.Equal(t, first, second)
}

func TestSearchPrunes(t *testing.T) {
	rng := testutil.NewRNG(8)
	const n = 20000
	data := rng.UniformPoints(n, 2)
	tree := mustBuild(t, data, 2, 2)
	sc := NewSearchContext(n)

	tree.Search(sc, []float32{0.5, 0.5}, 1, nil)
	assert.Positive(t, sc.Evaluations)
	assert.Less(t, sc.Evaluations, n/10, "branch-and-bound should skip most of the tree")
}

func TestSearchEvaluatesEachPointOnce(t *testing.T) {
	rng := testutil.NewRNG(9)
	const n = 500
	data := rng.DuplicateHeavyPoints(n, 3, 2)
	tree := mustBuild(t, data, 3, 2)
	sc := NewSearchContext(n)

	tree.Search(sc, []float32{0, 0, 0}, n, nil)
	assert.Equal(t, n, sc.Evaluations)
}

func TestSearchDeepChain(t *testing.T) {
	const n = 2000
	data := make([]float32, n*2)
	tree := mustBuild(t, data, 2, 2)
	require.Equal(t, n, tree.Depth())

	got := search(tree, []float32{1, 1}, 3)
	require.Len(t, got, 3)
	for _, nb := range got {
		assert.InDelta(t, math.Sqrt2, nb.Distance, 1e-6)
	}
}

func TestSearchSubset(t *testing.T) {
	data := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	tree, err := Build(data, 1, []uint32{1, 3, 5, 7}, 1)
	require.NoError(t, err)

	got := search(tree, []float32{4}, 2)
	assert.ElementsMatch(t, []uint32{3, 5}, model.IDs(got))

	got = search(tree, []float32{0}, 4)
	assert.Equal(t, []uint32{1, 3, 5, 7}, model.IDs(got))
}

func TestSearchContextGrows(t *testing.T) {
	data := testutil.NewRNG(10).UniformPoints(1000, 2)
	tree := mustBuild(t, data, 2, 2)

	sc := NewSearchContext(1)
	got := tree.Search(sc, []float32{0.5, 0.5}, 5, nil)
	assert.Len(t, got, 5)
	assert.GreaterOrEqual(t, sc.Capacity(), 1000)
}

func TestSearchAppendsToDst(t *testing.T) {
	tree := mustBuild(t, []float32{0, 0, 1, 1, 5, 5}, 2, 2)
	sc := NewSearchContext(3)

	dst := make([]Neighbor, 0, 8)
	dst = tree.Search(sc, []float32{0, 0}, 1, dst)
	dst = tree.Search(sc, []float32{5, 5}, 1, dst)
	assert.Equal(t, []uint32{0, 2}, model.IDs(dst))
}

func TestConcurrentSearch(t *testing.T) {
	rng := testutil.NewRNG(11)
	const dim = 3
	data := rng.GaussianPoints(5000, dim)
	tree := mustBuild(t, data, dim, 2)

	queries := rng.GaussianPoints(64, dim)
	want := make([][]Neighbor, 64)
	sc := NewSearchContext(tree.Rows())
	for i := range want {
		want[i] = tree.Search(sc, queries[i*dim:(i+1)*dim], 7, nil)
	}

	var wg sync.WaitGroup
	got := make([][]Neighbor, 64)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			sc := NewSearchContext(tree.Rows())
			for i := w; i < 64; i += 8 {
				got[i] = tree.Search(sc, queries[i*dim:(i+1)*dim], 7, nil)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, want, got)
}

func BenchmarkSearch(b *testing.B) {
	rng := testutil.NewRNG(12)
	for _, dim := range []int{2, 8, 32} {
		data := rng.UniformPoints(100000, dim)
		tree := mustBuild(b, data, dim, 2)
		sc := NewSearchContext(tree.Rows())
		query := rng.UniformPoints(1, dim)
		dst := make([]Neighbor, 0, 10)

		b.Run(fmt.Sprintf("dim=%d", dim), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				dst = tree.Search(sc, query, 10, dst[:0])
			}
		})
	}
}

func BenchmarkBuild(b *testing.B) {
	rng := testutil.NewRNG(13)
	data := rng.UniformPoints(100000, 8)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(data, 8, allIDs(100000), 2); err != nil {
			b.Fatal(err)
		}
	}
}
