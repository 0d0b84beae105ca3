// Package kdknn provides exact k-nearest-neighbor search over a k-d tree
// with a configurable Minkowski distance.
//
// An Index is built once over a borrowed row-major float32 array and is
// immutable afterwards. Searches are safe for concurrent use.
//
// # Quick Start
//
//	points := []float32{
//	    0, 0,
//	    1, 1,
//	    5, 5,
//	}
//	idx, _ := kdknn.Build(points, 3, 2, 2) // 3 rows, 2 columns, Euclidean
//	defer idx.Release()
//
//	neighbors, _ := idx.Search([]float32{0.9, 0.9}, 2)
//	for _, n := range neighbors {
//	    fmt.Println(n.ID, n.Distance) // ascending distance
//	}
//
// # Distance
//
// The distance between x and y is (Σ|x_t − y_t|^p)^(1/p). Any p > 0 is
// accepted; p = 1, p = 2 and p = +Inf use dedicated kernels.
//
// # Batch Search
//
// SearchBatch spreads many queries over a bounded set of workers and
// stops issuing new queries once its context is canceled:
//
//	results, err := idx.SearchBatch(ctx, queries, rows, 5)
//
// # Classification and Regression
//
// Classifier and Regressor wrap an Index with majority vote and mean
// aggregation over the labels of the k nearest training rows.
//
// # Key Features
//
//   - Exact results, verified against brute force
//   - Iterative build, search and teardown (no recursion)
//   - Pooled per-query state; zero-allocation search via SearchWithContext
//   - Row subsets via roaring bitmaps
//   - Structured logging, metrics hooks and shared resource limits
package kdknn
