// Package testutil provides testing utilities for kdknn.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating seeded row-major point sets,
// computing exact nearest neighbors by brute force, and comparing
// search results against that ground truth.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(1000, 8)      // 1000 rows x 8 columns in [0, 1)
//	dups := rng.DuplicateHeavyPoints(1000, 4, 3)
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceKNN(points, 8, query, k, 2)
//
// # Verification
//
//	err := testutil.CheckKNN(got, want, 1e-5)
package testutil
