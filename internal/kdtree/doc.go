// Package kdtree implements a build-once, query-many k-d tree with exact
// branch-and-bound k-nearest-neighbor search under a Minkowski distance.
//
// # Layout
//
// Nodes live in a slice arena and reference their children by index
// (-1 for none). Each node stores one point (the pivot, the median of its
// subset along the split dimension). Points in the left subtree have a
// value <= the pivot's at that dimension and points in the right subtree
// have a strictly greater value.
//
// The point data is borrowed: the tree never copies or mutates it.
//
// # Recursion
//
// Build, Release, Depth and Validate all walk the tree with explicit
// stacks, so skewed trees built from duplicate-heavy input cannot exhaust
// the goroutine stack.
//
// # Concurrency
//
// A built tree is read-only and may be searched from any number of
// goroutines, provided each uses its own SearchContext.
package kdtree
