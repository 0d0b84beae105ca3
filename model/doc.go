// Package model defines the types shared between the public API and the
// internal search packages.
//
//   - Neighbor: a search result, the row index of a stored point and its
//     distance to the query
package model
