package model

import "fmt"

// Neighbor is one search result.
type Neighbor struct {
	// ID is the row index of the point in the array the index was built from.
	ID uint32
	// Distance is the Minkowski distance from the query to the point.
	Distance float32
}

// String returns a string representation of the Neighbor.
func (n Neighbor) String() string {
	return fmt.Sprintf("Neighbor(%d, %g)", n.ID, n.Distance)
}

// IDs returns the ids of ns in order.
func IDs(ns []Neighbor) []uint32 {
	ids := make([]uint32, len(ns))
	for i, n := range ns {
		ids[i] = n.ID
	}
	return ids
}
