// Package visited provides the per-query "already evaluated" marker used by search.
package visited

import "github.com/bits-and-blooms/bitset"

// VisitedSet tracks visited point ids using a bitset and a dirty list for fast reset.
// Reset costs O(ids touched), not O(capacity), so a context sized for a large
// tree can be reused across queries without a full clear each time.
type VisitedSet struct {
	bits  *bitset.BitSet
	dirty []uint32
}

// New creates a new visited set.
func New(capacity int) *VisitedSet {
	return &VisitedSet{
		bits:  bitset.New(uint(capacity)),
		dirty: make([]uint32, 0, 128),
	}
}

// Visit marks id as visited. Reports whether it was already marked.
func (v *VisitedSet) Visit(id uint32) bool {
	if v.bits.Test(uint(id)) {
		return true
	}
	// Set grows the bitset when id is beyond its length.
	v.bits.Set(uint(id))
	v.dirty = append(v.dirty, id)
	return false
}

// Visited returns true if id has been marked since the last Reset.
func (v *VisitedSet) Visited(id uint32) bool {
	return v.bits.Test(uint(id))
}

// Count returns the number of ids marked since the last Reset.
func (v *VisitedSet) Count() int { return len(v.dirty) }

// Reset clears every id marked in the current session.
func (v *VisitedSet) Reset() {
	for _, id := range v.dirty {
		v.bits.Clear(uint(id))
	}
	v.dirty = v.dirty[:0]
}

// EnsureCapacity grows the set to hold at least capacity ids.
func (v *VisitedSet) EnsureCapacity(capacity int) {
	if uint(capacity) > v.bits.Len() {
		grown := bitset.New(uint(capacity))
		grown.InPlaceUnion(v.bits)
		v.bits = grown
	}
}

// Capacity returns the number of ids the set holds without growing.
func (v *VisitedSet) Capacity() int { return int(v.bits.Len()) }
