package kdtree

import (
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Validate when the tree breaks a structural invariant.
var ErrCorrupt = errors.New("kdtree: invariant violated")

// Validate checks that every point appears exactly once and that for each
// node every left-subtree value at its split dimension is <= the pivot's
// value and every right-subtree value is strictly greater.
//
// It costs O(n * depth) and is intended for tests and debugging.
func (t *Tree) Validate() error {
	if t.root == none {
		return nil
	}

	seen := make(map[uint32]struct{}, len(t.nodes))
	var sub []int32

	stack := []int32{t.root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[idx]
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: point %d stored twice", ErrCorrupt, n.ID)
		}
		seen[n.ID] = struct{}{}

		pivot := t.value(n.ID, n.Split)
		for side, child := range [2]int32{n.Left, n.Right} {
			if child == none {
				continue
			}
			stack = append(stack, child)

			sub = append(sub[:0], child)
			for len(sub) > 0 {
				c := t.nodes[sub[len(sub)-1]]
				sub = sub[:len(sub)-1]

				v := t.value(c.ID, n.Split)
				if side == 0 && v > pivot {
					return fmt.Errorf("%w: point %d (%v) left of pivot %d (%v) on dim %d",
						ErrCorrupt, c.ID, v, n.ID, pivot, n.Split)
				}
				if side == 1 && v <= pivot {
					return fmt.Errorf("%w: point %d (%v) right of pivot %d (%v) on dim %d",
						ErrCorrupt, c.ID, v, n.ID, pivot, n.Split)
				}

				if c.Left != none {
					sub = append(sub, c.Left)
				}
				if c.Right != none {
					sub = append(sub, c.Right)
				}
			}
		}
	}

	if len(seen) != len(t.nodes) {
		return fmt.Errorf("%w: %d reachable of %d nodes", ErrCorrupt, len(seen), len(t.nodes))
	}
	return nil
}
