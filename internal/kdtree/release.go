package kdtree

import "math"

// released marks a cleared arena slot.
const released = math.MaxUint32

// Release clears every node exactly once and drops the arena. It returns
// the number of nodes released; a second call returns 0.
//
// The walk uses an explicit stack and makes no assumption about visiting
// order, so arbitrarily deep trees are safe. The tree must not be searched
// afterwards.
func (t *Tree) Release() int {
	if t.root == none {
		return 0
	}

	freed := 0
	stack := []int32{t.root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[idx]
		if n.Split == released {
			continue
		}
		if n.Left != none {
			stack = append(stack, n.Left)
		}
		if n.Right != none {
			stack = append(stack, n.Right)
		}

		t.nodes[idx] = Node{Split: released, Left: none, Right: none}
		t.live--
		freed++
	}

	t.nodes = nil
	t.root = none
	t.data = nil
	return freed
}
