package kdtree

// none marks an absent child.
const none int32 = -1

// Node is one arena slot: a pivot point and its two subtrees.
type Node struct {
	ID    uint32 // row of the pivot point
	Split uint32 // dimension separating Left from Right
	Left  int32  // arena index of the left child, or -1
	Right int32  // arena index of the right child, or -1
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.Left == none && n.Right == none }

// nodeBytes is the arena footprint of one Node.
const nodeBytes = 16
