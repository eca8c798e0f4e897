package filesystem

import "slices"

// RootIndex is the slot of the root directory. Root is its own parent.
const RootIndex = 0

// Node is one directory slot of a [Table].
//
// The children slice is carved out of the table's pre-allocated child storage
// and never grows past its capacity; len(children) is the child count.
type Node struct {
	index    int
	name     Name
	parent   int   // RootIndex for root (self loop) and for empty slots
	children []int // live child indexes in insertion order
	used     bool  // false for never allocated and removed slots
}

// Index returns the slot index of the node
func (n Node) Index() int {
	return n.index
}

func (n Node) Name() Name {
	return n.name
}

// Parent returns the index of the owning directory; root returns itself
func (n Node) Parent() int {
	return n.parent
}

func (n Node) ChildCount() int {
	return len(n.children)
}

// Children returns a copy of the child index list in insertion order
func (n Node) Children() []int {
	return slices.Clone(n.children)
}

// IsRoot reports whether this is the root slot
func (n Node) IsRoot() bool {
	return n.used && n.index == RootIndex
}

// IsEmpty reports whether the slot holds the empty sentinel
func (n Node) IsEmpty() bool {
	return !n.used
}

// reset turns the slot into the empty sentinel, keeping its child storage
func (n *Node) reset() {
	n.index = RootIndex
	n.name = BlankName()
	n.parent = RootIndex
	n.children = n.children[:0]
	n.used = false
}

// snapshot returns a copy that shares no memory with the table
func (n *Node) snapshot() Node {
	cp := *n
	cp.children = slices.Clone(n.children)
	return cp
}

// childPos returns the position of child in the child list or -1
func (n *Node) childPos(child int) int {
	return slices.Index(n.children, child)
}
