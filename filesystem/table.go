package filesystem

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/dirshell/internal/util"
)

// Table is a fixed capacity directory tree stored as an arena of slots.
// Directories reference each other by slot index. All storage is allocated in
// [NewTable]; no operation grows it afterwards.
//
// The allocation cursor only moves forward: a removed slot is reset to the
// empty sentinel but its index is never handed out again, so the node capacity
// is consumed monotonically for the lifetime of the table.
//
// NOTE: Table is not safe for concurrent use. The shell serializes all access.
type Table struct {
	nodes       []Node
	childBuf    []int // backing store for every node's child list
	maxChildren int
	next        int // allocation cursor; next never-used slot
}

// Entry is a node visited by [Table.Walk]
type Entry struct {
	Index int
	Name  Name
	Depth int
}

// NewTable allocates a table with maxNodes slots (root included), each able
// to hold maxChildren children, and creates the root directory at slot 0.
func NewTable(maxNodes, maxChildren int, rootName Name) *Table {
	maxNodes = max(maxNodes, 1)
	maxChildren = max(maxChildren, 0)

	t := &Table{
		nodes:       make([]Node, maxNodes),
		childBuf:    make([]int, maxNodes*maxChildren),
		maxChildren: maxChildren,
	}
	for i := range t.nodes {
		lo, hi := i*maxChildren, (i+1)*maxChildren
		t.nodes[i].children = t.childBuf[lo:lo:hi]
		t.nodes[i].reset()
	}

	root := &t.nodes[RootIndex]
	root.index = RootIndex
	root.name = rootName
	root.parent = RootIndex
	root.used = true
	t.next = RootIndex + 1

	return t
}

// Cap returns the node capacity including the root
func (t *Table) Cap() int {
	return len(t.nodes)
}

// ChildCap returns the per-directory child capacity
func (t *Table) ChildCap() int {
	return t.maxChildren
}

// Cursor returns the allocation cursor: the next slot [Table.CreateChild] will use
func (t *Table) Cursor() int {
	return t.next
}

// Len returns the number of live directories, orphans included
func (t *Table) Len() int {
	cnt := 0
	for i := range t.next {
		if t.nodes[i].used {
			cnt++
		}
	}
	return cnt
}

// Node returns a snapshot of the live node at index
func (t *Table) Node(index int) (Node, bool) {
	n, ok := t.live(index)
	if !ok {
		return Node{}, false
	}
	return n.snapshot(), true
}

// ChildrenOf returns the child indexes of node in insertion order.
// Returns nil for an empty or out of range slot.
func (t *Table) ChildrenOf(index int) []int {
	n, ok := t.live(index)
	if !ok {
		return nil
	}
	return n.Children()
}

func (t *Table) live(index int) (*Node, bool) {
	if index < 0 || index >= t.next {
		return nil, false
	}
	n := &t.nodes[index]
	if !n.used {
		return nil, false
	}
	return n, true
}

// CreateChild allocates the next slot as a new directory named name under
// parent and appends it to the parent's child list.
//
// Checks run in order: missing name, unknown parent, sibling collision, table
// capacity, child list capacity. A failed call leaves the table unchanged.
func (t *Table) CreateChild(parent int, name Name) (int, error) {
	logger := util.GetLogger("Table.CreateChild")

	if name.IsBlank() {
		return 0, ErrNameMissing
	}
	p, ok := t.live(parent)
	if !ok {
		return 0, fmt.Errorf("parent %d: %w", parent, ErrNotFound)
	}
	if _, exists := t.FindChild(parent, name); exists {
		return 0, fmt.Errorf("%q: %w", name.String(), ErrNameCollision)
	}
	if t.next >= len(t.nodes) {
		return 0, fmt.Errorf("%d directories allocated: %w", t.next, ErrCapacityExceeded)
	}
	if len(p.children) >= t.maxChildren {
		return 0, fmt.Errorf("%q: %w", p.name.String(), ErrChildLimit)
	}

	idx := t.next
	t.next++

	child := &t.nodes[idx]
	child.index = idx
	child.name = name
	child.parent = parent
	child.children = child.children[:0]
	child.used = true

	p.children = append(p.children, idx)

	logger.Debug().
		Int("index", idx).
		Int("parent", parent).
		Str("name", name.String()).
		Int("cursor", t.next).
		Msg("Allocated directory")
	return idx, nil
}

// FindChild returns the index of the child of parent named name
func (t *Table) FindChild(parent int, name Name) (int, bool) {
	p, ok := t.live(parent)
	if !ok {
		return 0, false
	}
	for _, c := range p.children {
		if t.nodes[c].used && t.nodes[c].name == name {
			return c, true
		}
	}
	return 0, false
}

// FindChildByName locates the first live slot named parentName (linear scan
// up to the cursor) and then its child named childName.
//
// Only sibling names are unique, so when parentName is used by more than one
// directory the first slot wins even if the caller meant another one. Prefer
// [Table.FindChild] which addresses the parent by index.
func (t *Table) FindChildByName(parentName, childName Name) (int, bool) {
	for i := range t.next {
		if t.nodes[i].used && t.nodes[i].name == parentName {
			return t.FindChild(i, childName)
		}
	}
	return 0, false
}

// RemoveChild detaches child from parent's child list, keeping the list dense,
// and resets the child's slot to the empty sentinel.
//
// Removal is not recursive: the child's own descendants keep their slots but
// are no longer reachable from root (see [Table.Orphans]). The cursor does not
// move back.
func (t *Table) RemoveChild(parent, child int) error {
	logger := util.GetLogger("Table.RemoveChild")

	if child == RootIndex {
		return ErrRootRemoval
	}
	p, ok := t.live(parent)
	if !ok {
		return fmt.Errorf("parent %d: %w", parent, ErrNotFound)
	}
	pos := p.childPos(child)
	if pos < 0 {
		return fmt.Errorf("child %d of %d: %w", child, parent, ErrNotFound)
	}

	copy(p.children[pos:], p.children[pos+1:])
	p.children = p.children[:len(p.children)-1]

	c := &t.nodes[child]
	orphaned := len(c.children)
	name := c.name
	c.reset()

	evt := logger.Debug()
	if orphaned > 0 {
		evt = logger.Warn()
	}
	evt.Int("index", child).
		Int("parent", parent).
		Str("name", name.String()).
		Int("orphaned", orphaned).
		Msg("Removed directory")
	return nil
}

// Walk visits start and its descendants depth first in pre-order, children
// in insertion order. start has depth 0.
func (t *Table) Walk(start int, fn func(e Entry)) {
	t.walk(start, 0, fn)
}

func (t *Table) walk(index, depth int, fn func(e Entry)) {
	n, ok := t.live(index)
	if !ok {
		return
	}
	fn(Entry{Index: index, Name: n.name, Depth: depth})
	for _, c := range n.children {
		t.walk(c, depth+1, fn)
	}
}

// Orphans returns the live slots that can no longer be reached from root.
// They appear after removing a directory that still had children.
func (t *Table) Orphans() []int {
	reachable := make([]bool, t.next)
	t.Walk(RootIndex, func(e Entry) {
		reachable[e.Index] = true
	})

	var orphans []int
	for i := range t.next {
		if t.nodes[i].used && !reachable[i] {
			orphans = append(orphans, i)
		}
	}
	return orphans
}

// Path returns the absolute path of index, e.g. "/root/a/b".
//
// Returns an error for empty slots and orphans, together with the path up to
// the first detached ancestor.
func (t *Table) Path(index int) (string, error) {
	n, ok := t.live(index)
	if !ok {
		return "", fmt.Errorf("slot %d: %w", index, ErrNotFound)
	}

	parts := []string{n.name.String()}
	for !n.IsRoot() {
		p, ok := t.live(n.parent)
		if !ok || p.childPos(n.index) < 0 {
			return "/" + joinReversed(parts), fmt.Errorf("detached directory %q: %w", n.name.String(), ErrNotFound)
		}
		parts = append(parts, p.name.String())
		n = p
	}
	return "/" + joinReversed(parts), nil
}

func joinReversed(parts []string) string {
	rev := make([]string, len(parts))
	for i, p := range parts {
		rev[len(parts)-1-i] = p
	}
	return strings.Join(rev, "/")
}
