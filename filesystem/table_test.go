package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable() *Table {
	return NewTable(100, 10, MustName("root"))
}

// mkdir creates name under parent and fails the test on error
func mkdir(t *testing.T, tbl *Table, parent int, name string) int {
	t.Helper()
	idx, err := tbl.CreateChild(parent, MustName(name))
	require.NoError(t, err)
	return idx
}

// treeNames flattens a walk from start into indented names
func treeNames(tbl *Table, start int) []string {
	var out []string
	tbl.Walk(start, func(e Entry) {
		prefix := ""
		for range e.Depth {
			prefix += "  "
		}
		out = append(out, prefix+e.Name.String())
	})
	return out
}

func TestNewTable(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()

	assert.Equal(t, 100, tbl.Cap())
	assert.Equal(t, 10, tbl.ChildCap())
	assert.Equal(t, 1, tbl.Cursor(), "cursor must start after root")
	assert.Equal(t, 1, tbl.Len())

	root, ok := tbl.Node(RootIndex)
	require.True(t, ok)
	assert.True(t, root.IsRoot())
	assert.Equal(t, RootIndex, root.Parent(), "root must be its own parent")
	assert.Equal(t, "root", root.Name().String())
	assert.Equal(t, 0, root.ChildCount())
}

func TestNewTable_ClampsCapacities(t *testing.T) {
	t.Parallel()

	tbl := NewTable(0, -3, MustName("r"))

	assert.Equal(t, 1, tbl.Cap(), "root slot must always exist")
	assert.Equal(t, 0, tbl.ChildCap())
	_, err := tbl.CreateChild(RootIndex, MustName("a"))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestTable_CreateChild(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()

	a := mkdir(t, tbl, RootIndex, "a")
	b := mkdir(t, tbl, RootIndex, "b")

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 3, tbl.Cursor())
	assert.Equal(t, []int{a, b}, tbl.ChildrenOf(RootIndex), "children must keep insertion order")

	node, ok := tbl.Node(a)
	require.True(t, ok)
	assert.Equal(t, RootIndex, node.Parent())
	assert.Equal(t, "a         ", node.Name().Padded())
}

func TestTable_CreateChild_RoundTripLookup(t *testing.T) {
	t.Parallel()

	names := []string{"a", "docs", "0123456789", "x.y", "UPPER", "-_~!"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tbl := newTestTable()

			idx := mkdir(t, tbl, RootIndex, name)

			found, ok := tbl.FindChild(RootIndex, MustName(name))
			require.True(t, ok)
			assert.Equal(t, idx, found)

			found, ok = tbl.FindChildByName(MustName("root"), MustName(name))
			require.True(t, ok)
			assert.Equal(t, idx, found)
		})
	}
}

func TestTable_CreateChild_Errors(t *testing.T) {
	t.Parallel()

	t.Run("BlankName", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable()

		_, err := tbl.CreateChild(RootIndex, BlankName())

		assert.ErrorIs(t, err, ErrNameMissing)
		assert.Equal(t, 1, tbl.Cursor())
	})

	t.Run("UnknownParent", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable()

		_, err := tbl.CreateChild(42, MustName("a"))

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SiblingCollision", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable()
		mkdir(t, tbl, RootIndex, "x")

		_, err := tbl.CreateChild(RootIndex, MustName("x"))

		assert.ErrorIs(t, err, ErrNameCollision)
		assert.Equal(t, 2, tbl.Cursor(), "failed create must not allocate")
		assert.Len(t, tbl.ChildrenOf(RootIndex), 1)
	})

	t.Run("SameNameDifferentParent", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable()
		a := mkdir(t, tbl, RootIndex, "a")

		_, err := tbl.CreateChild(a, MustName("a"))

		assert.NoError(t, err, "names only need to be unique among siblings")
	})

	t.Run("ChildLimit", func(t *testing.T) {
		t.Parallel()
		tbl := newTestTable()
		for i := range 10 {
			mkdir(t, tbl, RootIndex, string(rune('a'+i)))
		}

		_, err := tbl.CreateChild(RootIndex, MustName("k"))

		assert.ErrorIs(t, err, ErrChildLimit)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Equal(t, 11, tbl.Cursor())
	})
}

func TestTable_CreateChild_TableFull(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()

	// 99 directories fit next to root: fan out 9 parents with 10 children each
	// plus the 9 parents themselves = 99
	parent := RootIndex
	created := 0
	for p := range 9 {
		parent = mkdir(t, tbl, RootIndex, "p"+string(rune('0'+p)))
		created++
		for c := range 10 {
			mkdir(t, tbl, parent, "c"+string(rune('0'+c)))
			created++
		}
	}
	require.Equal(t, 99, created)
	require.Equal(t, 100, tbl.Cursor())
	before := treeNames(tbl, RootIndex)

	_, err := tbl.CreateChild(RootIndex, MustName("last"))

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.NotErrorIs(t, err, ErrChildLimit)
	assert.Equal(t, 100, tbl.Cursor())
	assert.Equal(t, before, treeNames(tbl, RootIndex), "tree must be unchanged")
}

func TestTable_FindChild_NotFound(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()
	mkdir(t, tbl, RootIndex, "a")

	idx, ok := tbl.FindChild(RootIndex, MustName("b"))
	assert.False(t, ok)
	assert.Equal(t, 0, idx)

	_, ok = tbl.FindChild(99, MustName("a"))
	assert.False(t, ok, "empty parent slot never matches")
}

func TestTable_FindChildByName_FirstParentWins(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()
	a := mkdir(t, tbl, RootIndex, "a")
	b := mkdir(t, tbl, RootIndex, "b")
	mkdir(t, tbl, a, "dup")
	dupUnderB := mkdir(t, tbl, b, "dup")
	target := mkdir(t, tbl, dupUnderB, "leaf")

	// "dup" under a is the first slot named dup, and it has no "leaf"
	_, ok := tbl.FindChildByName(MustName("dup"), MustName("leaf"))
	assert.False(t, ok, "name based parent lookup picks the first slot")

	// addressing the parent by index resolves it
	idx, ok := tbl.FindChild(dupUnderB, MustName("leaf"))
	require.True(t, ok)
	assert.Equal(t, target, idx)
}

func TestTable_FindChildByName_RootIsNotNotFound(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()

	_, ok := tbl.FindChildByName(MustName("nope"), MustName("a"))
	assert.False(t, ok)
}

func TestTable_RemoveChild(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()
	a := mkdir(t, tbl, RootIndex, "a")
	b := mkdir(t, tbl, RootIndex, "b")
	c := mkdir(t, tbl, RootIndex, "c")

	require.NoError(t, tbl.RemoveChild(RootIndex, b))

	assert.Equal(t, []int{a, c}, tbl.ChildrenOf(RootIndex), "list must stay dense and ordered")
	_, ok := tbl.Node(b)
	assert.False(t, ok, "removed slot must be empty")
	assert.Equal(t, 4, tbl.Cursor(), "cursor never moves back")
	assert.Equal(t, 3, tbl.Len())

	// the freed slot is not reused
	d := mkdir(t, tbl, RootIndex, "b")
	assert.Equal(t, 4, d)
}

func TestTable_RemoveChild_LastPosition(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()
	var last int
	for i := range 10 {
		last = mkdir(t, tbl, RootIndex, string(rune('a'+i)))
	}

	require.NoError(t, tbl.RemoveChild(RootIndex, last))

	assert.Len(t, tbl.ChildrenOf(RootIndex), 9)
	assert.NotContains(t, tbl.ChildrenOf(RootIndex), last)
	// room for one more child again
	mkdir(t, tbl, RootIndex, "z")
}

func TestTable_RemoveChild_OrphansDescendants(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()
	x := mkdir(t, tbl, RootIndex, "x")
	y := mkdir(t, tbl, x, "y")
	z := mkdir(t, tbl, y, "z")
	cursor := tbl.Cursor()

	require.NoError(t, tbl.RemoveChild(RootIndex, x))

	assert.Equal(t, []string{"root"}, treeNames(tbl, RootIndex))
	assert.Equal(t, []int{y, z}, tbl.Orphans())
	assert.Equal(t, cursor, tbl.Cursor())

	_, ok := tbl.Node(y)
	assert.True(t, ok, "orphans keep their slots")
	_, err := tbl.Path(y)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTable_RemoveChild_Errors(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()
	a := mkdir(t, tbl, RootIndex, "a")
	b := mkdir(t, tbl, a, "b")

	assert.ErrorIs(t, tbl.RemoveChild(RootIndex, RootIndex), ErrRootRemoval)
	assert.ErrorIs(t, tbl.RemoveChild(RootIndex, b), ErrNotFound, "b is not a child of root")
	assert.ErrorIs(t, tbl.RemoveChild(77, a), ErrNotFound)
	assert.Equal(t, []int{b}, tbl.ChildrenOf(a))
}

func TestTable_Walk(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()
	a := mkdir(t, tbl, RootIndex, "a")
	b := mkdir(t, tbl, a, "b")
	mkdir(t, tbl, b, "c")
	mkdir(t, tbl, a, "d")
	mkdir(t, tbl, RootIndex, "e")

	assert.Equal(t, []string{
		"root",
		"  a",
		"    b",
		"      c",
		"    d",
		"  e",
	}, treeNames(tbl, RootIndex))

	assert.Equal(t, []string{"a", "  b", "    c", "  d"}, treeNames(tbl, a),
		"walk starts at the given node with depth 0")
}

func TestTable_Path(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()
	a := mkdir(t, tbl, RootIndex, "a")
	b := mkdir(t, tbl, a, "b")

	p, err := tbl.Path(b)
	require.NoError(t, err)
	assert.Equal(t, "/root/a/b", p)

	p, err = tbl.Path(RootIndex)
	require.NoError(t, err)
	assert.Equal(t, "/root", p)

	_, err = tbl.Path(50)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNode_SnapshotIsDetached(t *testing.T) {
	t.Parallel()

	tbl := newTestTable()
	mkdir(t, tbl, RootIndex, "a")

	root, _ := tbl.Node(RootIndex)
	kids := root.Children()
	kids[0] = 99

	assert.Equal(t, []int{1}, tbl.ChildrenOf(RootIndex), "callers must not alias table storage")
}
