package server

import (
	"context"
	"syscall"

	"github.com/brettbedarf/dirshell/filesystem"
	"github.com/brettbedarf/dirshell/shell"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const dirMode = syscall.S_IFDIR | 0o555

// dirNode is one directory of the session tree as seen through the mount.
// It holds the table index only; every call reads the live tree, so a
// directory removed in the shell disappears from the mount on the next call.
type dirNode struct {
	fs.Inode
	sh    *shell.Shell
	index int
}

var (
	_ fs.NodeLookuper  = (*dirNode)(nil)
	_ fs.NodeReaddirer = (*dirNode)(nil)
	_ fs.NodeGetattrer = (*dirNode)(nil)
)

// inoOf maps a table index to an inode number. Indexes are never reused so
// neither are inode numbers; root gets 1.
func inoOf(index int) uint64 {
	return uint64(index) + 1
}

func (n *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	idx, errno := lookup(n.sh, n.index, name)
	if errno != 0 {
		return nil, errno
	}
	out.Mode = dirMode
	out.Ino = inoOf(idx)

	child := &dirNode{sh: n.sh, index: idx}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: syscall.S_IFDIR, Ino: inoOf(idx)}), 0
}

func (n *dirNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, errno := listDir(n.sh, n.index)
	if errno != 0 {
		return nil, errno
	}
	return fs.NewListDirStream(entries), 0
}

func (n *dirNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	var errno syscall.Errno
	n.sh.View(func(v shell.TreeView, _ int) {
		if !reachable(v, n.index) {
			errno = syscall.ENOENT
			return
		}
		node, _ := v.Node(n.index)
		out.Mode = dirMode
		out.Ino = inoOf(n.index)
		out.Nlink = uint32(2 + node.ChildCount())
	})
	return errno
}

// reachable reports whether index is a live directory linked up to root
func reachable(v shell.TreeView, index int) bool {
	_, err := v.Path(index)
	return err == nil
}

// lookup resolves name inside the directory at parent
func lookup(sh *shell.Shell, parent int, name string) (int, syscall.Errno) {
	fname, err := filesystem.NewName(name)
	if err != nil || fname.IsBlank() {
		return 0, syscall.ENOENT
	}

	idx, errno := 0, syscall.Errno(0)
	sh.View(func(v shell.TreeView, _ int) {
		if !reachable(v, parent) {
			errno = syscall.ENOENT
			return
		}
		var ok bool
		if idx, ok = v.FindChild(parent, fname); !ok {
			errno = syscall.ENOENT
		}
	})
	return idx, errno
}

// listDir returns the children of the directory at index in insertion order
func listDir(sh *shell.Shell, index int) ([]fuse.DirEntry, syscall.Errno) {
	var (
		entries []fuse.DirEntry
		errno   syscall.Errno
	)
	sh.View(func(v shell.TreeView, _ int) {
		if !reachable(v, index) {
			errno = syscall.ENOENT
			return
		}
		for _, idx := range v.ChildrenOf(index) {
			child, ok := v.Node(idx)
			if !ok {
				continue
			}
			entries = append(entries, fuse.DirEntry{
				Name: child.Name().String(),
				Mode: syscall.S_IFDIR,
				Ino:  inoOf(idx),
			})
		}
	})
	return entries, errno
}
