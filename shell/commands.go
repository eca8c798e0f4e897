package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brettbedarf/dirshell/filesystem"
)

// Command vocabulary. Matching is exact and case sensitive.
const (
	CmdCurDir    = "cur_dir"
	CmdMakeDir   = "make_dir"
	CmdChangeDir = "change_dir"
	CmdRemoveDir = "remove_dir"
	CmdDirTree   = "dir_tree"
	CmdClear     = "clear"
)

// parentDir is the change_dir argument that moves to the parent
var parentDir = filesystem.MustName(".")

type commandFn func(s *Shell, arg filesystem.Name) error

var commands = map[filesystem.Name]commandFn{
	filesystem.MustName(CmdCurDir):    (*Shell).curDir,
	filesystem.MustName(CmdMakeDir):   (*Shell).makeDir,
	filesystem.MustName(CmdChangeDir): (*Shell).changeDir,
	filesystem.MustName(CmdRemoveDir): (*Shell).removeDir,
	filesystem.MustName(CmdDirTree):   (*Shell).dirTree,
	filesystem.MustName(CmdClear):     (*Shell).clear,
}

// Dispatch runs a parsed command against the session. Every outcome is
// rendered to the sink; the returned error is for callers that want it, it
// has already been reported as an "[error]" line.
func (s *Shell) Dispatch(cmd, arg filesystem.Name) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(cmd, arg)
}

func (s *Shell) dispatch(cmd, arg filesystem.Name) error {
	fn, ok := commands[cmd]
	if !ok {
		err := fmt.Errorf("%q: %w", cmd.String(), ErrUnsupportedCommand)
		s.sink.Println(fmt.Sprintf("[error] Command '%s' is not supported.", cmd.String()))
		s.logger.Debug().Err(err).Msg("Unsupported command")
		return err
	}

	err := fn(s, arg)
	evt := s.logger.Trace()
	if err != nil {
		s.report(err)
		evt = s.logger.Debug().Err(err)
	}
	evt.Str("cmd", cmd.String()).Str("arg", arg.String()).Int("cwd", s.cwd).Msg("Dispatched command")
	return err
}

// report renders err as the single "[error]" line of the current command
func (s *Shell) report(err error) {
	s.sink.Println("[error] " + errorText(err))
}

func errorText(err error) string {
	switch {
	case errors.Is(err, filesystem.ErrNameMissing):
		return "The folder name is missing"
	case errors.Is(err, filesystem.ErrNameCollision):
		return "Such dir is already exists!"
	case errors.Is(err, filesystem.ErrChildLimit):
		return "The folder can not hold more children"
	case errors.Is(err, filesystem.ErrCapacityExceeded):
		return "Directory limit reached"
	case errors.Is(err, filesystem.ErrNotFound):
		return "No such children directory!"
	case errors.Is(err, ErrAlreadyAtRoot):
		return "You are already in the root directory"
	case errors.Is(err, ErrReservedName):
		return "The folder name is reserved"
	case errors.Is(err, ErrLineTooLong):
		return "Input line is too long"
	default:
		return err.Error()
	}
}

func (s *Shell) curDir(filesystem.Name) error {
	n, _ := s.table.Node(s.cwd)
	s.sink.Println("/" + n.Name().String())
	return nil
}

func (s *Shell) makeDir(name filesystem.Name) error {
	if name.IsBlank() {
		return filesystem.ErrNameMissing
	}
	if name == parentDir {
		return fmt.Errorf("%q: %w", name.String(), ErrReservedName)
	}
	if _, err := s.table.CreateChild(s.cwd, name); err != nil {
		return err
	}
	s.sink.Println(fmt.Sprintf("[ok] The folder %s is created", name.String()))
	return nil
}

func (s *Shell) changeDir(name filesystem.Name) error {
	if name.IsBlank() {
		return filesystem.ErrNameMissing
	}

	if name == parentDir {
		cur, _ := s.table.Node(s.cwd)
		if cur.IsRoot() {
			return ErrAlreadyAtRoot
		}
		s.cwd = cur.Parent()
		s.sink.Println("[ok] Directory changed")
		return nil
	}

	idx, ok := s.table.FindChild(s.cwd, name)
	if !ok {
		return fmt.Errorf("%q: %w", name.String(), filesystem.ErrNotFound)
	}
	s.cwd = idx
	s.sink.Println("[ok] Directory changed")
	return nil
}

func (s *Shell) removeDir(name filesystem.Name) error {
	if name.IsBlank() {
		return filesystem.ErrNameMissing
	}
	idx, ok := s.table.FindChild(s.cwd, name)
	if !ok {
		return fmt.Errorf("%q: %w", name.String(), filesystem.ErrNotFound)
	}
	if err := s.table.RemoveChild(s.cwd, idx); err != nil {
		return err
	}
	s.sink.Println(fmt.Sprintf("[ok] Directory %s was removed", name.String()))
	return nil
}

func (s *Shell) dirTree(filesystem.Name) error {
	for _, line := range s.treeLines(s.cwd) {
		s.sink.Println(line)
	}
	return nil
}

func (s *Shell) clear(filesystem.Name) error {
	s.sink.Clear()
	return nil
}

// treeLines renders the subtree at start, one "/name" line per directory,
// indented by IndentWidth spaces per level
func (s *Shell) treeLines(start int) []string {
	var lines []string
	s.table.Walk(start, func(e filesystem.Entry) {
		indent := strings.Repeat(" ", s.indent*e.Depth)
		lines = append(lines, indent+"/"+e.Name.String())
	})
	return lines
}

// TreeLines renders the whole tree from root the way dir_tree prints it
func (s *Shell) TreeLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.treeLines(filesystem.RootIndex)
}
