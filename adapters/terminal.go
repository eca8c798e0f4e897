package adapters

import (
	"fmt"
	"os"

	"github.com/brettbedarf/dirshell/internal/util"
	"golang.org/x/term"
)

// Terminal is a key source reading from a terminal file, normally os.Stdin.
// When the file is a TTY it is put in raw mode so every key reaches the shell
// as it is typed; otherwise it is read as a plain stream.
type Terminal struct {
	*Stream
	fd    int
	state *term.State // nil when not in raw mode
}

// NewTerminal opens a key source on f. Call Close to restore the terminal.
func NewTerminal(f *os.File) (*Terminal, error) {
	logger := util.GetLogger("Terminal")
	t := &Terminal{
		Stream: NewStream(f),
		fd:     int(f.Fd()),
	}

	if !term.IsTerminal(t.fd) {
		logger.Debug().Str("file", f.Name()).Msg("Input is not a terminal, reading in cooked mode")
		return t, nil
	}

	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.state = state
	logger.Debug().Str("file", f.Name()).Msg("Terminal in raw mode")
	return t, nil
}

// Raw reports whether the terminal was switched to raw mode
func (t *Terminal) Raw() bool {
	return t.state != nil
}

// Close stops the key stream and restores the terminal to the mode it was
// in before NewTerminal
func (t *Terminal) Close() error {
	_ = t.Stream.Close()
	if t.state == nil {
		return nil
	}
	state := t.state
	t.state = nil
	return term.Restore(t.fd, state)
}
