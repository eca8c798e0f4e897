package shell

import (
	"bytes"
	"fmt"

	"github.com/brettbedarf/dirshell/filesystem"
)

// ParseLine splits a raw input line into a command and an argument token.
//
// The command is everything before the first space, the argument everything
// after it up to the next space; further tokens are ignored. Both tokens are
// padded to [filesystem.NameWidth]. When either token does not fit, both are
// returned blank along with ErrCommandTooLong or ErrArgumentTooLong, so the
// line dispatches as nothing.
func ParseLine(line []byte) (cmd, arg filesystem.Name, err error) {
	blank := filesystem.BlankName()

	cmdTok, rest, _ := bytes.Cut(line, []byte{' '})
	argTok, _, _ := bytes.Cut(rest, []byte{' '})

	if len(cmdTok) > filesystem.NameWidth {
		return blank, blank, fmt.Errorf("%q: %w", cmdTok, ErrCommandTooLong)
	}
	if len(argTok) > filesystem.NameWidth {
		return blank, blank, fmt.Errorf("%q: %w", argTok, ErrArgumentTooLong)
	}

	if cmd, err = filesystem.NameFromBytes(cmdTok); err != nil {
		return blank, blank, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if arg, err = filesystem.NameFromBytes(argTok); err != nil {
		return blank, blank, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return cmd, arg, nil
}
