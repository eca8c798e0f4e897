package shell

import "errors"

// Interpreter level errors. Tree errors come from the filesystem package
// (filesystem.ErrNameMissing, filesystem.ErrNameCollision, ...).
var (
	ErrAlreadyAtRoot      = errors.New("already at the root directory")
	ErrCommandTooLong     = errors.New("command is too long")
	ErrArgumentTooLong    = errors.New("argument is too long")
	ErrInvalidToken       = errors.New("token contains a non-printable byte")
	ErrUnsupportedCommand = errors.New("command is not supported")
	ErrLineTooLong        = errors.New("input line is too long")
	ErrReservedName       = errors.New("directory name is reserved")

	// FeedLines refusals; nothing was fed
	ErrIncompleteLine = errors.New("input does not end with a newline")
	ErrInputBusy      = errors.New("a line is being typed")
)
