package filesystem

import (
	"errors"
	"fmt"
)

// Errors returned by [Table] operations. Callers match them with errors.Is;
// the returned errors wrap these with the offending name or index.
var (
	ErrNameMissing      = errors.New("directory name is missing")
	ErrNameTooLong      = fmt.Errorf("directory name is longer than %d bytes", NameWidth)
	ErrInvalidName      = errors.New("directory name contains a space or non-printable byte")
	ErrNameCollision    = errors.New("directory already exists")
	ErrNotFound         = errors.New("no such directory")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrChildLimit is the per-directory flavour of ErrCapacityExceeded
	ErrChildLimit  = fmt.Errorf("%w: child list is full", ErrCapacityExceeded)
	ErrRootRemoval = errors.New("root directory can not be removed")
)
