package filesystem

import (
	"bytes"
	"fmt"
)

// NameWidth is the fixed width of a directory name in bytes
const NameWidth = 10

const pad = ' '

// Name is a fixed width, space padded directory name. It is never NUL
// terminated; a name shorter than NameWidth is right padded with spaces.
type Name [NameWidth]byte

// BlankName returns a name made entirely of padding
func BlankName() Name {
	var n Name
	for i := range n {
		n[i] = pad
	}
	return n
}

// NewName pads s to NameWidth. The empty string yields the blank name.
func NewName(s string) (Name, error) {
	return NameFromBytes([]byte(s))
}

// NameFromBytes is [NewName] for a raw byte token
func NameFromBytes(b []byte) (Name, error) {
	n := BlankName()
	if len(b) > NameWidth {
		return n, fmt.Errorf("%q: %w", b, ErrNameTooLong)
	}
	for i, c := range b {
		if c <= pad || c > '~' {
			return BlankName(), fmt.Errorf("%q: %w", b, ErrInvalidName)
		}
		n[i] = c
	}
	return n, nil
}

// MustName is [NewName] that panics on error. Intended for constants and tests.
func MustName(s string) Name {
	n, err := NewName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// IsBlank reports whether the name has no content, i.e. starts with padding
func (n Name) IsBlank() bool {
	return n[0] == pad
}

// String returns the name up to its first padding byte
func (n Name) String() string {
	if i := bytes.IndexByte(n[:], pad); i >= 0 {
		return string(n[:i])
	}
	return string(n[:])
}

// Padded returns all NameWidth bytes including padding
func (n Name) Padded() string {
	return string(n[:])
}
