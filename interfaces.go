// Package dirshell contains the boundary types shared by the directory shell
// and its external collaborators: the output sink and the key source.
package dirshell

import "context"

// Sink is the character output device the shell renders to.
// Implementations must not call back into the shell.
type Sink interface {
	// Echo writes a single byte typed by the user
	Echo(c byte)

	// Println writes line followed by a line break
	Println(line string)

	// Clear wipes the display
	Clear()
}

// KeySource delivers decoded keys one at a time in arrival order.
// Next blocks until a key is available, ctx is done, or the source is
// exhausted (io.EOF).
type KeySource interface {
	Next(ctx context.Context) (Key, error)
}

// KeyHandler consumes keys; implemented by the shell
type KeyHandler interface {
	OnKey(key Key)
}
