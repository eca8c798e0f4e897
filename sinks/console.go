package sinks

import (
	"io"

	"github.com/brettbedarf/dirshell"
	"github.com/brettbedarf/dirshell/internal/util"
)

// ansiClear homes the cursor and erases the screen
const ansiClear = "\033[H\033[2J"

// Console renders to a terminal stream. Line breaks are written as "\r\n" so
// output lines up when the terminal is in raw mode.
type Console struct {
	w      io.Writer
	logger util.Logger
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, logger: util.GetLogger("Console")}
}

func (c *Console) Echo(b byte) {
	if b == '\n' {
		c.write([]byte("\r\n"))
		return
	}
	c.write([]byte{b})
}

func (c *Console) Println(line string) {
	c.write([]byte(line + "\r\n"))
}

func (c *Console) Clear() {
	c.write([]byte(ansiClear))
}

// write drops the output on error; the sink boundary has no error channel
func (c *Console) write(p []byte) {
	if _, err := c.w.Write(p); err != nil {
		c.logger.Debug().Err(err).Msg("Console write failed")
	}
}

var _ dirshell.Sink = (*Console)(nil)
