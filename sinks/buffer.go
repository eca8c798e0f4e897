package sinks

import (
	"strings"
	"sync"

	"github.com/brettbedarf/dirshell"
)

// Buffer is an in-memory sink that records what a screen would show.
// Clear wipes the recorded output. Safe for concurrent use.
type Buffer struct {
	mu     sync.Mutex
	out    strings.Builder
	clears int
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Echo(c byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.WriteByte(c)
}

func (b *Buffer) Println(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.WriteString(line)
	b.out.WriteByte('\n')
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.out.Reset()
	b.clears++
}

// String returns everything written since the last Clear or Drain
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.out.String()
}

// Lines returns the recorded output split on line breaks, without the
// trailing empty element
func (b *Buffer) Lines() []string {
	s := strings.TrimSuffix(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Clears returns how many times Clear was called
func (b *Buffer) Clears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clears
}

// Drain returns the recorded output and resets it
func (b *Buffer) Drain() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.out.String()
	b.out.Reset()
	return s
}

var _ dirshell.Sink = (*Buffer)(nil)
