package adapters

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/brettbedarf/dirshell"
	"github.com/brettbedarf/dirshell/shell"
	"github.com/brettbedarf/dirshell/sinks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, s *Stream) ([]dirshell.Key, error) {
	t.Helper()
	var keys []dirshell.Key
	for {
		k, err := s.Next(context.Background())
		if err != nil {
			return keys, err
		}
		keys = append(keys, k)
	}
}

func TestStream_Decode(t *testing.T) {
	t.Parallel()

	back := dirshell.RawKeyOf(dirshell.RawBackspace)
	tests := []struct {
		name    string
		in      string
		want    []dirshell.Key
		wantErr error
	}{
		{"Printable", "ab", []dirshell.Key{dirshell.ByteKey('a'), dirshell.ByteKey('b')}, io.EOF},
		{"CarriageReturnIsNewline", "a\r", []dirshell.Key{dirshell.ByteKey('a'), dirshell.ByteKey('\n')}, io.EOF},
		{"NewlinePassesThrough", "\n", []dirshell.Key{dirshell.ByteKey('\n')}, io.EOF},
		{"DeleteAndBackspace", "\x7f\b", []dirshell.Key{back, back}, io.EOF},
		{"CtrlDEndsInput", "a\x04b", []dirshell.Key{dirshell.ByteKey('a')}, io.EOF},
		{"CtrlCInterrupts", "\x03", nil, ErrInterrupted},
		{"ArrowKeys", "\x1b[A\x1b[B\x1b[C\x1b[D", []dirshell.Key{
			dirshell.RawKeyOf(dirshell.RawArrowUp),
			dirshell.RawKeyOf(dirshell.RawArrowDown),
			dirshell.RawKeyOf(dirshell.RawArrowRight),
			dirshell.RawKeyOf(dirshell.RawArrowLeft),
		}, io.EOF},
		{"LoneEscape", "\x1b", []dirshell.Key{dirshell.RawKeyOf(dirshell.RawEscape)}, io.EOF},
		{"UnknownSequence", "\x1b[Zq", []dirshell.Key{
			dirshell.RawKeyOf(dirshell.RawEscape),
			dirshell.ByteKey('['),
			dirshell.ByteKey('Z'),
			dirshell.ByteKey('q'),
		}, io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			keys, err := readAll(t, NewStream(strings.NewReader(tt.in)))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestStream_ErrorIsSticky(t *testing.T) {
	t.Parallel()
	s := NewStream(strings.NewReader(""))

	_, err := s.Next(context.Background())
	require.ErrorIs(t, err, io.EOF)
	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_NextHonoursContext(t *testing.T) {
	t.Parallel()
	r, w := io.Pipe()
	defer w.Close()
	s := NewStream(r)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the byte read after the timeout is not lost
	go func() { _, _ = w.Write([]byte("x")) }()
	k, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dirshell.ByteKey('x'), k)
}

func TestStream_DrivesShell(t *testing.T) {
	t.Parallel()
	out := sinks.NewBuffer()
	sh, err := shell.New(nil, out)
	require.NoError(t, err)

	src := NewStream(strings.NewReader("make_dir a\rmake_dix\x7fr b\rdir_tree\r"))
	require.NoError(t, sh.Run(context.Background(), src))

	assert.Equal(t, []string{
		"make_dir a",
		"[ok] The folder a is created",
		"make_dix\b \br b",
		"[ok] The folder b is created",
		"dir_tree",
		"/root",
		"    /a",
		"    /b",
	}, out.Lines())
}

func TestTerminal_NotATTY(t *testing.T) {
	t.Parallel()
	f, err := os.CreateTemp(t.TempDir(), "keys")
	require.NoError(t, err)
	_, err = f.WriteString("cur_dir\n")
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	defer f.Close()

	term, err := NewTerminal(f)
	require.NoError(t, err)
	assert.False(t, term.Raw())

	k, err := term.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dirshell.ByteKey('c'), k)

	assert.NoError(t, term.Close())
	_, err = term.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_EscapeSequenceSplitAcrossReads(t *testing.T) {
	t.Parallel()

	keys, err := readAll(t, NewStream(iotest.OneByteReader(strings.NewReader("\x1b[Ax\x1b[D"))))

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []dirshell.Key{
		dirshell.RawKeyOf(dirshell.RawArrowUp),
		dirshell.ByteKey('x'),
		dirshell.RawKeyOf(dirshell.RawArrowLeft),
	}, keys)
}

func TestStream_EscapeSequenceArrivesLater(t *testing.T) {
	t.Parallel()
	r, w := io.Pipe()
	defer w.Close()
	s := NewStream(r)

	go func() {
		_, _ = w.Write([]byte("\x1b"))
		time.Sleep(10 * time.Millisecond)
		_, _ = w.Write([]byte("[B"))
	}()

	k, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dirshell.RawKeyOf(dirshell.RawArrowDown), k)
}

func TestStream_CloseStopsReader(t *testing.T) {
	t.Parallel()
	r, w := io.Pipe()
	defer w.Close()
	s := NewStream(r)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// a key nobody asks for leaves the reader waiting to hand it over
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	select {
	case <-s.exited:
	case <-time.After(time.Second):
		t.Fatal("reader goroutine still running after Close")
	}

	_, err = s.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
