package adapters

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/brettbedarf/dirshell"
	"github.com/brettbedarf/dirshell/internal/util"
)

// ErrInterrupted is returned by a key source when the user typed Ctrl-C while
// the terminal was in raw mode and no SIGINT was delivered
var ErrInterrupted = errors.New("interrupted")

const (
	keyInterrupt = 0x03 // Ctrl-C
	keyEOT       = 0x04 // Ctrl-D
	keyEscape    = 0x1b
	keyDelete    = 0x7f
)

type keyResult struct {
	key dirshell.Key
	err error
}

// Stream decodes keys from a byte stream. Reads happen on a background
// goroutine started by the first call to Next so that Next can give up when
// its context is done; a key read after that is kept for the following call.
// Close stops the goroutine once its pending read returns.
type Stream struct {
	r         *bufio.Reader
	once      sync.Once
	closeOnce sync.Once
	keys      chan keyResult
	done      chan struct{} // closed by Close
	exited    chan struct{} // closed when pump returns
	err       error         // terminal error, set once keys is closed
	logger    util.Logger
}

// NewStream returns a key source reading from r
func NewStream(r io.Reader) *Stream {
	return &Stream{
		r:      bufio.NewReader(r),
		keys:   make(chan keyResult),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		logger: util.GetLogger("KeyStream"),
	}
}

// Next returns the next decoded key. It returns io.EOF when the stream ends,
// Ctrl-D is read or the stream was closed, and ErrInterrupted on Ctrl-C.
func (s *Stream) Next(ctx context.Context) (dirshell.Key, error) {
	select {
	case <-s.done:
		return dirshell.Key{}, io.EOF
	default:
	}
	s.once.Do(func() { go s.pump() })

	select {
	case <-s.done:
		return dirshell.Key{}, io.EOF
	case <-ctx.Done():
		return dirshell.Key{}, ctx.Err()
	case res, ok := <-s.keys:
		if !ok {
			return dirshell.Key{}, s.err
		}
		return res.key, res.err
	}
}

// Close makes Next return io.EOF. A read already blocked in the underlying
// reader is not interrupted; the goroutine exits as soon as it returns.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *Stream) pump() {
	defer close(s.exited)
	for {
		key, err := s.decode()
		if err != nil {
			s.logger.Debug().Err(err).Msg("Key stream closed")
			s.err = err
			close(s.keys)
			return
		}
		select {
		case s.keys <- keyResult{key: key}:
		case <-s.done:
			return
		}
	}
}

// decode reads one key. Arrow keys arrive as ESC '[' A..D; a lone ESC is
// reported as RawEscape.
func (s *Stream) decode() (dirshell.Key, error) {
	c, err := s.r.ReadByte()
	if err != nil {
		return dirshell.Key{}, err
	}

	switch c {
	case '\r':
		return dirshell.ByteKey('\n'), nil
	case '\b', keyDelete:
		return dirshell.RawKeyOf(dirshell.RawBackspace), nil
	case keyEOT:
		return dirshell.Key{}, io.EOF
	case keyInterrupt:
		return dirshell.Key{}, ErrInterrupted
	case keyEscape:
		return s.decodeEscape(), nil
	default:
		return dirshell.ByteKey(c), nil
	}
}

func (s *Stream) decodeEscape() dirshell.Key {
	// Peek blocks until the rest of a sequence arrives, however the reads
	// are split. A lone ESC is only reported once the next key is typed.
	if seq, err := s.r.Peek(1); err != nil || seq[0] != '[' {
		return dirshell.RawKeyOf(dirshell.RawEscape)
	}
	seq, err := s.r.Peek(2)
	if err != nil {
		return dirshell.RawKeyOf(dirshell.RawEscape)
	}

	var rk dirshell.RawKey
	switch seq[1] {
	case 'A':
		rk = dirshell.RawArrowUp
	case 'B':
		rk = dirshell.RawArrowDown
	case 'C':
		rk = dirshell.RawArrowRight
	case 'D':
		rk = dirshell.RawArrowLeft
	default:
		return dirshell.RawKeyOf(dirshell.RawEscape)
	}
	_, _ = s.r.Discard(2)
	return dirshell.RawKeyOf(rk)
}

var _ dirshell.KeySource = (*Stream)(nil)
