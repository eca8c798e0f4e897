package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/brettbedarf/dirshell"
	"github.com/brettbedarf/dirshell/config"
	"github.com/brettbedarf/dirshell/filesystem"
	"github.com/brettbedarf/dirshell/internal/util"
	"github.com/brettbedarf/dirshell/sinks"
	"github.com/google/uuid"
)

// State of the line state machine
type State int

const (
	AwaitingInput State = iota
	LineComplete
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "AwaitingInput"
	case LineComplete:
		return "LineComplete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TreeView is the read-only part of [filesystem.Table] handed out by [Shell.View]
type TreeView interface {
	Node(index int) (filesystem.Node, bool)
	ChildrenOf(index int) []int
	FindChild(parent int, name filesystem.Name) (int, bool)
	Walk(start int, fn func(e filesystem.Entry))
	Path(index int) (string, error)
	Orphans() []int
	Cursor() int
	Cap() int
	Len() int
}

// Shell is one interactive session: a directory table, the current directory
// and the input line being typed. Every key is handled to completion under a
// single lock that guards the whole session, so a Shell may be fed from any
// goroutine but never processes two keys at once.
type Shell struct {
	mu       sync.Mutex
	cfg      *config.Config
	table    *filesystem.Table
	cwd      int    // index of the current directory in table
	buf      []byte // input line; capacity fixed at cfg.LineCap
	overflow bool   // bytes were dropped from the current line
	indent   int    // spaces per tree level, never negative
	state    State
	sink     dirshell.Sink
	id       string
	logger   util.Logger
}

// New creates a session with a fresh table holding only the root directory.
// A nil cfg uses the defaults.
func New(cfg *config.Config, sink dirshell.Sink) (*Shell, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if sink == nil {
		return nil, errors.New("shell requires an output sink")
	}
	rootName, err := filesystem.NewName(cfg.RootName)
	if err != nil {
		return nil, fmt.Errorf("invalid root name: %w", err)
	}
	if rootName.IsBlank() {
		return nil, fmt.Errorf("invalid root name: %w", filesystem.ErrNameMissing)
	}

	id := uuid.NewString()
	s := &Shell{
		cfg:    cfg,
		table:  filesystem.NewTable(cfg.MaxNodes, cfg.MaxChildren, rootName),
		cwd:    filesystem.RootIndex,
		buf:    make([]byte, 0, max(cfg.LineCap, 1)),
		indent: max(cfg.IndentWidth, 0),
		state:  AwaitingInput,
		sink:   sink,
		id:     id,
		logger: util.GetLogger("Shell").With().Str("session", id).Logger(),
	}
	s.logger.Info().
		Int("maxNodes", s.table.Cap()).
		Int("maxChildren", s.table.ChildCap()).
		Int("lineCap", cap(s.buf)).
		Msg("Shell session started")
	return s, nil
}

// ID returns the session id stamped on every log line of this shell
func (s *Shell) ID() string {
	return s.id
}

// State returns the current line state. Outside of OnKey this is always
// AwaitingInput.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cwd returns the index of the current directory
func (s *Shell) Cwd() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// Line returns a copy of the partially typed input line
func (s *Shell) Line() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.buf)
}

// View runs fn with read access to the tree under the session lock.
// fn must not retain v or call back into the shell.
func (s *Shell) View(fn func(v TreeView, cwd int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.table, s.cwd)
}

// OnKey handles one decoded key.
//
// A newline ('\n' or '\r') completes the line: it is parsed, dispatched and
// cleared before OnKey returns. Printable bytes are buffered and echoed.
// Backspace (raw key, 0x08 or 0x7f) deletes the last buffered byte. All other
// keys are ignored.
func (s *Shell) OnKey(key dirshell.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onKey(key)
}

func (s *Shell) onKey(key dirshell.Key) {
	if key.IsRaw() {
		if key.Raw == dirshell.RawBackspace {
			s.backspace()
		}
		return
	}

	switch c := key.Byte; {
	case isLineEnd(c):
		s.completeLine()
	case c == '\b' || c == 0x7f:
		s.backspace()
	case c < ' ' || c > '~':
		s.logger.Trace().Uint8("byte", c).Msg("Ignoring non-printable byte")
	default:
		s.appendByte(c)
	}
}

func isLineEnd(c byte) bool {
	return c == '\n' || c == '\r'
}

// Feed sends every byte of input to [Shell.OnKey] in order
func (s *Shell) Feed(input string) {
	for _, k := range dirshell.KeysOf(input) {
		s.OnKey(k)
	}
}

// FeedLines runs input as one unit: no other key is handled until every line
// in it has run. input must end with a newline, and no partly typed line may
// be pending, so it can never join or be joined by keys from another source.
// Output goes to the session sink and, when also is not nil, to also.
func (s *Shell) FeedLines(input string, also dirshell.Sink) error {
	if input == "" || !isLineEnd(input[len(input)-1]) {
		return ErrIncompleteLine
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buf) > 0 || s.overflow {
		s.logger.Debug().Int("pending", len(s.buf)).Msg("Refusing lines while a line is being typed")
		return ErrInputBusy
	}

	if also != nil {
		sink := s.sink
		s.sink = sinks.NewTee(sink, also)
		defer func() { s.sink = sink }()
	}
	for _, k := range dirshell.KeysOf(input) {
		s.onKey(k)
	}
	return nil
}

// Run feeds keys from src until it is exhausted (io.EOF, returns nil), fails,
// or ctx is done.
func (s *Shell) Run(ctx context.Context, src dirshell.KeySource) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		key, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug().Msg("Key source exhausted")
				return nil
			}
			return err
		}
		s.OnKey(key)
	}
}

func (s *Shell) appendByte(c byte) {
	if len(s.buf) == cap(s.buf) {
		if !s.overflow {
			s.logger.Debug().Int("lineCap", cap(s.buf)).Msg("Input line full, dropping input")
		}
		s.overflow = true
		return
	}
	s.buf = append(s.buf, c)
	s.sink.Echo(c)
}

func (s *Shell) backspace() {
	if len(s.buf) == 0 {
		return
	}
	s.buf = s.buf[:len(s.buf)-1]
	s.sink.Echo('\b')
	s.sink.Echo(' ')
	s.sink.Echo('\b')
}

// completeLine runs the LineComplete state and returns to AwaitingInput
func (s *Shell) completeLine() {
	s.state = LineComplete
	defer func() {
		s.buf = s.buf[:0]
		s.overflow = false
		s.state = AwaitingInput
	}()

	s.sink.Echo('\n')

	if s.overflow {
		s.report(ErrLineTooLong)
		return
	}

	cmd, arg, err := ParseLine(s.buf)
	if err != nil {
		// the line is discarded as blank, nothing is shown to the user
		s.logger.Debug().Err(err).Str("line", string(s.buf)).Msg("Discarding unparsable line")
		return
	}
	if cmd.IsBlank() {
		return
	}
	s.dispatch(cmd, arg)
}

var _ dirshell.KeyHandler = (*Shell)(nil)
