package util

import (
	"io"
	"os"
	"strings"
	"time"

	stdlog "log"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

// LogLevel represents available log levels
type LogLevel = int

// Log levels
const (
	TraceLevel LogLevel = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Verbosity bounds accepted from the CLI and config files
const (
	MinVerbose = 1
	MaxVerbose = 5
)

// LevelFromVerbose maps a CLI verbosity between 1 (error) and 5 (trace) onto a
// LogLevel. Out of range values are clamped.
func LevelFromVerbose(verbose int) LogLevel {
	verbose = min(max(verbose, MinVerbose), MaxVerbose)
	lvls := [MaxVerbose]LogLevel{ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel}
	return lvls[verbose-1]
}

func toZerolog(level LogLevel) zerolog.Level {
	switch level {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitializeLogger sets up the global logger with the specified configuration.
// Logs go to stderr so they never interleave with the shell's own console output.
func InitializeLogger(level LogLevel) {
	InitializeLoggerTo(os.Stderr, level)
}

// InitializeLoggerTo is [InitializeLogger] with an explicit destination
func InitializeLoggerTo(out io.Writer, level LogLevel) {
	// Set time format to ISO8601
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(toZerolog(level))

	// Create a console writer with nice formatting for terminal output
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}

	// Set global logger
	ctx := zerolog.New(output).With().Timestamp()
	if level == TraceLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	log.Debug().Msg("Logger initialized")
}

// GetLogger returns a configured logger for a specific component
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// zerologWriter wraps zerolog to implement io.Writer for stdlog
type zerologWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func (w zerologWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	// Remove stdlog prefix if present (timestamp and flags)
	if idx := strings.LastIndex(msg, ": "); idx != -1 && idx < len(msg)-2 {
		msg = msg[idx+2:]
	}
	w.logger.WithLevel(w.level).Msg(msg)

	return len(p), nil
}

// NewLogLogger returns a configured stdlog.Logger that routes to zerolog.
// Used for libraries (go-fuse) that only accept a *log.Logger.
func NewLogLogger(component string, lvl LogLevel) *stdlog.Logger {
	logger := log.With().Str("component", component).Logger()
	writer := zerologWriter{logger: logger, level: toZerolog(lvl)}

	return stdlog.New(writer, "", 0)
}
