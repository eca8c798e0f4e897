package sinks

import (
	"io"

	"github.com/brettbedarf/dirshell"
)

type BuiltInSinkType = string

const (
	ConsoleSinkType BuiltInSinkType = "console"
	BufferSinkType  BuiltInSinkType = "buffer"
)

// RegisterBuiltins registers all built-in sinks in the default registry
// or only the specific ones if keys are provided
func RegisterBuiltins(names ...BuiltInSinkType) {
	registerBuiltins(defaultRegistry, names...)
}

func registerBuiltins(r *Registry, names ...BuiltInSinkType) {
	if len(names) == 0 {
		names = append(names, ConsoleSinkType, BufferSinkType)
	}

	for _, key := range names {
		switch key {
		case ConsoleSinkType:
			r.Register(key, func(w io.Writer) dirshell.Sink { return NewConsole(w) })
		case BufferSinkType:
			r.Register(key, func(io.Writer) dirshell.Sink { return NewBuffer() })
		}
	}
}
