package sinks

import (
	"fmt"
	"io"

	"github.com/brettbedarf/dirshell"
	"github.com/puzpuzpuz/xsync/v4"
)

// Factory builds a sink writing to w. Sinks that do not write to a stream
// (i.e. [Buffer]) ignore w.
type Factory func(w io.Writer) dirshell.Sink

// Registry maps sink names to factories. It is safe for concurrent use.
type Registry struct {
	factories *xsync.Map[string, Factory]
}

func NewRegistry() *Registry {
	return &Registry{factories: xsync.NewMap[string, Factory]()}
}

// Register ties a factory to a name. The first registration of a name wins;
// later ones are ignored and reported with ok=false.
func (r *Registry) Register(name string, f Factory) (ok bool) {
	_, loaded := r.factories.LoadOrStore(name, f)
	return !loaded
}

// New builds the sink registered under name
func (r *Registry) New(name string, w io.Writer) (dirshell.Sink, error) {
	f, ok := r.factories.Load(name)
	if !ok {
		return nil, fmt.Errorf("no sink registered as %q", name)
	}
	return f(w), nil
}

// Names returns the registered sink names in no particular order
func (r *Registry) Names() []string {
	names := make([]string, 0, r.factories.Size())
	r.factories.Range(func(name string, _ Factory) bool {
		names = append(names, name)
		return true
	})
	return names
}

var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry. See [Registry.Register].
func Register(name string, f Factory) bool {
	return defaultRegistry.Register(name, f)
}

// New builds a sink from the default registry. See [Registry.New].
func New(name string, w io.Writer) (dirshell.Sink, error) {
	return defaultRegistry.New(name, w)
}
