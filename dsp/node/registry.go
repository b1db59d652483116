package node

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cwbudde/algo-waveguide/dsp/core"
)

// ErrUnknownNode is returned by New for a type name with no factory.
var ErrUnknownNode = errors.New("node: unknown type")

var errDuplicateNode = errors.New("duplicate node type")

// Context provides the environment a factory builds a node for.
type Context struct {
	SampleRate float64
	BlockSize  int
	Params     Params
}

// Factory builds one uninitialized node.
type Factory func(ctx Context) (core.Node, error)

// Entry is a registered factory and the port layout of what it builds.
type Entry struct {
	Factory Factory
	Inputs  []core.Port
	Outputs []core.Port
}

// Input returns the index of the named input port, or -1.
func (e Entry) Input(name string) int { return core.PortIndex(e.Inputs, name) }

// Output returns the index of the named output port, or -1.
func (e Entry) Output(name string) int { return core.PortIndex(e.Outputs, name) }

// Registry maps node type names to their entries.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds an entry for the given node type.
func (r *Registry) Register(nodeType string, e Entry) error {
	if nodeType == "" {
		return errors.New("empty node type")
	}

	if e.Factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.entries[nodeType]; exists {
		return fmt.Errorf("%w: %s", errDuplicateNode, nodeType)
	}

	r.entries[nodeType] = e

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(nodeType string, e Entry) {
	err := r.Register(nodeType, e)
	if err != nil {
		panic("node registry: " + err.Error())
	}
}

// Lookup returns the entry for the given node type.
func (r *Registry) Lookup(nodeType string) (Entry, bool) {
	e, ok := r.entries[nodeType]
	return e, ok
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// New builds a node of nodeType and initializes it for ctx. Not real-time
// safe.
func (r *Registry) New(nodeType string, ctx Context) (core.Node, error) {
	e, ok := r.entries[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, nodeType)
	}

	n, err := e.Factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("node: build %s: %w", nodeType, err)
	}

	if err := n.Init(ctx.SampleRate, ctx.BlockSize); err != nil {
		return nil, fmt.Errorf("node: init %s: %w", nodeType, err)
	}

	return n, nil
}
