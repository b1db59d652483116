package param

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateName is returned when a bank already holds a value with the
// requested name.
var ErrDuplicateName = errors.New("param: duplicate name")

// Named pairs a registered value with its name.
type Named struct {
	Name  string
	Value *Value
}

// Bank collects named values as they are created so a UI can discover them.
// Registration locks; the values themselves never do.
type Bank struct {
	mu      sync.Mutex
	byName  map[string]*Value
	pending []Named
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{byName: make(map[string]*Value)}
}

// Add creates a value called name holding initial.
func (b *Bank) Add(name string, initial float64) (*Value, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	v := NewValue(initial)
	b.byName[name] = v
	b.pending = append(b.pending, Named{Name: name, Value: v})

	return v, nil
}

// MustAdd is Add that panics on error.
func (b *Bank) MustAdd(name string, initial float64) *Value {
	v, err := b.Add(name, initial)
	if err != nil {
		panic(err)
	}

	return v
}

// Lookup returns the value called name.
func (b *Bank) Lookup(name string) (*Value, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.byName[name]

	return v, ok
}

// Drain returns the values added since the previous Drain, in creation
// order.
func (b *Bank) Drain() []Named {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.pending
	b.pending = nil

	return out
}
