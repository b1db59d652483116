package waveguide

import (
	"errors"
	"fmt"
)

var (
	// ErrNonFinite is reported when a NaN or Inf reaches a string loop.
	ErrNonFinite = errors.New("waveguide: non-finite value in loop")
	// ErrInvalidSampleRate is returned by Init for non-positive rates.
	ErrInvalidSampleRate = errors.New("waveguide: sample rate must be > 0")
)

// NonFiniteError records where a voice halted.
type NonFiniteError struct {
	// Index is the frame within the block that produced the value.
	Index    int
	Exciter  float64
	Freq     float64
	Position float64
	Feedback float64
	Damping  float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("%v at frame %d (exciter=%v freq=%v position=%v feedback=%v damping=%v)",
		ErrNonFinite, e.Index, e.Exciter, e.Freq, e.Position, e.Feedback, e.Damping)
}

// Unwrap returns ErrNonFinite.
func (e *NonFiniteError) Unwrap() error { return ErrNonFinite }
