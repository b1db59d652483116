package delay

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthExceedsCapacity is the panic value cause when a length does
	// not fit the line's buffer.
	ErrLengthExceedsCapacity = errors.New("delay: length exceeds capacity")
	// ErrInvalidCapacity is returned by constructors for capacity <= 0.
	ErrInvalidCapacity = errors.New("delay: capacity must be > 0")
	// ErrBlockTooLong is the panic cause when a block read would overtake
	// the write head.
	ErrBlockTooLong = errors.New("delay: block longer than delay length")
)

func validateCapacity(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	return nil
}

func checkLength(frames float64, capacity int) {
	if !(frames <= float64(capacity)) {
		panic(fmt.Errorf("%w: %v > %d", ErrLengthExceedsCapacity, frames, capacity))
	}
}
