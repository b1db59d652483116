package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/interp"
)

// Static is an integer-length ring buffer. Read before WriteAndAdvance
// returns the sample written Length frames ago; Read after it returns the
// sample written Length-1 frames ago.
type Static struct {
	buffer []float64
	pos    int
	length int
}

// NewStatic returns a static delay with the given capacity. The length
// starts at the full capacity.
func NewStatic(capacity int) (*Static, error) {
	if err := validateCapacity(capacity); err != nil {
		return nil, err
	}

	return &Static{
		buffer: make([]float64, capacity),
		length: capacity,
	}, nil
}

// MustNewStatic is like NewStatic but panics on an invalid capacity.
func MustNewStatic(capacity int) *Static {
	s, err := NewStatic(capacity)
	if err != nil {
		panic(err)
	}

	return s
}

// Cap returns the buffer capacity in frames.
func (s *Static) Cap() int { return len(s.buffer) }

// Length returns the delay length in frames.
func (s *Static) Length() int { return s.length }

// Position returns the write head index.
func (s *Static) Position() int { return s.pos }

// SetLength sets the delay length. Values below 1 are raised to 1; values
// above the capacity panic.
func (s *Static) SetLength(frames int) {
	checkLength(float64(frames), len(s.buffer))

	s.length = max(frames, 1)
}

// SetLengthFraction sets the length to fraction of the capacity, clamped to
// [1, capacity].
func (s *Static) SetLengthFraction(fraction float64) {
	n := int(float64(len(s.buffer)) * fraction)
	s.length = min(max(n, 1), len(s.buffer))
}

// Read returns the sample Length frames behind the write head.
func (s *Static) Read() float64 {
	idx := s.pos - s.length
	if idx < 0 {
		idx += len(s.buffer)
	}

	return s.buffer[idx]
}

// WriteAndAdvance stores x at the write head and advances it.
func (s *Static) WriteAndAdvance(x float64) {
	s.buffer[s.pos] = x

	s.pos++
	if s.pos >= len(s.buffer) {
		s.pos = 0
	}
}

// ReadAtLinear reads the buffer at an absolute fractional index with linear
// interpolation. The index wraps around the capacity.
func (s *Static) ReadAtLinear(index float64) float64 {
	n := len(s.buffer)
	whole := math.Floor(index)
	frac := index - whole

	i := int(whole) % n
	if i < 0 {
		i += n
	}

	j := i + 1
	if j >= n {
		j = 0
	}

	return interp.Linear2(frac, s.buffer[i], s.buffer[j])
}

// ReadBlock fills dst with the next len(dst) delayed samples. It panics
// when dst is longer than the delay length, because the tail of the block
// would not have been written yet.
func (s *Static) ReadBlock(dst []float64) {
	if len(dst) > s.length {
		panic(fmt.Errorf("%w: %d > %d", ErrBlockTooLong, len(dst), s.length))
	}

	n := len(s.buffer)

	idx := s.pos - s.length
	if idx < 0 {
		idx += n
	}

	for i := range dst {
		dst[i] = s.buffer[idx]

		idx++
		if idx >= n {
			idx = 0
		}
	}
}

// WriteBlockAndAdvance writes src at the write head and advances past it.
func (s *Static) WriteBlockAndAdvance(src []float64) {
	for _, x := range src {
		s.buffer[s.pos] = x

		s.pos++
		if s.pos >= len(s.buffer) {
			s.pos = 0
		}
	}
}

// Reset zeroes the buffer and rewinds the write head.
func (s *Static) Reset() {
	for i := range s.buffer {
		s.buffer[i] = 0
	}

	s.pos = 0
}
