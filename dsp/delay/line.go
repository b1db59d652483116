package delay

import (
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/interp"
)

// MinLength is the shortest fractional length a Line accepts. Shorter
// requests are raised to it.
const MinLength = 1.5

// Line is a circular delay line with allpass fractional interpolation.
type Line struct {
	buffer   []float64
	writePos int
	frames   int
	length   float64
	allpass  interp.Allpass

	clearing   bool
	sinceClear int
}

// New returns a delay line holding up to capacity frames.
func New(capacity int) (*Line, error) {
	if err := validateCapacity(capacity); err != nil {
		return nil, err
	}

	d := &Line{buffer: make([]float64, capacity)}
	d.SetLength(math.Min(2, float64(capacity)))

	return d, nil
}

// MustNew is like New but panics on an invalid capacity.
func MustNew(capacity int) *Line {
	d, err := New(capacity)
	if err != nil {
		panic(err)
	}

	return d
}

// Cap returns the buffer capacity in frames.
func (d *Line) Cap() int {
	return len(d.buffer)
}

// Length returns the current delay length in frames.
func (d *Line) Length() float64 {
	return d.length
}

// SetLength sets the delay length in frames. It panics when frames exceeds
// the capacity (or is NaN) and raises values below MinLength.
func (d *Line) SetLength(frames float64) {
	checkLength(frames, len(d.buffer))

	if frames < MinLength {
		frames = MinLength
	}

	d.length = frames

	var delta float64
	d.frames, delta = splitLength(frames)
	d.allpass.SetDelta(delta)
}

// Read returns the next delayed sample. Call it before Write.
func (d *Line) Read() float64 {
	if d.clearing && d.frames > d.sinceClear {
		return 0
	}

	idx := d.writePos - d.frames
	if idx < 0 {
		idx += len(d.buffer)
	}

	return d.allpass.Process(d.buffer[idx])
}

// Write stores one sample and advances the write head.
func (d *Line) Write(x float64) {
	d.buffer[d.writePos] = x

	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}

	if d.clearing {
		d.sinceClear++
		if d.sinceClear >= len(d.buffer) {
			d.clearing = false
		}
	}
}

// Clear silences the line without touching the buffer. Reads return zero
// until the tap only sees frames written after the call. Stays consistent
// when the length changes while clearing.
func (d *Line) Clear() {
	d.clearing = true
	d.sinceClear = 0
	d.allpass.Reset()
}

// Clearing reports whether reads are still gated by a Clear.
func (d *Line) Clearing() bool { return d.clearing }

// Reset zeroes the buffer and interpolator state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.writePos = 0
	d.clearing = false
	d.sinceClear = 0
	d.allpass.Reset()
}

// splitLength splits frames into an integer tap distance and an allpass
// delta in [0.5, 1.5), keeping the allpass coefficient in (-1/5, 1/3].
func splitLength(frames float64) (int, float64) {
	whole := math.Floor(frames)
	n := int(whole)
	delta := frames - whole

	if frames > 0.5 && delta < 0.5 {
		delta++
		n--
	}

	return n, delta
}
