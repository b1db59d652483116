package delay

import (
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/interp"
)

// Crossfade is a fractional delay with two allpass taps. Each length change
// retargets the inactive tap and fades over to it in RampSteps reads.
// Transitions never glide in pitch; they comb-filter briefly instead.
type Crossfade struct {
	buffer   []float64
	writePos int

	frames  [2]int
	lengths [2]float64
	allpass [2]interp.Allpass

	mix  float64
	step float64

	clearing   bool
	sinceClear int
}

// NewCrossfade returns a crossfading line holding up to capacity frames.
func NewCrossfade(capacity int) (*Crossfade, error) {
	if err := validateCapacity(capacity); err != nil {
		return nil, err
	}

	c := &Crossfade{
		buffer: make([]float64, capacity),
		step:   -1.0 / RampSteps,
	}

	initial := math.Min(2, float64(capacity))
	for i := range c.frames {
		c.setTap(i, initial)
	}

	return c, nil
}

// Cap returns the buffer capacity in frames.
func (c *Crossfade) Cap() int { return len(c.buffer) }

// Length returns the length of the tap being faded in.
func (c *Crossfade) Length() float64 {
	if c.step > 0 {
		return c.lengths[1]
	}

	return c.lengths[0]
}

// Mix returns the crossfade position: 0 is tap 0 only, 1 is tap 1 only.
func (c *Crossfade) Mix() float64 { return c.mix }

// SetLength moves the inactive tap to frames and reverses the fade.
func (c *Crossfade) SetLength(frames float64) {
	checkLength(frames, len(c.buffer))

	if c.step > 0 {
		c.setTap(0, frames)
	} else {
		c.setTap(1, frames)
	}

	c.step = -c.step
}

// Read advances the fade and returns the blended taps. Call it before Write.
func (c *Crossfade) Read() float64 {
	c.mix += c.step
	if c.mix < 0 {
		c.mix = 0
	} else if c.mix > 1 {
		c.mix = 1
	}

	tap0 := c.allpass[0].Process(c.tap(0))
	tap1 := c.allpass[1].Process(c.tap(1))

	return tap0*(1-c.mix) + tap1*c.mix
}

// Write stores one sample and advances the write head.
func (c *Crossfade) Write(x float64) {
	c.buffer[c.writePos] = x

	c.writePos++
	if c.writePos >= len(c.buffer) {
		c.writePos = 0
	}

	if c.clearing {
		c.sinceClear++
		if c.sinceClear >= len(c.buffer) {
			c.clearing = false
		}
	}
}

// Clear silences both taps without touching the buffer. Each tap reads
// zero until it only sees frames written after the call.
func (c *Crossfade) Clear() {
	c.clearing = true
	c.sinceClear = 0
	c.allpass[0].Reset()
	c.allpass[1].Reset()
}

// Reset zeroes the buffer and both interpolators.
func (c *Crossfade) Reset() {
	for i := range c.buffer {
		c.buffer[i] = 0
	}

	c.writePos = 0
	c.clearing = false
	c.sinceClear = 0
	c.allpass[0].Reset()
	c.allpass[1].Reset()
}

func (c *Crossfade) setTap(tap int, frames float64) {
	if frames < MinLength {
		frames = MinLength
	}

	var delta float64
	c.lengths[tap] = frames
	c.frames[tap], delta = splitLength(frames)
	c.allpass[tap].SetDelta(delta)
}

// tap returns the raw sample under tap, or zero while the tap still
// reaches frames written before Clear.
func (c *Crossfade) tap(tap int) float64 {
	if c.clearing && c.frames[tap] > c.sinceClear {
		return 0
	}

	return c.buffer[c.index(tap)]
}

func (c *Crossfade) index(tap int) int {
	idx := c.writePos - c.frames[tap]
	if idx < 0 {
		idx += len(c.buffer)
	}

	return idx
}
