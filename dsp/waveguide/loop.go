package waveguide

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/delay"
)

// loop holds the state every string variant shares: the segment delays,
// the last segment outputs and the change detection for the controls that
// drive coefficient and length updates.
type loop struct {
	cfg    config
	delays []*delay.Feedback
	last   []float64

	trigger core.Trigger

	primed          bool
	lastSampleRate  float64
	lastFreq        float64
	lastPosition    float64
	lastDamping     float64
	lastLFDamping   float64
	lastDelayComp   float64
	filterDelayComp float64

	err error
}

func newLoop(segments int, cfg config) (*loop, error) {
	l := &loop{cfg: cfg, last: make([]float64, segments)}
	if err := l.allocate(cfg.maxDelay); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *loop) allocate(capacity int) error {
	delays := make([]*delay.Feedback, len(l.last))
	for i := range delays {
		d, err := delay.NewFeedback(capacity)
		if err != nil {
			return fmt.Errorf("waveguide: segment %d: %w", i, err)
		}

		delays[i] = d
	}

	l.delays = delays
	l.primed = false
	l.err = nil
	l.trigger.Reset()
	clear(l.last)

	return nil
}

// init reallocates the segments for sampleRate.
func (l *loop) init(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	capacity := max(int(sampleRate/l.cfg.divisor), 2)

	return l.allocate(capacity)
}

// capacity returns the per-segment capacity in frames.
func (l *loop) capacity() float64 {
	return float64(l.delays[0].Cap())
}

// clear silences the segments without touching their buffers.
func (l *loop) clear() {
	for _, d := range l.delays {
		d.Clear()
	}

	clear(l.last)
}

// reset zeroes the segment buffers and forgets the applied controls.
func (l *loop) reset() {
	for _, d := range l.delays {
		d.Reset()
	}

	clear(l.last)
	l.primed = false
	l.err = nil
	l.trigger.Reset()
}

// fired reports a reset edge on the control value.
func (l *loop) fired(v float64) bool {
	return l.trigger.Fire(v)
}

// lossChanged reports whether the loss filters need new coefficients.
func (l *loop) lossChanged(f *frame, sampleRate float64) bool {
	changed := !l.primed || sampleRate != l.lastSampleRate ||
		f.damping != l.lastDamping || f.lfDamping != l.lastLFDamping

	l.lastSampleRate = sampleRate
	l.lastDamping = f.damping
	l.lastLFDamping = f.lfDamping

	return changed
}

// tuningChanged reports whether the segment lengths must be recomputed.
// It also forces a recompute when lossChanged was true for this frame.
func (l *loop) tuningChanged(f *frame, lossChanged bool) bool {
	changed := lossChanged || !l.primed || f.freq != l.lastFreq ||
		f.position != l.lastPosition || f.delayComp != l.lastDelayComp

	l.lastFreq = f.freq
	l.lastPosition = f.position
	l.lastDelayComp = f.delayComp
	l.primed = true

	return changed
}

// setGain sets the feedback gain of every segment delay.
func (l *loop) setGain(g float64) {
	for _, d := range l.delays {
		d.SetGain(g)
	}
}

// setLength sets segment i to frames, clamped to [0, capacity].
func (l *loop) setLength(i int, frames float64) {
	l.delays[i].SetLength(core.Clamp(frames, 0, l.capacity()))
}

// process runs one segment. ok is false when the value entering or
// leaving the delay is not finite.
func (l *loop) process(i int, x float64) (y float64, ok bool) {
	if !core.IsFinite(x) {
		return 0, false
	}

	y = l.delays[i].Process(x)

	return y, core.IsFinite(y)
}

// halt stops the voice, clears the loop and silences out from index n.
func (l *loop) halt(n int, f *frame, out []float64) core.Status {
	l.err = &NonFiniteError{
		Index:    n,
		Exciter:  f.exciter,
		Freq:     f.freq,
		Position: f.position,
		Feedback: f.feedback,
		Damping:  f.damping,
	}

	l.clear()
	core.Zero(out[n:])

	return core.StatusFree
}

// halted silences out when a previous call halted the voice.
func (l *loop) halted(out []float64) bool {
	if l.err == nil {
		return false
	}

	core.Zero(out)

	return true
}

// voice is implemented by each string variant and driven by loop.run.
type voice interface {
	// clearState silences the variant's filters and the loop.
	clearState()
	// extrasFinite checks the variant specific controls at frame n.
	extrasFinite(n int) bool
	// extrasChanged reports variant controls that affect the loss filters.
	extrasChanged(n int) bool
	updateLoss(f *frame, n int, sampleRate float64)
	updateTuning(f *frame, n int, sampleRate float64)
	tick(f *frame, n int) (float64, bool)
}

// run drives v over one block of controls.
func (l *loop) run(v voice, c *Controls, out []float64, sampleRate float64) core.Status {
	if l.halted(out) {
		return core.StatusFree
	}

	for n := range out {
		f := c.at(n)

		if l.fired(f.reset) {
			v.clearState()
		}

		if !f.finite() || !v.extrasFinite(n) {
			return l.halt(n, &f, out)
		}

		loss := l.lossChanged(&f, sampleRate)
		if v.extrasChanged(n) {
			loss = true
		}

		if loss {
			v.updateLoss(&f, n, sampleRate)
		}

		if l.tuningChanged(&f, loss) {
			v.updateTuning(&f, n, sampleRate)
		}

		l.setGain(f.stiffness)

		y, ok := v.tick(&f, n)
		if !ok {
			return l.halt(n, &f, out)
		}

		out[n] = y
	}

	return core.StatusContinue
}

// segmentLengths splits the period of freq at position into two segment
// lengths in frames, each shifted by offset. A negative segment is folded
// into the other so neither goes below zero.
func segmentLengths(freq, position, sampleRate, offset float64) (float64, float64) {
	period := 1 / freq
	position = core.Clamp(position, 0, 1)

	t0 := period * position
	t1 := period - t0

	d0 := t0*sampleRate + offset
	d1 := t1*sampleRate + offset

	if math.Min(d0, d1) < 0 {
		d0 = math.Max(d0+d1, 0)
		d1 = 0
	}

	return d0, d1
}
