package waveguide

import (
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/filter/onepole"
)

const (
	bowedLoopCompensation = 0.125
	maxDamping            = 20000.0

	bowFrictionMin = 0.01
	bowFrictionMax = 0.98
	peakRelease    = 0.95
)

// Bowed is a two-segment string driven by a stick-slip bow.
//
// The bow force shapes the slope of the friction curve; the bow velocity
// relative to the string velocity at the bridge selects the friction. The
// resulting force is added to the exciter input.
type Bowed struct {
	loop *loop
	lp   onepole.Lowpass
	hp   onepole.Highpass

	controls BowedControls
	peak     float64
}

// BowedControls adds the bow controls to Controls.
type BowedControls struct {
	Controls
	BowForce    []float64
	BowVelocity []float64
}

// BowedInputs describes the input ports of Bowed in index order.
func BowedInputs() []core.Port {
	return withExtra(
		core.Port{Name: "bow_force"},
		core.Port{Name: "bow_velocity"},
	)
}

// NewBowed returns a Bowed string with default capacities.
func NewBowed(opts ...Option) (*Bowed, error) {
	l, err := newLoop(2, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return &Bowed{loop: l}, nil
}

// Init reallocates the segments for sampleRate. Not real-time safe.
func (w *Bowed) Init(sampleRate float64, _ int) error {
	w.lp.Reset()
	w.hp.Reset()
	w.peak = 0

	return w.loop.init(sampleRate)
}

// Reset zeroes all signal state and clears a halt.
func (w *Bowed) Reset() {
	w.loop.reset()
	w.lp.Reset()
	w.hp.Reset()
	w.peak = 0
}

// Err returns the reason the voice halted, or nil.
func (w *Bowed) Err() error { return w.loop.err }

// ExciterPeak returns the exciter level seen by a peak follower that
// jumps to each new maximum and decays by 0.95 per frame. It is a meter
// for hosts and does not feed back into the sound.
func (w *Bowed) ExciterPeak() float64 { return w.peak }

// Process renders len(out) frames.
func (w *Bowed) Process(c BowedControls, out []float64, sampleRate float64) core.Status {
	w.controls = c
	status := w.loop.run(w, &w.controls.Controls, out, sampleRate)
	w.controls = BowedControls{}

	return status
}

// ProcessBlock implements core.Node using the In* port indices.
func (w *Bowed) ProcessBlock(b *core.Block) core.Status {
	return w.Process(BowedControls{
		Controls:    controlsFromBlock(b),
		BowForce:    b.Input(InBowForce),
		BowVelocity: b.Input(InBowVelocity),
	}, b.Output(OutSig), b.SampleRate)
}

func (w *Bowed) bow(n int) (force, velocity float64) {
	return valueAt(w.controls.BowForce, n, 0), valueAt(w.controls.BowVelocity, n, 0)
}

func (w *Bowed) clearState() {
	w.loop.clear()
	w.lp.Reset()
	w.hp.Reset()
}

func (w *Bowed) extrasFinite(n int) bool {
	force, velocity := w.bow(n)
	return core.IsFinite(force) && core.IsFinite(velocity)
}

func (w *Bowed) extrasChanged(int) bool { return false }

func (w *Bowed) updateLoss(f *frame, _ int, sampleRate float64) {
	w.lp.SetCutoff(core.Clamp(f.damping, 0, maxDamping), sampleRate)
	w.hp.SetCutoff(f.lfDamping, sampleRate)
	w.loop.filterDelayComp = -w.lp.TuningCompensation()
}

func (w *Bowed) updateTuning(f *frame, _ int, sampleRate float64) {
	freq := math.Max(f.freq, MinFrequency) * 2
	d0, d1 := segmentLengths(freq, f.position, sampleRate, f.delayComp+bowedLoopCompensation)
	w.loop.setLength(0, d0+w.loop.filterDelayComp-1)
	w.loop.setLength(1, d1)
}

func (w *Bowed) tick(f *frame, n int) (float64, bool) {
	l := w.loop

	if f.exciter > w.peak {
		w.peak = f.exciter
	} else {
		w.peak *= peakRelease
	}

	exciter := f.exciter

	force, velocity := w.bow(n)
	if velocity > 0 {
		v := velocity - l.last[0]*2
		exciter += v * bowFriction(v, 5-4*force)
	}

	// Bridge: inverted, loss filtered and soft clipped.
	seg := core.CubicSoftClip(w.lp.ProcessSample(-l.last[1] * f.feedback))

	out, ok := l.process(0, seg)
	if !ok {
		return 0, false
	}

	sig := out
	l.last[0] = w.hp.ProcessSample(out)

	out, ok = l.process(1, l.last[0]+exciter)
	if !ok {
		return 0, false
	}

	l.last[1] = out

	return sig, core.IsFinite(sig)
}

// bowFriction is the stick-slip curve: high friction near zero relative
// velocity, falling off with |slope*v|.
func bowFriction(v, slope float64) float64 {
	x := math.Abs(v*slope) + 0.75
	return core.Clamp(math.Pow(x, -4), bowFrictionMin, bowFrictionMax)
}
