package waveguide

import (
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/filter/onepole"
)

// basicLoopCompensation is subtracted from each segment. Segment 0 reads
// the output segment 1 produced on the previous frame, so the loop carries
// one frame on top of the two segment lengths.
const basicLoopCompensation = 0.5

// Basic is a two-segment string with one shared loss filter.
type Basic struct {
	loop *loop
	lp   onepole.Lowpass
	hp   onepole.Highpass
}

// BasicInputs describes the input ports of Basic in index order.
func BasicInputs() []core.Port { return withExtra() }

// NewBasic returns a Basic string with default capacities.
func NewBasic(opts ...Option) (*Basic, error) {
	l, err := newLoop(2, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return &Basic{loop: l}, nil
}

// Init reallocates the segments for sampleRate. Not real-time safe.
func (w *Basic) Init(sampleRate float64, _ int) error {
	w.lp.Reset()
	w.hp.Reset()

	return w.loop.init(sampleRate)
}

// Reset zeroes all signal state and clears a halt.
func (w *Basic) Reset() {
	w.loop.reset()
	w.lp.Reset()
	w.hp.Reset()
}

// Err returns the reason the voice halted, or nil.
func (w *Basic) Err() error { return w.loop.err }

// Process renders len(out) frames.
func (w *Basic) Process(c Controls, out []float64, sampleRate float64) core.Status {
	return w.loop.run(w, &c, out, sampleRate)
}

// ProcessBlock implements core.Node using the In* port indices.
func (w *Basic) ProcessBlock(b *core.Block) core.Status {
	return w.Process(controlsFromBlock(b), b.Output(OutSig), b.SampleRate)
}

func (w *Basic) clearState() {
	w.loop.clear()
	w.lp.Reset()
	w.hp.Reset()
}

func (w *Basic) extrasFinite(int) bool  { return true }
func (w *Basic) extrasChanged(int) bool { return false }

func (w *Basic) updateLoss(f *frame, _ int, sampleRate float64) {
	w.lp.SetCutoff(f.damping, sampleRate)
	w.hp.SetCutoff(f.lfDamping, sampleRate)
	w.loop.filterDelayComp = w.lp.TuningCompensation() * -0.5
}

func (w *Basic) updateTuning(f *frame, _ int, sampleRate float64) {
	offset := -basicLoopCompensation + f.delayComp + w.loop.filterDelayComp
	d0, d1 := segmentLengths(math.Max(f.freq, MinFrequency), f.position, sampleRate, offset)
	w.loop.setLength(0, d0)
	w.loop.setLength(1, d1)
}

func (w *Basic) tick(f *frame, _ int) (float64, bool) {
	l := w.loop

	var sig float64

	for i := range 2 {
		out, ok := l.process(i, core.CubicSoftClip(l.last[1-i]))
		if !ok {
			return 0, false
		}

		inner := out + f.exciter
		if i == 0 {
			inner = w.hp.ProcessSample(w.lp.ProcessSample(inner))
		}

		l.last[i] = -inner * f.feedback
		sig += inner
	}

	return sig, core.IsFinite(sig)
}
