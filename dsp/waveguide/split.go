package waveguide

import (
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/filter/onepole"
)

// splitLoopCompensation is subtracted from each segment of the open loop.
// The four segments share one frame of cross coupling; a fully stopped
// string splits into two-segment loops that each carry that frame, so the
// share doubles with stop_amount.
const splitLoopCompensation = 0.25

// Split is a four-segment string that can be stopped like a fretted
// string. Segments 0 and 2 are the reflecting ends; segments 1 and 3 blend
// the open path with the stopped path by stop_amount in [0, 1]. Each path
// carries its own loss filter.
type Split struct {
	loop *loop
	lp   [4]onepole.Lowpass
	hp   onepole.Highpass

	stop     []float64
	lastStop float64
}

// SplitControls adds the stop control to Controls.
type SplitControls struct {
	Controls
	StopAmount []float64
}

// SplitInputs describes the input ports of Split in index order.
func SplitInputs() []core.Port {
	return withExtra(core.Port{Name: "stop_amount"})
}

// NewSplit returns a Split string with default capacities.
func NewSplit(opts ...Option) (*Split, error) {
	l, err := newLoop(4, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return &Split{loop: l}, nil
}

// Init reallocates the segments for sampleRate. Not real-time safe.
func (w *Split) Init(sampleRate float64, _ int) error {
	w.resetFilters()
	return w.loop.init(sampleRate)
}

// Reset zeroes all signal state and clears a halt.
func (w *Split) Reset() {
	w.loop.reset()
	w.resetFilters()
}

// Err returns the reason the voice halted, or nil.
func (w *Split) Err() error { return w.loop.err }

// Process renders len(out) frames.
func (w *Split) Process(c SplitControls, out []float64, sampleRate float64) core.Status {
	w.stop = c.StopAmount
	status := w.loop.run(w, &c.Controls, out, sampleRate)
	w.stop = nil

	return status
}

// ProcessBlock implements core.Node using the In* port indices.
func (w *Split) ProcessBlock(b *core.Block) core.Status {
	return w.Process(SplitControls{
		Controls:   controlsFromBlock(b),
		StopAmount: b.Input(InStopAmount),
	}, b.Output(OutSig), b.SampleRate)
}

func (w *Split) stopAt(n int) float64 {
	return core.Clamp(valueAt(w.stop, n, 0), 0, 1)
}

func (w *Split) resetFilters() {
	for i := range w.lp {
		w.lp[i].Reset()
	}

	w.hp.Reset()
}

func (w *Split) clearState() {
	w.loop.clear()
	w.resetFilters()
}

func (w *Split) extrasFinite(n int) bool {
	return core.IsFinite(valueAt(w.stop, n, 0))
}

// The compensation depends on the stop amount, so a stop change counts as
// a loss change.
func (w *Split) extrasChanged(n int) bool {
	stop := w.stopAt(n)
	changed := stop != w.lastStop
	w.lastStop = stop

	return changed
}

func (w *Split) updateLoss(f *frame, n int, sampleRate float64) {
	damping := core.Clamp(f.damping, 0, maxDamping)
	for i := range w.lp {
		w.lp[i].SetCutoff(damping, sampleRate)
	}

	w.hp.SetCutoff(f.lfDamping, sampleRate)

	// Two loss filters sit in every loop: over four segments when open,
	// over two when stopped.
	w.loop.filterDelayComp = w.lp[0].TuningCompensation() * -0.5 * (1 + w.stopAt(n))
}

func (w *Split) updateTuning(f *frame, n int, sampleRate float64) {
	freq := math.Max(f.freq, MinFrequency) * 2
	offset := -splitLoopCompensation*(1+w.stopAt(n)) + f.delayComp + w.loop.filterDelayComp
	d0, d1 := segmentLengths(freq, f.position, sampleRate, offset)

	w.loop.setLength(0, d0)
	w.loop.setLength(1, d1)
	w.loop.setLength(2, d1)
	w.loop.setLength(3, d0)
}

func (w *Split) tick(f *frame, n int) (float64, bool) {
	l := w.loop
	stop := w.stopAt(n)

	var sig float64

	for i := range 4 {
		prev := (i + 3) % 4

		var seg float64
		if i%2 == 0 {
			seg = -w.lp[prev].ProcessSample(l.last[prev]) * f.feedback
		} else {
			stopped := 2
			if i == 3 {
				stopped = 0
			}

			open := l.last[prev] * (1 - stop)
			seg = open + w.lp[prev].ProcessSample(l.last[stopped])*stop + f.exciter
		}

		out, ok := l.process(i, core.CubicSoftClip(seg))
		if !ok {
			return 0, false
		}

		if i == 0 {
			sig += out
			out = w.hp.ProcessSample(out)
		}

		l.last[i] = out
	}

	return sig, core.IsFinite(sig)
}
