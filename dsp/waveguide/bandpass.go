package waveguide

import (
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/filter/biquad"
	"github.com/cwbudde/algo-waveguide/dsp/filter/design"
	"github.com/cwbudde/algo-waveguide/dsp/filter/onepole"
)

// BandpassQ is the quality factor of the parallel band-pass.
const BandpassQ = 5.0

// Bandpass is a Basic string with a resonant band-pass filter mixed into
// segment 0 by bpf_mix. The band-pass is redesigned only when bpf_freq
// changes. DelayCompensation is ignored.
type Bandpass struct {
	loop *loop
	lp   onepole.Lowpass
	hp   onepole.Highpass
	bpf  biquad.Section

	freq, mix []float64

	bpfFreq       float64
	bpfSampleRate float64
}

// BandpassControls adds the band-pass controls to Controls.
type BandpassControls struct {
	Controls
	BPFFreq []float64
	BPFMix  []float64
}

var bandpassExtras = []core.Port{
	{Name: "bpf_freq", Default: 500},
	{Name: "bpf_mix"},
}

// BandpassInputs describes the input ports of Bandpass in index order.
func BandpassInputs() []core.Port { return withExtra(bandpassExtras...) }

// NewBandpass returns a Bandpass string with default capacities.
func NewBandpass(opts ...Option) (*Bandpass, error) {
	l, err := newLoop(2, applyOptions(opts))
	if err != nil {
		return nil, err
	}

	return &Bandpass{loop: l, bpfFreq: math.NaN()}, nil
}

// Init reallocates the segments for sampleRate. Not real-time safe.
func (w *Bandpass) Init(sampleRate float64, _ int) error {
	w.resetFilters()
	w.bpfFreq = math.NaN()

	return w.loop.init(sampleRate)
}

// Reset zeroes all signal state and clears a halt.
func (w *Bandpass) Reset() {
	w.loop.reset()
	w.resetFilters()
}

// Err returns the reason the voice halted, or nil.
func (w *Bandpass) Err() error { return w.loop.err }

// Process renders len(out) frames.
func (w *Bandpass) Process(c BandpassControls, out []float64, sampleRate float64) core.Status {
	w.freq, w.mix = c.BPFFreq, c.BPFMix
	c.DelayCompensation = nil
	status := w.loop.run(w, &c.Controls, out, sampleRate)
	w.freq, w.mix = nil, nil

	return status
}

// ProcessBlock implements core.Node using the In* port indices.
func (w *Bandpass) ProcessBlock(b *core.Block) core.Status {
	return w.Process(BandpassControls{
		Controls: controlsFromBlock(b),
		BPFFreq:  b.Input(InBPFFreq),
		BPFMix:   b.Input(InBPFMix),
	}, b.Output(OutSig), b.SampleRate)
}

func (w *Bandpass) extras(n int) (freq, mix float64) {
	return valueAt(w.freq, n, bandpassExtras[0].Default), valueAt(w.mix, n, bandpassExtras[1].Default)
}

func (w *Bandpass) resetFilters() {
	w.lp.Reset()
	w.hp.Reset()
	w.bpf.Reset()
}

func (w *Bandpass) clearState() {
	w.loop.clear()
	w.resetFilters()
}

func (w *Bandpass) extrasFinite(n int) bool {
	freq, mix := w.extras(n)
	return core.IsFinite(freq) && core.IsFinite(mix)
}

func (w *Bandpass) extrasChanged(int) bool { return false }

func (w *Bandpass) updateLoss(f *frame, _ int, sampleRate float64) {
	w.lp.SetCutoff(f.damping, sampleRate)
	w.hp.SetCutoff(f.lfDamping, sampleRate)
	w.loop.filterDelayComp = w.lp.TuningCompensation() * -0.5

	if sampleRate != w.bpfSampleRate {
		w.bpfSampleRate = sampleRate
		w.bpfFreq = math.NaN()
	}
}

func (w *Bandpass) updateTuning(f *frame, _ int, sampleRate float64) {
	offset := -basicLoopCompensation + w.loop.filterDelayComp
	d0, d1 := segmentLengths(math.Max(f.freq, MinFrequency), f.position, sampleRate, offset)
	w.loop.setLength(0, d0)
	w.loop.setLength(1, d1)
}

func (w *Bandpass) tick(f *frame, n int) (float64, bool) {
	l := w.loop

	freq, mix := w.extras(n)
	mix = core.Clamp(mix, 0, 1)

	if freq != w.bpfFreq {
		w.bpf.SetCoefficients(design.Bandpass(freq, BandpassQ, w.bpfSampleRate))
		w.bpfFreq = freq
	}

	var sig float64

	for i := range 2 {
		out, ok := l.process(i, core.CubicSoftClip(l.last[1-i]))
		if !ok {
			return 0, false
		}

		inner := out + f.exciter
		if i == 0 {
			inner = w.hp.ProcessSample(w.lp.ProcessSample(inner))
			inner = inner*(1-mix) + w.bpf.ProcessSample(inner)*mix
		}

		l.last[i] = -inner * f.feedback
		sig += inner
	}

	return sig, core.IsFinite(sig)
}
