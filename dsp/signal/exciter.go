package signal

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/core"
)

// ErrInvalidSampleRate is returned by Init for non-positive rates.
var ErrInvalidSampleRate = errors.New("signal: sample rate must be > 0")

// HalfSine input ports.
const (
	HalfSineInFreq = iota
	HalfSineInAmp
	HalfSineInRestart
)

var halfSineInputs = []core.Port{
	HalfSineInFreq:    {Name: "freq", Default: 440},
	HalfSineInAmp:     {Name: "amp", Default: 1},
	HalfSineInRestart: {Name: "restart"},
}

var outputs = []core.Port{{Name: "sig"}}

// HalfSineInputs describes the HalfSine input ports in index order.
func HalfSineInputs() []core.Port { return halfSineInputs }

// Outputs describes the HalfSine output port.
func Outputs() []core.Port { return outputs }

// HalfSine plays one half cycle of a cosine, from +1 down to -1, each time
// its restart input rises. It is silent until the first restart.
type HalfSine struct {
	phase    float64
	finished bool
	restart  core.Trigger
}

// NewHalfSine returns a silent HalfSine.
func NewHalfSine() *HalfSine {
	return &HalfSine{finished: true}
}

// Init implements core.Node.
func (h *HalfSine) Init(sampleRate float64, _ int) error {
	return validateSampleRate(sampleRate)
}

// Restart starts a new burst on the next sample.
func (h *HalfSine) Restart() {
	h.phase = 0
	h.finished = false
}

// Reset silences the generator.
func (h *HalfSine) Reset() {
	h.phase = 0
	h.finished = true
	h.restart.Reset()
}

// Next returns the next sample of a burst at freq.
func (h *HalfSine) Next(freq, sampleRate float64) float64 {
	if h.finished {
		return 0
	}

	out := math.Cos(h.phase)

	h.phase += 2 * math.Pi * freq / sampleRate
	if h.phase >= math.Pi {
		h.finished = true
	}

	return out
}

// Process renders len(out) samples. Nil control arrays select the port
// defaults.
func (h *HalfSine) Process(freq, amp, restart, out []float64, sampleRate float64) core.Status {
	for n := range out {
		if h.restart.Fire(valueAt(restart, n, 0)) {
			h.Restart()
		}

		f := valueAt(freq, n, halfSineInputs[HalfSineInFreq].Default)
		out[n] = h.Next(f, sampleRate) * valueAt(amp, n, halfSineInputs[HalfSineInAmp].Default)
	}

	return core.StatusContinue
}

// ProcessBlock implements core.Node using the HalfSine port indices.
func (h *HalfSine) ProcessBlock(b *core.Block) core.Status {
	return h.Process(
		b.Input(HalfSineInFreq),
		b.Input(HalfSineInAmp),
		b.Input(HalfSineInRestart),
		b.Output(0),
		b.SampleRate,
	)
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, errors.New("normalize input must not be empty")
	}

	maxAbs := Peak(data)

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	return nil
}

func valueAt(s []float64, n int, def float64) float64 {
	if s == nil {
		return def
	}

	return s[n]
}

// Peak returns the largest absolute sample in data, or 0 for empty data.
func Peak(data []float64) float64 {
	var peak float64
	for _, v := range data {
		peak = math.Max(peak, math.Abs(v))
	}

	return peak
}
