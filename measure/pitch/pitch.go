package pitch

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/window"
)

const (
	defaultPadding   = 4
	defaultLowerHz   = 20.0
	subharmonicLevel = 1e-2
	maxSubharmonic   = 4
)

var (
	// ErrEmptySignal is returned for signals shorter than four frames.
	ErrEmptySignal = errors.New("pitch: signal too short")
	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("pitch: sample rate must be > 0")
	// ErrNoPeak is returned when the search range holds no energy.
	ErrNoPeak = errors.New("pitch: no spectral peak in range")
)

// Result is one fundamental estimate.
type Result struct {
	// Frequency is the interpolated fundamental in Hz.
	Frequency float64
	// Bin is the interpolated peak position in FFT bins.
	Bin float64
	// Power is the power of the peak bin.
	Power float64
	// FFTSize is the transform length used.
	FFTSize int
}

// Cents returns the deviation of r from target in cents.
func (r Result) Cents(target float64) float64 {
	return Cents(r.Frequency, target)
}

// Cents returns 1200*log2(measured/target). It is NaN unless both are
// positive.
func Cents(measured, target float64) float64 {
	return core.FrequencyToCents(measured, target)
}

// Option configures an Estimator.
type Option func(*config)

type config struct {
	window  window.Type
	padding int
	lowerHz float64
	upperHz float64
}

// WithWindow selects the analysis window. The default is Blackman-Harris.
func WithWindow(t window.Type) Option {
	return func(c *config) { c.window = t }
}

// WithPadding sets the zero-padding factor. Values below 1 are ignored.
func WithPadding(factor int) Option {
	return func(c *config) {
		if factor >= 1 {
			c.padding = factor
		}
	}
}

// WithRange limits the search to [lowerHz, upperHz]. A non-positive upper
// bound searches up to Nyquist.
func WithRange(lowerHz, upperHz float64) Option {
	return func(c *config) {
		c.lowerHz = lowerHz
		c.upperHz = upperHz
	}
}

// Estimator holds the FFT plan and buffers for one signal length.
type Estimator struct {
	cfg        config
	sampleRate float64
	length     int

	plan   *algofft.Plan[complex128]
	coeffs []float64
	in     []complex128
	out    []complex128
	re     []float64
	im     []float64
	power  []float64
}

// NewEstimator prepares an estimator for signals of length frames.
func NewEstimator(length int, sampleRate float64, opts ...Option) (*Estimator, error) {
	if length < 4 {
		return nil, fmt.Errorf("%w: %d frames", ErrEmptySignal, length)
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	cfg := config{
		window:  window.TypeBlackmanHarris4Term,
		padding: defaultPadding,
		lowerHz: defaultLowerHz,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	size := nextPowerOfTwo(length * cfg.padding)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("pitch: fft plan: %w", err)
	}

	bins := size/2 + 1

	return &Estimator{
		cfg:        cfg,
		sampleRate: sampleRate,
		length:     length,
		plan:       plan,
		coeffs:     window.Generate(cfg.window, length),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		power:      make([]float64, bins),
	}, nil
}

// Estimate returns the fundamental of signal, which must have the length
// the estimator was built for.
func (e *Estimator) Estimate(signal []float64) (Result, error) {
	if len(signal) != e.length {
		return Result{}, fmt.Errorf("pitch: signal has %d frames, estimator expects %d", len(signal), e.length)
	}

	for i := range e.in {
		e.in[i] = 0
	}

	for i, x := range signal {
		e.in[i] = complex(x*e.coeffs[i], 0)
	}

	if err := e.plan.Forward(e.out, e.in); err != nil {
		return Result{}, fmt.Errorf("pitch: fft: %w", err)
	}

	for k := range e.re {
		e.re[k] = real(e.out[k])
		e.im[k] = imag(e.out[k])
	}

	vecmath.Power(e.power, e.re, e.im)

	size := len(e.in)
	binHz := e.sampleRate / float64(size)
	maxBin := len(e.power) - 2

	lower := max(int(math.Ceil(e.cfg.lowerHz/binHz)), 1)

	upper := maxBin
	if e.cfg.upperHz > 0 {
		upper = min(int(math.Floor(e.cfg.upperHz/binHz)), maxBin)
	}

	peak := strongestBin(e.power, lower, upper)
	if peak < 0 {
		return Result{}, ErrNoPeak
	}

	peak = e.fundamentalBin(peak, lower)
	bin := float64(peak) + parabolicOffset(e.power, peak)

	return Result{
		Frequency: bin * binHz,
		Bin:       bin,
		Power:     e.power[peak],
		FFTSize:   size,
	}, nil
}

// Estimate is a one-shot estimate of the fundamental of signal.
func Estimate(signal []float64, sampleRate float64, opts ...Option) (Result, error) {
	e, err := NewEstimator(len(signal), sampleRate, opts...)
	if err != nil {
		return Result{}, err
	}

	return e.Estimate(signal)
}

// fundamentalBin returns the lowest subharmonic of peak that is itself a
// local maximum within 20 dB of the peak.
func (e *Estimator) fundamentalBin(peak, lower int) int {
	threshold := e.power[peak] * subharmonicLevel
	best := peak

	for d := 2; d <= maxSubharmonic; d++ {
		center := int(math.Round(float64(peak) / float64(d)))
		lo := max(center-2, lower)
		hi := center + 2

		if hi < lo {
			continue
		}

		k := strongestBin(e.power, lo, hi)
		if k < 0 || e.power[k] < threshold {
			continue
		}

		if e.power[k] >= e.power[k-1] && e.power[k] >= e.power[k+1] {
			best = k
		}
	}

	return best
}

func strongestBin(power []float64, lo, hi int) int {
	best := -1
	bestPower := 0.0

	for k := lo; k <= hi; k++ {
		if power[k] > bestPower {
			best = k
			bestPower = power[k]
		}
	}

	return best
}

// parabolicOffset fits a parabola through the log power of k and its
// neighbours and returns the vertex offset in [-0.5, 0.5].
func parabolicOffset(power []float64, k int) float64 {
	if k <= 0 || k >= len(power)-1 {
		return 0
	}

	const floor = 1e-300

	a := math.Log(power[k-1] + floor)
	b := math.Log(power[k] + floor)
	c := math.Log(power[k+1] + floor)

	den := a - 2*b + c
	if den == 0 {
		return 0
	}

	return math.Max(-0.5, math.Min(0.5, 0.5*(a-c)/den))
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
