package onepole

import "math"

// MinCutoff is the lowest cutoff the filters accept, in Hz.
const MinCutoff = 1.0

// pole returns the feedback coefficient for a cutoff in Hz.
func pole(freq, sampleRate float64) float64 {
	if freq < MinCutoff {
		freq = MinCutoff
	}

	return mathExp(-2 * math.Pi * freq / sampleRate)
}

// Lowpass is a one-pole lowpass: y = a0*x + b1*y[n-1].
type Lowpass struct {
	a0, b1 float64
	y1     float64

	cutoff     float64
	sampleRate float64
}

// NewLowpass returns a lowpass at freq Hz.
func NewLowpass(freq, sampleRate float64) *Lowpass {
	f := &Lowpass{}
	f.SetCutoff(freq, sampleRate)

	return f
}

// SetCutoff sets the -3 dB frequency. Cutoffs below MinCutoff are raised.
func (f *Lowpass) SetCutoff(freq, sampleRate float64) {
	f.cutoff = freq
	f.sampleRate = sampleRate
	f.b1 = pole(freq, sampleRate)
	f.a0 = 1 - f.b1
}

// SetCoefficient sets the input weight a0 directly; the feedback weight
// becomes 1-a0. The cutoff bookkeeping is cleared.
func (f *Lowpass) SetCoefficient(a0 float64) {
	f.a0 = a0
	f.b1 = 1 - a0
	f.cutoff = math.NaN()
}

// Cutoff returns the last cutoff set with SetCutoff.
func (f *Lowpass) Cutoff() float64 { return f.cutoff }

// TuningCompensation returns the filter's group delay at DC in frames.
// Subtracting it from a loop length keeps the loop in tune.
func (f *Lowpass) TuningCompensation() float64 {
	return f.b1 / (1 - f.b1)
}

// ProcessSample filters one sample.
func (f *Lowpass) ProcessSample(x float64) float64 {
	y := f.a0*x + f.b1*f.y1
	f.y1 = y

	return y
}

// ProcessBlock filters src into dst with a per-sample cutoff array.
// dst may alias src.
func (f *Lowpass) ProcessBlock(dst, src, cutoff []float64, sampleRate float64) {
	for i, x := range src {
		if cutoff[i] != f.cutoff || sampleRate != f.sampleRate {
			f.SetCutoff(cutoff[i], sampleRate)
		}

		dst[i] = f.ProcessSample(x)
	}
}

// Reset clears the filter history.
func (f *Lowpass) Reset() {
	f.y1 = 0
}

// Highpass is a one-pole, one-zero highpass:
// y = a0*(x - x[n-1]) + b1*y[n-1] with unity gain at Nyquist.
type Highpass struct {
	a0, b1 float64
	x1, y1 float64

	cutoff float64
}

// NewHighpass returns a highpass at freq Hz.
func NewHighpass(freq, sampleRate float64) *Highpass {
	f := &Highpass{}
	f.SetCutoff(freq, sampleRate)

	return f
}

// SetCutoff sets the corner frequency. Cutoffs below MinCutoff are raised.
func (f *Highpass) SetCutoff(freq, sampleRate float64) {
	f.cutoff = freq
	f.b1 = pole(freq, sampleRate)
	f.a0 = (1 + f.b1) / 2
}

// Cutoff returns the last cutoff set.
func (f *Highpass) Cutoff() float64 { return f.cutoff }

// ProcessSample filters one sample.
func (f *Highpass) ProcessSample(x float64) float64 {
	y := f.a0*(x-f.x1) + f.b1*f.y1
	f.x1 = x
	f.y1 = y

	return y
}

// Reset clears the filter history.
func (f *Highpass) Reset() {
	f.x1 = 0
	f.y1 = 0
}
