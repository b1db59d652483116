package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-waveguide/dsp/filter/biquad"
)

func TestBandpassPeakGainEqualsQ(t *testing.T) {
	const sr = 48000.0

	for _, tc := range []struct {
		freq float64
		q    float64
	}{
		{freq: 500, q: 5},
		{freq: 2000, q: 1},
		{freq: 8000, q: 0.7},
	} {
		c := Bandpass(tc.freq, tc.q, sr)

		peak := math.Sqrt(c.MagnitudeSquared(tc.freq, sr))
		if math.Abs(peak-tc.q) > 1e-9 {
			t.Fatalf("f=%v q=%v: peak gain %v, want %v", tc.freq, tc.q, peak, tc.q)
		}

		if dc := c.MagnitudeSquared(1e-3, sr); dc > 1e-9 {
			t.Fatalf("f=%v: DC leakage %v", tc.freq, dc)
		}
	}
}

func TestBandpassInvalidInputs(t *testing.T) {
	zero := biquad.Coefficients{}

	for _, tc := range []struct {
		name string
		freq float64
		sr   float64
	}{
		{name: "zero freq", freq: 0, sr: 48000},
		{name: "above nyquist", freq: 30000, sr: 48000},
		{name: "NaN freq", freq: math.NaN(), sr: 48000},
		{name: "zero sample rate", freq: 1000, sr: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if c := Bandpass(tc.freq, 5, tc.sr); c != zero {
				t.Fatalf("got %+v, want zero coefficients", c)
			}
		})
	}
}

func TestBandpassDefaultQ(t *testing.T) {
	a := Bandpass(1000, 0, 48000)
	b := Bandpass(1000, defaultQ, 48000)

	if a != b {
		t.Fatalf("q=0 did not fall back to default: %+v vs %+v", a, b)
	}
}
