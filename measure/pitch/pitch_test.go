package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-waveguide/dsp/waveguide"
	"github.com/cwbudde/algo-waveguide/dsp/window"
	"github.com/cwbudde/algo-waveguide/internal/testutil"
)

func TestEstimateSine(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		opts []Option
	}{
		{"440 blackman-harris", 440, nil},
		{"1000 hann", 1000, []Option{WithWindow(window.TypeHann)}},
		{"97.3 padded", 97.3, []Option{WithPadding(8)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := testutil.DeterministicSine(tt.freq, 48000, 0.8, 8192)

			res, err := Estimate(sig, 48000, tt.opts...)
			require.NoError(t, err)
			assert.InDelta(t, tt.freq, res.Frequency, 0.5)
			assert.Less(t, math.Abs(res.Cents(tt.freq)), 3.0)
			assert.Positive(t, res.Power)
		})
	}
}

func TestEstimatePrefersFundamental(t *testing.T) {
	fund := testutil.DeterministicSine(220, 48000, 0.4, 8192)
	second := testutil.DeterministicSine(440, 48000, 1, 8192)

	sig := make([]float64, len(fund))
	for i := range sig {
		sig[i] = fund[i] + second[i]
	}

	res, err := Estimate(sig, 48000)
	require.NoError(t, err)
	assert.InDelta(t, 220, res.Frequency, 0.5)
}

func TestEstimateRange(t *testing.T) {
	low := testutil.DeterministicSine(200, 48000, 1, 8192)
	high := testutil.DeterministicSine(1000, 48000, 0.5, 8192)

	sig := make([]float64, len(low))
	for i := range sig {
		sig[i] = low[i] + high[i]
	}

	res, err := Estimate(sig, 48000, WithRange(500, 2000))
	require.NoError(t, err)
	assert.InDelta(t, 1000, res.Frequency, 0.5)
}

func TestStringTuning(t *testing.T) {
	const (
		sr     = 48000.0
		frames = 16384
	)

	render := map[string]func(c waveguide.Controls, out []float64) error{
		"basic": func(c waveguide.Controls, out []float64) error {
			w, err := waveguide.NewBasic()
			if err != nil {
				return err
			}
			if err := w.Init(sr, frames); err != nil {
				return err
			}
			w.Process(c, out, sr)
			return w.Err()
		},
		"split": func(c waveguide.Controls, out []float64) error {
			w, err := waveguide.NewSplit()
			if err != nil {
				return err
			}
			if err := w.Init(sr, frames); err != nil {
				return err
			}
			w.Process(waveguide.SplitControls{Controls: c}, out, sr)
			return w.Err()
		},
	}

	for _, name := range []string{"basic", "split"} {
		for _, freq := range []float64{440, 880, 1760} {
			out := make([]float64, frames)
			err := render[name](waveguide.Controls{
				Exciter: testutil.Impulse(frames, 0),
				Freq:    testutil.DC(freq, frames),
			}, out)
			require.NoError(t, err)

			res, err := Estimate(out, sr, WithRange(freq/2, freq*1.5))
			require.NoError(t, err)
			assert.Less(t, math.Abs(res.Cents(freq)), 10.0,
				"%s at %v Hz: got %.2f Hz", name, freq, res.Frequency)
		}
	}
}

func TestEstimatorReuse(t *testing.T) {
	e, err := NewEstimator(4096, 44100)
	require.NoError(t, err)

	for _, f := range []float64{330, 550, 123} {
		res, err := e.Estimate(testutil.DeterministicSine(f, 44100, 1, 4096))
		require.NoError(t, err)
		assert.InDelta(t, f, res.Frequency, 1)
		assert.Equal(t, 16384, res.FFTSize)
	}

	_, err = e.Estimate(make([]float64, 100))
	require.Error(t, err)
}

func TestEstimateErrors(t *testing.T) {
	_, err := Estimate([]float64{1, 2}, 48000)
	require.ErrorIs(t, err, ErrEmptySignal)

	_, err = Estimate(make([]float64, 64), 0)
	require.ErrorIs(t, err, ErrInvalidSampleRate)

	_, err = Estimate(make([]float64, 1024), 48000)
	require.ErrorIs(t, err, ErrNoPeak)
}

func TestCents(t *testing.T) {
	assert.InDelta(t, 1200, Cents(880, 440), 1e-9)
	assert.InDelta(t, -100, Cents(440*math.Pow(2, -1.0/12), 440), 1e-9)
	assert.True(t, math.IsNaN(Cents(0, 440)))
	assert.True(t, math.IsNaN(Cents(440, -1)))
}

func BenchmarkEstimate(b *testing.B) {
	sig := testutil.DeterministicSine(440, 48000, 1, 8192)

	e, err := NewEstimator(len(sig), 48000)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := e.Estimate(sig); err != nil {
			b.Fatal(err)
		}
	}
}
