package reverb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/signal"
	"github.com/cwbudde/algo-waveguide/internal/testutil"
)

func newTestGalactic(t *testing.T, seed int64) *Galactic {
	t.Helper()

	g, err := NewGalactic(WithSeed(seed))
	require.NoError(t, err)
	require.NoError(t, g.Init(48000, 512))

	return g
}

func TestGalacticMixZeroIsDry(t *testing.T) {
	const n = 4096

	g := newTestGalactic(t, 1)
	in := testutil.DeterministicNoise(5, 0.5, n)
	outL := make([]float64, n)
	outR := make([]float64, n)

	status := g.Process(in, nil, GalacticControls{Mix: []float64{0}}, outL, outR, 48000)
	require.Equal(t, core.StatusContinue, status)

	for i := range in {
		require.InDelta(t, in[i], outL[i], 1e-6, "left frame %d", i)
		require.InDelta(t, in[i], outR[i], 1e-6, "right frame %d", i)
	}
}

func TestGalacticMixOneHasNoDry(t *testing.T) {
	const n = 48000

	g := newTestGalactic(t, 1)
	in := testutil.Impulse(n, 0)
	outL := make([]float64, n)
	outR := make([]float64, n)

	g.Process(in, in, GalacticControls{Mix: []float64{1}}, outL, outR, 48000)

	for i := range 64 {
		require.Less(t, math.Abs(outL[i]), 1e-6, "dry leaked at frame %d", i)
	}

	testutil.RequireFinite(t, outL)
	testutil.RequireFinite(t, outR)
	assert.Greater(t, signal.Peak(outL[1000:]), 1e-4, "expected a reverb tail")
	assert.Greater(t, signal.Peak(outR[1000:]), 1e-4, "expected a reverb tail")
}

func TestGalacticStaysFinite(t *testing.T) {
	const block = 512

	g := newTestGalactic(t, 2)
	outL := make([]float64, block)
	outR := make([]float64, block)

	for k := range 60 {
		in := testutil.DeterministicNoise(int64(k), 0.8, block)
		c := GalacticControls{
			Size:       []float64{float64(k%5) / 4},
			Replace:    []float64{0.1 + float64(k%3)*0.4},
			Brightness: []float64{float64(k%4) / 3},
			Detune:     []float64{float64(k%6) / 5},
			Mix:        []float64{float64(k%2) * 0.7},
		}

		require.Equal(t, core.StatusContinue, g.Process(in, nil, c, outL, outR, 48000))
		testutil.RequireFinite(t, outL)
		testutil.RequireFinite(t, outR)
	}
}

func TestGalacticSeedDeterminism(t *testing.T) {
	const n = 2048

	in := testutil.DeterministicNoise(9, 0.3, n)
	render := func(seed int64) []float64 {
		g := newTestGalactic(t, seed)
		out := make([]float64, n)
		g.Process(in, nil, GalacticControls{}, out, nil, 48000)

		return out
	}

	a := render(42)
	b := render(42)
	c := render(43)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGalacticResetRestoresInitialState(t *testing.T) {
	const n = 1024

	used := newTestGalactic(t, 7)
	scratch := make([]float64, n)
	used.Process(testutil.DeterministicNoise(1, 0.5, n), nil, GalacticControls{}, scratch, nil, 48000)
	used.Reset()

	fresh := newTestGalactic(t, 7)

	in := testutil.Impulse(n, 3)
	got := make([]float64, n)
	want := make([]float64, n)
	used.Process(in, nil, GalacticControls{}, got, nil, 48000)
	fresh.Process(in, nil, GalacticControls{}, want, nil, 48000)

	assert.Equal(t, want, got)
}

func TestGalacticProcessBlock(t *testing.T) {
	const n = 256

	a := newTestGalactic(t, 3)
	b := newTestGalactic(t, 3)

	in := testutil.DeterministicNoise(4, 0.4, n)
	mixCtl := testutil.DC(0.5, n)

	wantL := make([]float64, n)
	wantR := make([]float64, n)
	a.Process(in, in, GalacticControls{Mix: mixCtl}, wantL, wantR, 48000)

	blk := &core.Block{
		SampleRate: 48000,
		Inputs:     make([][]float64, len(GalacticInputs())),
		Outputs:    [][]float64{make([]float64, n), make([]float64, n)},
	}
	blk.Inputs[GalacticInLeft] = in
	blk.Inputs[GalacticInRight] = in
	blk.Inputs[GalacticInMix] = mixCtl

	require.Equal(t, core.StatusContinue, b.ProcessBlock(blk))
	assert.Equal(t, wantL, blk.Outputs[GalacticOutLeft])
	assert.Equal(t, wantR, blk.Outputs[GalacticOutRight])
}

func TestGalacticInitErrors(t *testing.T) {
	g, err := NewGalactic()
	require.NoError(t, err)

	require.ErrorIs(t, g.Init(0, 64), ErrInvalidSampleRate)
	require.ErrorIs(t, g.Init(48000, 0), ErrInvalidBlockSize)
}

func TestGalacticLineCapacityScalesWithRate(t *testing.T) {
	g, err := NewGalactic(WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, 1, g.lines[0][0].Cap(), "placeholder before Init")

	require.NoError(t, g.Init(88200, 64))
	assert.Equal(t, 12960, g.lines[0][0].Cap())
	assert.Equal(t, 6400, g.lines[1][11].Cap())
	assert.Equal(t, detuneDelay, g.detune[0].Cap())
}
