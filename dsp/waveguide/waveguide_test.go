package waveguide

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/signal"
	"github.com/cwbudde/algo-waveguide/internal/testutil"
)

type voiceNode interface {
	core.Node
	Err() error
}

var (
	_ voiceNode = (*Basic)(nil)
	_ voiceNode = (*Bowed)(nil)
	_ voiceNode = (*Split)(nil)
	_ voiceNode = (*Bandpass)(nil)
)

type variant struct {
	name   string
	inputs []core.Port
	build  func(t *testing.T) voiceNode
}

func variants() []variant {
	return []variant{
		{name: "basic", inputs: BasicInputs(), build: func(t *testing.T) voiceNode {
			w, err := NewBasic()
			require.NoError(t, err)
			return w
		}},
		{name: "bowed", inputs: BowedInputs(), build: func(t *testing.T) voiceNode {
			w, err := NewBowed()
			require.NoError(t, err)
			return w
		}},
		{name: "split", inputs: SplitInputs(), build: func(t *testing.T) voiceNode {
			w, err := NewSplit()
			require.NoError(t, err)
			return w
		}},
		{name: "bandpass", inputs: BandpassInputs(), build: func(t *testing.T) voiceNode {
			w, err := NewBandpass()
			require.NoError(t, err)
			return w
		}},
	}
}

// newBlock returns a block with every input port unconnected except the
// ones in set.
func newBlock(sampleRate float64, ports []core.Port, n int, set map[int][]float64) *core.Block {
	b := &core.Block{
		SampleRate: sampleRate,
		Inputs:     make([][]float64, len(ports)),
		Outputs:    [][]float64{make([]float64, n)},
	}
	for i, s := range set {
		b.Inputs[i] = s
	}

	return b
}

func TestBasicImpulseScenario(t *testing.T) {
	const (
		sr     = 48000.0
		frames = 48000
	)

	w, err := NewBasic()
	require.NoError(t, err)
	require.NoError(t, w.Init(sr, 256))

	out := make([]float64, frames)
	status := w.Process(Controls{
		Exciter:   testutil.Impulse(frames, 0),
		Freq:      testutil.DC(440, frames),
		Position:  testutil.DC(0.5, frames),
		Feedback:  testutil.DC(0.99, frames),
		Damping:   testutil.DC(8000, frames),
		LFDamping: testutil.DC(6, frames),
	}, out, sr)

	require.Equal(t, core.StatusContinue, status)
	require.NoError(t, w.Err())
	testutil.RequireFinite(t, out)

	period := bestLag(out[2000:6000], 80, 140)
	assert.InDelta(t, sr/440, float64(period), 0.5, "fundamental period")

	window := 4 * int(math.Round(sr/440))
	prev := math.Inf(1)
	for start := window; start+window <= frames; start += window {
		peak := 0.0
		for _, v := range out[start : start+window] {
			peak = math.Max(peak, math.Abs(v))
		}

		require.LessOrEqualf(t, peak, prev*(1+1e-9), "envelope grew at frame %d", start)
		prev = peak
	}

	assert.Greater(t, signal.Peak(out[window:2*window]), 1e-3, "string should ring")
	assert.Less(t, signal.Peak(out[frames-window:]), signal.Peak(out[window:2*window]))
}

func TestStringsStayFinite(t *testing.T) {
	const (
		sr     = 48000.0
		block  = 512
		blocks = 40
	)

	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			w := v.build(t)
			require.NoError(t, w.Init(sr, block))

			noise := testutil.DeterministicNoise(7, 0.5, block*blocks)
			for k := range blocks {
				freq := 20 + float64(k%10)*400
				position := float64(k%5) / 4
				set := map[int][]float64{
					InExciter:   noise[k*block : (k+1)*block],
					InFreq:      testutil.DC(freq, block),
					InPosition:  testutil.DC(position, block),
					InFeedback:  testutil.DC(1, block),
					InStiffness: testutil.DC(0.4, block),
					InDamping:   testutil.DC(2000+float64(k)*400, block),
				}
				switch v.name {
				case "bowed":
					set[InBowForce] = testutil.DC(0.5, block)
					set[InBowVelocity] = testutil.DC(0.3, block)
				case "split":
					set[InStopAmount] = testutil.DC(float64(k%3)/2, block)
				case "bandpass":
					set[InBPFFreq] = testutil.DC(300+float64(k)*50, block)
					set[InBPFMix] = testutil.DC(0.5, block)
				}

				b := newBlock(sr, v.inputs, block, set)
				require.Equal(t, core.StatusContinue, w.ProcessBlock(b))
				testutil.RequireFinite(t, b.Outputs[0])
			}

			require.NoError(t, w.Err())
		})
	}
}

func TestResetTriggerSilencesNextSample(t *testing.T) {
	const (
		sr    = 48000.0
		block = 1024
	)

	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			w := v.build(t)
			require.NoError(t, w.Init(sr, block))

			b := newBlock(sr, v.inputs, block, map[int][]float64{
				InExciter: testutil.Impulse(block, 0),
				InFreq:    testutil.DC(220, block),
			})
			w.ProcessBlock(b)
			require.Greater(t, signal.Peak(b.Outputs[0][block/2:]), 0.0, "string should still ring")

			reset := make([]float64, block)
			reset[0] = 1
			b = newBlock(sr, v.inputs, block, map[int][]float64{
				InFreq:  testutil.DC(220, block),
				InReset: reset,
			})
			w.ProcessBlock(b)

			assert.Equal(t, 0.0, b.Outputs[0][0])
		})
	}
}

func TestResetTriggerIsEdgeDetected(t *testing.T) {
	w, err := NewBasic()
	require.NoError(t, err)
	require.NoError(t, w.Init(48000, 64))

	const n = 600
	exciter := testutil.Impulse(n, 0)
	reset := testutil.DC(1, n)
	out := make([]float64, n)

	w.Process(Controls{Exciter: exciter, Reset: reset}, out, 48000)

	// A held reset only fires on its first frame, so the impulse written
	// on that frame keeps ringing.
	assert.Greater(t, signal.Peak(out[200:]), 0.0)
}

func TestNonFiniteHaltsVoice(t *testing.T) {
	for _, v := range variants() {
		t.Run(v.name, func(t *testing.T) {
			const block = 64

			w := v.build(t)
			require.NoError(t, w.Init(48000, block))

			exciter := testutil.Impulse(block, 0)
			exciter[10] = math.NaN()

			b := newBlock(48000, v.inputs, block, map[int][]float64{InExciter: exciter})
			require.Equal(t, core.StatusFree, w.ProcessBlock(b))

			testutil.RequireSilent(t, b.Outputs[0][10:])

			for i, d := range voiceLoop(w).delays {
				assert.True(t, d.Clearing(), "segment %d cleared without rewriting its buffer", i)
			}

			var nfe *NonFiniteError
			require.ErrorAs(t, w.Err(), &nfe)
			assert.Equal(t, 10, nfe.Index)
			assert.True(t, errors.Is(w.Err(), ErrNonFinite))

			b = newBlock(48000, v.inputs, block, map[int][]float64{InExciter: testutil.Impulse(block, 0)})
			require.Equal(t, core.StatusFree, w.ProcessBlock(b), "halted voice stays halted")
			testutil.RequireSilent(t, b.Outputs[0])

			w.Reset()
			require.NoError(t, w.Err())
			b = newBlock(48000, v.inputs, block, map[int][]float64{InExciter: testutil.Impulse(block, 0)})
			require.Equal(t, core.StatusContinue, w.ProcessBlock(b))
			assert.Greater(t, signal.Peak(b.Outputs[0]), 0.0)
		})
	}
}

func TestInfiniteControlHalts(t *testing.T) {
	w, err := NewSplit()
	require.NoError(t, err)
	require.NoError(t, w.Init(48000, 16))

	stop := make([]float64, 16)
	stop[3] = math.Inf(1)
	out := make([]float64, 16)

	status := w.Process(SplitControls{StopAmount: stop}, out, 48000)
	require.Equal(t, core.StatusFree, status)
	require.ErrorIs(t, w.Err(), ErrNonFinite)
}

func TestInitRejectsInvalidSampleRate(t *testing.T) {
	w, err := NewBasic()
	require.NoError(t, err)

	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		require.ErrorIs(t, w.Init(sr, 64), ErrInvalidSampleRate)
	}
}

func TestInitCapacity(t *testing.T) {
	w, err := NewBasic(WithCapacityDivisor(10))
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultMaxDelay), w.loop.capacity())

	require.NoError(t, w.Init(48000, 64))
	assert.Equal(t, 4800.0, w.loop.capacity())

	small, err := NewBowed(WithMaxDelay(100))
	require.NoError(t, err)
	assert.Equal(t, 100.0, small.loop.capacity())
}

func TestLengthsClampToCapacity(t *testing.T) {
	w, err := NewBasic()
	require.NoError(t, err)
	require.NoError(t, w.Init(48000, 8))

	out := make([]float64, 8)
	require.NotPanics(t, func() {
		w.Process(Controls{
			Freq:              testutil.DC(1, 8),
			DelayCompensation: testutil.DC(1e6, 8),
		}, out, 48000)
	})

	for _, d := range w.loop.delays {
		assert.Equal(t, w.loop.capacity(), d.Target())
	}
}

func TestSegmentLengths(t *testing.T) {
	d0, d1 := segmentLengths(480, 0.25, 48000, 0)
	assert.InDelta(t, 25.0, d0, 1e-12)
	assert.InDelta(t, 75.0, d1, 1e-12)

	// A negative segment folds into the other one.
	d0, d1 = segmentLengths(480, 0, 48000, -1.5)
	assert.InDelta(t, 100-3.0, d0, 1e-12)
	assert.Equal(t, 0.0, d1)

	// Both negative: the total is floored at zero.
	d0, d1 = segmentLengths(48000, 0.5, 48000, -1.5)
	assert.Equal(t, 0.0, d0)
	assert.Equal(t, 0.0, d1)

	// Position is clamped to [0, 1].
	a0, a1 := segmentLengths(480, 2, 48000, 0)
	b0, b1 := segmentLengths(480, 1, 48000, 0)
	assert.Equal(t, b0, a0)
	assert.Equal(t, b1, a1)
}

func TestFrequencyFloor(t *testing.T) {
	w, err := NewBasic()
	require.NoError(t, err)
	require.NoError(t, w.Init(48000, 8))

	out := make([]float64, 8)
	w.Process(Controls{Freq: testutil.DC(-5, 8)}, out, 48000)
	neg := w.loop.delays[0].Target() + w.loop.delays[1].Target()

	w.Reset()
	w.Process(Controls{Freq: testutil.DC(MinFrequency, 8)}, out, 48000)
	floor := w.loop.delays[0].Target() + w.loop.delays[1].Target()

	assert.Equal(t, floor, neg)
}

func TestSplitStopChangesCompensation(t *testing.T) {
	w, err := NewSplit()
	require.NoError(t, err)
	require.NoError(t, w.Init(48000, 8))

	out := make([]float64, 8)
	w.Process(SplitControls{StopAmount: testutil.DC(0, 8)}, out, 48000)
	open := w.loop.filterDelayComp

	w.Process(SplitControls{StopAmount: testutil.DC(1, 8)}, out, 48000)
	stopped := w.loop.filterDelayComp

	assert.InDelta(t, open*2, stopped, 1e-12)

	// The stopped loop also carries the coupling frame on two segments.
	open0 := -splitLoopCompensation + open
	d0 := w.loop.delays[0].Target()
	w.Process(SplitControls{StopAmount: testutil.DC(0, 8)}, out, 48000)
	assert.InDelta(t, d0-(-2*splitLoopCompensation+stopped)+open0, w.loop.delays[0].Target(), 1e-9)
}

func TestBandpassRedesignsOnFrequencyChange(t *testing.T) {
	w, err := NewBandpass()
	require.NoError(t, err)
	require.NoError(t, w.Init(48000, 8))

	out := make([]float64, 8)
	w.Process(BandpassControls{}, out, 48000)
	assert.Equal(t, 500.0, w.bpfFreq)
	c500 := w.bpf.Coefficients

	w.Process(BandpassControls{BPFFreq: testutil.DC(1200, 8)}, out, 48000)
	assert.Equal(t, 1200.0, w.bpfFreq)
	assert.NotEqual(t, c500, w.bpf.Coefficients)
}

func TestBandpassMixZeroMatchesBasic(t *testing.T) {
	const n = 4096

	basic, err := NewBasic()
	require.NoError(t, err)
	require.NoError(t, basic.Init(48000, n))

	bp, err := NewBandpass()
	require.NoError(t, err)
	require.NoError(t, bp.Init(48000, n))

	exciter := testutil.Impulse(n, 0)
	want := make([]float64, n)
	got := make([]float64, n)

	basic.Process(Controls{Exciter: exciter}, want, 48000)
	bp.Process(BandpassControls{Controls: Controls{Exciter: exciter}}, got, 48000)

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestBowFriction(t *testing.T) {
	assert.Equal(t, bowFrictionMax, bowFriction(0, 5))
	assert.Equal(t, bowFrictionMin, bowFriction(10, 5))

	mid := bowFriction(0.1, 5)
	assert.InDelta(t, math.Pow(1.25, -4), mid, 1e-12)
}

func TestBowedSustainsWithBow(t *testing.T) {
	const n = 9600

	w, err := NewBowed()
	require.NoError(t, err)
	require.NoError(t, w.Init(48000, n))

	out := make([]float64, n)
	status := w.Process(BowedControls{
		Controls:    Controls{Freq: testutil.DC(220, n)},
		BowForce:    testutil.DC(0.6, n),
		BowVelocity: testutil.DC(0.4, n),
	}, out, 48000)

	require.Equal(t, core.StatusContinue, status)
	testutil.RequireFinite(t, out)
	assert.Greater(t, signal.Peak(out[n/2:]), 1e-3, "bowed string should keep sounding")
}

func TestBowedPeakFollower(t *testing.T) {
	w, err := NewBowed()
	require.NoError(t, err)
	require.NoError(t, w.Init(48000, 4))

	out := make([]float64, 2)
	w.Process(BowedControls{Controls: Controls{Exciter: []float64{1, 0}}}, out, 48000)
	assert.InDelta(t, 0.95, w.ExciterPeak(), 1e-12)
}

func TestBowedPeakDoesNotShapeOutput(t *testing.T) {
	const n = 256

	render := func(peak float64) []float64 {
		w, err := NewBowed()
		require.NoError(t, err)
		require.NoError(t, w.Init(48000, n))
		w.peak = peak

		out := make([]float64, n)
		w.Process(BowedControls{
			Controls:    Controls{Exciter: testutil.DeterministicNoise(5, 0.1, n)},
			BowForce:    testutil.DC(0.5, n),
			BowVelocity: testutil.DC(0.2, n),
		}, out, 48000)

		return out
	}

	assert.Equal(t, render(0), render(10))
}

func TestProcessBlockMatchesProcess(t *testing.T) {
	const n = 512

	a, err := NewSplit()
	require.NoError(t, err)
	require.NoError(t, a.Init(44100, n))

	b, err := NewSplit()
	require.NoError(t, err)
	require.NoError(t, b.Init(44100, n))

	exciter := testutil.DeterministicNoise(3, 0.2, n)
	stop := testutil.DC(0.3, n)

	want := make([]float64, n)
	a.Process(SplitControls{Controls: Controls{Exciter: exciter}, StopAmount: stop}, want, 44100)

	blk := newBlock(44100, SplitInputs(), n, map[int][]float64{
		InExciter:    exciter,
		InStopAmount: stop,
	})
	b.ProcessBlock(blk)

	assert.Equal(t, want, blk.Outputs[0])
}

func TestInputPorts(t *testing.T) {
	assert.Len(t, BasicInputs(), int(numStringInputs))
	assert.Equal(t, InBowVelocity, core.PortIndex(BowedInputs(), "bow_velocity"))
	assert.Equal(t, InStopAmount, core.PortIndex(SplitInputs(), "stop_amount"))
	assert.Equal(t, InBPFMix, core.PortIndex(BandpassInputs(), "bpf_mix"))
	assert.Equal(t, "sig", Outputs()[OutSig].Name)
}

func BenchmarkBasic(b *testing.B) {
	w, err := NewBasic()
	if err != nil {
		b.Fatal(err)
	}
	if err := w.Init(48000, 256); err != nil {
		b.Fatal(err)
	}

	c := Controls{Exciter: testutil.DeterministicNoise(1, 0.1, 256)}
	out := make([]float64, 256)

	b.ResetTimer()
	for range b.N {
		w.Process(c, out, 48000)
	}
}

func bestLag(x []float64, minLag, maxLag int) int {
	best, bestScore := minLag, math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		var score float64
		for i := 0; i+lag < len(x); i++ {
			score += x[i] * x[i+lag]
		}

		if score > bestScore {
			best, bestScore = lag, score
		}
	}

	return best
}

func voiceLoop(v voiceNode) *loop {
	switch w := v.(type) {
	case *Basic:
		return w.loop
	case *Bowed:
		return w.loop
	case *Split:
		return w.loop
	case *Bandpass:
		return w.loop
	}

	panic("unknown voice")
}
