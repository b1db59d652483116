package reverb

import (
	"math"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/delay"
	"github.com/cwbudde/algo-waveguide/dsp/filter/onepole"
	"github.com/cwbudde/algo-waveguide/dsp/mix"
)

const (
	galacticLines   = 12
	galacticStages  = 3
	galacticRefRate = 44100.0
	detuneDelay     = 256
	detuneDepth     = 127.0

	initialVibrato = 3.0
	initialOldFPD  = 429496.7295
)

// galacticDelayFrames are the line capacities at 44.1 kHz, four per stage.
var galacticDelayFrames = [galacticLines]float64{
	6480, 3660, 1720, 680,
	9700, 6000, 2320, 940,
	15220, 8460, 4540, 3200,
}

// Galactic input and output ports.
const (
	GalacticInLeft = iota
	GalacticInRight
	GalacticInSize
	GalacticInReplace
	GalacticInBrightness
	GalacticInDetune
	GalacticInMix
)

const (
	GalacticOutLeft = iota
	GalacticOutRight
)

var galacticInputs = []core.Port{
	GalacticInLeft:       {Name: "left"},
	GalacticInRight:      {Name: "right"},
	GalacticInSize:       {Name: "size", Default: 1},
	GalacticInReplace:    {Name: "replace", Default: 0.5},
	GalacticInBrightness: {Name: "brightness", Default: 0.5},
	GalacticInDetune:     {Name: "detune", Default: 0.5},
	GalacticInMix:        {Name: "mix", Default: 1},
}

var galacticOutputs = []core.Port{
	GalacticOutLeft:  {Name: "left"},
	GalacticOutRight: {Name: "right"},
}

// GalacticInputs describes the Galactic input ports in index order.
func GalacticInputs() []core.Port { return galacticInputs }

// GalacticOutputs describes the Galactic output ports in index order.
func GalacticOutputs() []core.Port { return galacticOutputs }

// GalacticControls are read once per block from the first element of each
// array. A nil array selects the port default.
type GalacticControls struct {
	Size       []float64
	Replace    []float64
	Brightness []float64
	Detune     []float64
	Mix        []float64
}

func (c *GalacticControls) first(s []float64, port int) float64 {
	if len(s) == 0 {
		return galacticInputs[port].Default
	}

	return s[0]
}

// Galactic is a stereo reverb of 12 delay lines per channel in three stages
// of four. Each stage feeds the next through y[i] = x[i] - Σ x[j≠i]; the
// last stage feeds back into the opposite channel's first stage.
type Galactic struct {
	lines  [2][galacticLines]*delay.Static
	detune [2]*delay.Static

	feedback [2][4]float64
	pre      [2]onepole.Lowpass
	post     [2]onepole.Lowpass

	dither     [2]fpDither
	seedDither [2]fpDither
	vibrato    float64
	oldFPD     float64
}

// NewGalactic returns a Galactic reverb with one-frame placeholder lines.
// Call Init before processing.
func NewGalactic(opts ...Option) (*Galactic, error) {
	cfg := applyOptions(opts)
	rng := cfg.rng()

	g := &Galactic{}
	for ch := range g.lines {
		for i := range g.lines[ch] {
			g.lines[ch][i] = delay.MustNewStatic(1)
		}

		g.detune[ch] = delay.MustNewStatic(1)
		g.seedDither[ch] = seedDither(rng)
	}

	g.resetState()

	return g, nil
}

// Init allocates the lines for sampleRate. Not real-time safe.
func (g *Galactic) Init(sampleRate float64, blockSize int) error {
	if err := validateInit(sampleRate, blockSize); err != nil {
		return err
	}

	for ch := range g.lines {
		for i, frames := range galacticDelayFrames {
			capacity := max(int(frames*sampleRate/galacticRefRate), 1)
			line, err := delay.NewStatic(capacity)
			if err != nil {
				return err
			}

			g.lines[ch][i] = line
		}

		g.detune[ch] = delay.MustNewStatic(detuneDelay)
	}

	g.resetState()

	return nil
}

// Reset zeroes all lines and filters and restores the initial dither and
// modulation state.
func (g *Galactic) Reset() {
	for ch := range g.lines {
		for _, line := range g.lines[ch] {
			line.Reset()
		}

		g.detune[ch].Reset()
	}

	g.resetState()
}

func (g *Galactic) resetState() {
	g.feedback = [2][4]float64{}
	for ch := range g.pre {
		g.pre[ch].Reset()
		g.post[ch].Reset()
	}

	g.dither = g.seedDither
	g.vibrato = initialVibrato
	g.oldFPD = initialOldFPD
}

// Process renders len(outL) frames. A nil right input processes left as
// mono on both channels.
func (g *Galactic) Process(left, right []float64, c GalacticControls, outL, outR []float64, sampleRate float64) core.Status {
	if right == nil {
		right = left
	}

	replace := c.first(c.Replace, GalacticInReplace)
	brightness := c.first(c.Brightness, GalacticInBrightness)
	detune := c.first(c.Detune, GalacticInDetune)
	wetMix := c.first(c.Mix, GalacticInMix)

	regen := 0.0625 + (1-replace)*0.0625
	attenuate := (1 - regen/0.125) * 1.333
	lowpass := math.Pow(1.00001-(1-brightness), 2) / math.Sqrt(sampleRate/galacticRefRate)
	drift := detune * detune * detune * 0.001
	size := c.first(c.Size, GalacticInSize)*0.9 + 0.1
	wet := 1 - math.Pow(1-wetMix, 3)

	for ch := range g.lines {
		for _, line := range g.lines[ch] {
			line.SetLengthFraction(size)
		}

		g.pre[ch].SetCoefficient(lowpass)
		g.post[ch].SetCoefficient(lowpass)
	}

	for n := range outL {
		in := [2]float64{
			g.dither[0].floor(sampleAt(left, n)),
			g.dither[1].floor(sampleAt(right, n)),
		}
		dry := in

		g.vibrato += g.oldFPD * drift
		if g.vibrato > 2*math.Pi {
			g.vibrato = 0
			g.oldFPD = 0.4294967295 + float64(g.dither[0].state)*0.0000000000618
		}

		phase := [2]float64{g.vibrato, g.vibrato + math.Pi/2}
		for ch := range in {
			d := g.detune[ch]
			d.WriteAndAdvance(in[ch] * attenuate)
			offset := (math.Sin(phase[ch]) + 1) * detuneDepth
			in[ch] = g.pre[ch].ProcessSample(d.ReadAtLinear(float64(d.Position()) + offset))
		}

		var (
			out  [2]float64
			next [2][4]float64
		)
		for ch := range in {
			out[ch] = g.network(ch, in[ch], regen, &next[ch])
		}

		g.feedback = next

		for ch := range out {
			y := g.post[ch].ProcessSample(out[ch])
			if wet < 1 {
				y = y*wet + dry[ch]*(1-wet)
			}

			out[ch] = g.dither[ch].apply(y)
		}

		outL[n] = out[0]
		if outR != nil {
			outR[n] = out[1]
		}
	}

	return core.StatusContinue
}

// ProcessBlock implements core.Node using the Galactic port indices.
func (g *Galactic) ProcessBlock(b *core.Block) core.Status {
	return g.Process(
		b.Input(GalacticInLeft),
		b.Input(GalacticInRight),
		GalacticControls{
			Size:       b.Input(GalacticInSize),
			Replace:    b.Input(GalacticInReplace),
			Brightness: b.Input(GalacticInBrightness),
			Detune:     b.Input(GalacticInDetune),
			Mix:        b.Input(GalacticInMix),
		},
		b.Output(GalacticOutLeft),
		b.Output(GalacticOutRight),
		b.SampleRate,
	)
}

// network runs the three stages of channel ch for one sample and returns
// the scaled stage-2 sum. The opposite channel's previous feedback enters
// stage 0; this channel's new feedback is written to feedback.
func (g *Galactic) network(ch int, x, regen float64, feedback *[4]float64) float64 {
	lines := &g.lines[ch]
	cross := &g.feedback[1-ch]

	var stage, mixed [4]float64
	for i := range stage {
		lines[i].WriteAndAdvance(cross[i]*regen + x)
		stage[i] = lines[i].Read()
	}

	for s := 1; s < galacticStages; s++ {
		mix.Subtract4(&mixed, &stage)

		for i := range stage {
			line := lines[s*4+i]
			line.WriteAndAdvance(mixed[i])
			stage[i] = line.Read()
		}
	}

	mix.Subtract4(feedback, &stage)

	return mix.Sum(stage[:]) * 0.125
}

func sampleAt(s []float64, n int) float64 {
	if s == nil {
		return 0
	}

	return s[n]
}
