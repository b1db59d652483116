package reverb

import (
	"fmt"

	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/delay"
	"github.com/cwbudde/algo-waveguide/dsp/filter/onepole"
	"github.com/cwbudde/algo-waveguide/dsp/mix"
)

// Luff input and output ports.
const (
	LuffIn = iota
	LuffInLowpass
	LuffInDamping
)

// LuffOut is the single Luff output port.
const LuffOut = 0

var luffInputs = []core.Port{
	LuffIn:        {Name: "in"},
	LuffInLowpass: {Name: "lowpass", Default: 7000},
	LuffInDamping: {Name: "damping", Default: 4000},
}

var luffOutputs = []core.Port{LuffOut: {Name: "out"}}

// LuffInputs describes the Luff input ports in index order.
func LuffInputs() []core.Port { return luffInputs }

// LuffOutputs describes the Luff output ports in index order.
func LuffOutputs() []core.Port { return luffOutputs }

// LuffControls are per-sample cutoff arrays in Hz. A nil array selects the
// port default.
type LuffControls struct {
	Lowpass []float64
	Damping []float64
}

// diffuser delays each channel by a fixed random length, flips the
// polarity of half the channels and mixes them with a Hadamard transform.
type diffuser struct {
	delays   []*delay.Static
	polarity []float64
}

func newDiffuser(maxDelay, channels int, rng interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
},
) diffuser {
	d := diffuser{
		delays:   make([]*delay.Static, channels),
		polarity: make([]float64, channels),
	}

	for c := range d.polarity {
		if c < channels/2 {
			d.polarity[c] = -1
		} else {
			d.polarity[c] = 1
		}
	}

	rng.Shuffle(channels, func(i, j int) {
		d.polarity[i], d.polarity[j] = d.polarity[j], d.polarity[i]
	})

	span := maxDelay / channels
	for c := range d.delays {
		lo := span*c + 1
		hi := span * (c + 1)
		d.delays[c] = delay.MustNewStatic(lo + rng.Intn(hi-lo))
	}

	return d
}

func (d *diffuser) process(in, out [][]float64, n int, frame []float64) {
	for f := range n {
		for c, line := range d.delays {
			frame[c] = line.Read() * d.polarity[c]
			line.WriteAndAdvance(in[c][f])
		}

		mix.HadamardInPlace(frame)

		for c := range frame {
			out[c][f] = frame[c]
		}
	}
}

func (d *diffuser) reset() {
	for _, line := range d.delays {
		line.Reset()
	}
}

// tail is one long feedback delay per channel, mixed by a Householder
// reflection and damped by a one-pole lowpass per channel.
type tail struct {
	feedback float64
	delays   []*delay.Static
	damping  []onepole.Lowpass

	read  [][]float64
	write [][]float64
}

func newTail(length, channels int, feedback float64, rng interface{ Intn(n int) int }) tail {
	t := tail{
		feedback: feedback,
		delays:   make([]*delay.Static, channels),
		damping:  make([]onepole.Lowpass, channels),
	}

	lo := length / 10
	for c := range t.delays {
		t.delays[c] = delay.MustNewStatic(lo + rng.Intn(length-lo))
	}

	return t
}

func (t *tail) init(blockSize int) error {
	for c, line := range t.delays {
		if line.Length() < blockSize {
			return fmt.Errorf("%w: channel %d has %d frames, block is %d",
				ErrTailTooShort, c, line.Length(), blockSize)
		}
	}

	if len(t.read) != len(t.delays) {
		t.read = make([][]float64, len(t.delays))
		t.write = make([][]float64, len(t.delays))
	}

	for c := range t.delays {
		t.read[c] = core.EnsureLen(t.read[c], blockSize)
		t.write[c] = core.EnsureLen(t.write[c], blockSize)
	}

	return nil
}

// process writes the current tail output to out and feeds in back into the
// tail.
func (t *tail) process(in, out [][]float64, n int, damping []float64, sampleRate float64, frame []float64) {
	for c, line := range t.delays {
		line.ReadBlock(t.read[c][:n])
		copy(out[c][:n], t.read[c][:n])
	}

	for f := range n {
		for c := range frame {
			frame[c] = t.read[c][f]
		}

		mix.HouseholderInPlace(frame)

		for c := range frame {
			t.read[c][f] = frame[c] * t.feedback
		}
	}

	for c, line := range t.delays {
		w := t.write[c][:n]
		t.damping[c].ProcessBlock(w, t.read[c][:n], damping[:n], sampleRate)

		for f := range w {
			w[f] = core.FlushDenormals(w[f] + in[c][f])
		}

		line.WriteBlockAndAdvance(w)
	}
}

func (t *tail) reset() {
	for c, line := range t.delays {
		line.Reset()
		t.damping[c].Reset()
	}
}

// Luff is a mono reverb: an input lowpass feeds copies of the signal
// through a chain of diffusers, whose sum forms the early reflections and
// whose output drives a feedback tail. The output is
// (early + Σ tail) / (channels * diffusers).
type Luff struct {
	cfg       config
	diffusers []diffuser
	tail      tail
	inputLP   onepole.Lowpass

	// buffers is a double buffer; stages alternate by index.
	buffers [2][][]float64
	frame   []float64

	lowpass   []float64
	damping   []float64
	silence   []float64
	blockSize int
}

// NewLuff returns a Luff reverb. Delay lengths and polarities are drawn
// here and never change afterwards. Call Init before processing.
func NewLuff(opts ...Option) (*Luff, error) {
	cfg := applyOptions(opts)
	if err := cfg.validateLuff(); err != nil {
		return nil, err
	}

	rng := cfg.rng()
	r := &Luff{
		cfg:       cfg,
		diffusers: make([]diffuser, cfg.diffusers),
		frame:     make([]float64, cfg.channels),
	}

	for i := range r.diffusers {
		r.diffusers[i] = newDiffuser(cfg.tailDelay/(cfg.diffusers*2), cfg.channels, rng)
	}

	r.tail = newTail(cfg.tailDelay, cfg.channels, cfg.feedback, rng)

	return r, nil
}

// Init allocates the block buffers. It fails when a tail line is shorter
// than blockSize. Not real-time safe.
func (r *Luff) Init(sampleRate float64, blockSize int) error {
	if err := validateInit(sampleRate, blockSize); err != nil {
		return err
	}

	if err := r.tail.init(blockSize); err != nil {
		return err
	}

	for i := range r.buffers {
		if len(r.buffers[i]) != r.cfg.channels {
			r.buffers[i] = make([][]float64, r.cfg.channels)
		}

		for c := range r.buffers[i] {
			r.buffers[i][c] = core.EnsureLen(r.buffers[i][c], blockSize)
			core.Zero(r.buffers[i][c])
		}
	}

	r.lowpass = core.EnsureLen(r.lowpass, blockSize)
	r.damping = core.EnsureLen(r.damping, blockSize)
	r.silence = core.EnsureLen(r.silence, blockSize)
	core.Zero(r.silence)
	r.blockSize = blockSize

	return nil
}

// Reset zeroes all delays and filters.
func (r *Luff) Reset() {
	for i := range r.diffusers {
		r.diffusers[i].reset()
	}

	r.tail.reset()
	r.inputLP.Reset()
}

// Process renders len(out) frames from in; a nil in is silence. Calls
// longer than the Init block size are split into blocks. Before Init the
// output is silent.
func (r *Luff) Process(in []float64, c LuffControls, out []float64, sampleRate float64) core.Status {
	if r.blockSize == 0 {
		core.Zero(out)
		return core.StatusContinue
	}

	for start := 0; start < len(out); start += r.blockSize {
		end := min(start+r.blockSize, len(out))
		r.processBlock(
			controlSlice(in, start, end, r.silence, 0),
			controlSlice(c.Lowpass, start, end, r.lowpass, luffInputs[LuffInLowpass].Default),
			controlSlice(c.Damping, start, end, r.damping, luffInputs[LuffInDamping].Default),
			out[start:end],
			sampleRate,
		)
	}

	return core.StatusContinue
}

// ProcessBlock implements core.Node using the Luff port indices.
func (r *Luff) ProcessBlock(b *core.Block) core.Status {
	return r.Process(b.Input(LuffIn), LuffControls{
		Lowpass: b.Input(LuffInLowpass),
		Damping: b.Input(LuffInDamping),
	}, b.Output(LuffOut), b.SampleRate)
}

func (r *Luff) processBlock(in, lowpass, damping, out []float64, sampleRate float64) {
	n := len(out)

	r.inputLP.ProcessBlock(out, in, lowpass, sampleRate)

	cur := 0
	for _, ch := range r.buffers[cur] {
		copy(ch[:n], out)
	}

	for i := range r.diffusers {
		r.diffusers[i].process(r.buffers[cur], r.buffers[1-cur], n, r.frame)
		cur = 1 - cur
	}

	diffused := r.buffers[cur]
	for f := range n {
		var sum float64
		for _, ch := range diffused {
			sum += ch[f]
		}

		out[f] = sum * r.cfg.early
	}

	tailOut := r.buffers[1-cur]
	r.tail.process(diffused, tailOut, n, damping, sampleRate, r.frame)

	compensation := 1 / float64(r.cfg.channels*r.cfg.diffusers)
	for f := range n {
		var sum float64
		for _, ch := range tailOut {
			sum += ch[f]
		}

		out[f] = (out[f] + sum) * compensation
	}
}

// controlSlice returns s[start:end], or scratch filled with def when s is
// nil.
func controlSlice(s []float64, start, end int, scratch []float64, def float64) []float64 {
	if s != nil {
		return s[start:end]
	}

	scratch = scratch[:end-start]
	for i := range scratch {
		scratch[i] = def
	}

	return scratch
}
