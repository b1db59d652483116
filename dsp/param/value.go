package param

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-waveguide/dsp/core"
)

// Port indices of the Value and Probe nodes.
const (
	OutValue = 0
	InProbe  = 0
)

// ValueOutputs describes the single output port of a Value node.
func ValueOutputs() []core.Port { return []core.Port{OutValue: {Name: "value"}} }

// ProbeInputs describes the single input port of a Probe node.
func ProbeInputs() []core.Port { return []core.Port{InProbe: {Name: "sig"}} }

// Value is a float64 control published atomically. The zero value holds 0.
type Value struct {
	bits atomic.Uint64
}

// NewValue returns a Value holding initial.
func NewValue(initial float64) *Value {
	v := &Value{}
	v.Store(initial)

	return v
}

// Store publishes x. Safe to call from any goroutine.
func (v *Value) Store(x float64) {
	v.bits.Store(math.Float64bits(x))
}

// Load returns the last published value.
func (v *Value) Load() float64 {
	return math.Float64frombits(v.bits.Load())
}

// Fill writes the current value to every element of dst and returns it.
// The value is loaded once so the whole block sees the same control.
func (v *Value) Fill(dst []float64) float64 {
	x := v.Load()
	core.Fill(dst, x)

	return x
}

// Init implements core.Node.
func (v *Value) Init(float64, int) error { return nil }

// Reset implements core.Node. The published value is kept.
func (v *Value) Reset() {}

// ProcessBlock fills output 0 with the current value.
func (v *Value) ProcessBlock(b *core.Block) core.Status {
	v.Fill(b.Output(OutValue))
	return core.StatusContinue
}

// Probe exposes one sample per block of an audio-rate signal to a reader on
// another goroutine.
type Probe struct {
	bits atomic.Uint64
}

// Capture publishes the first sample of block. An empty block leaves the
// previous value in place.
func (p *Probe) Capture(block []float64) {
	if len(block) == 0 {
		return
	}

	p.bits.Store(math.Float64bits(block[0]))
}

// Load returns the last captured sample.
func (p *Probe) Load() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Init implements core.Node.
func (p *Probe) Init(float64, int) error { return nil }

// Reset zeroes the captured sample.
func (p *Probe) Reset() { p.bits.Store(0) }

// ProcessBlock captures input 0.
func (p *Probe) ProcessBlock(b *core.Block) core.Status {
	p.Capture(b.Input(InProbe))
	return core.StatusContinue
}
