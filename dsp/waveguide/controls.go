package waveguide

import "github.com/cwbudde/algo-waveguide/dsp/core"

// Input port indices shared by every string.
const (
	InExciter = iota
	InFreq
	InPosition
	InFeedback
	InStiffness
	InDamping
	InLFDamping
	InDelayCompensation
	InReset

	numStringInputs
)

// Variant specific input ports follow the shared ones.
const (
	InBowForce    = numStringInputs
	InBowVelocity = numStringInputs + 1

	InStopAmount = numStringInputs

	InBPFFreq = numStringInputs
	InBPFMix  = numStringInputs + 1
)

// OutSig is the single output port of every string.
const OutSig = 0

var stringInputs = []core.Port{
	InExciter:           {Name: "exciter"},
	InFreq:              {Name: "freq", Default: 440},
	InPosition:          {Name: "position", Default: 0.5},
	InFeedback:          {Name: "feedback", Default: 0.99},
	InStiffness:         {Name: "stiffness"},
	InDamping:           {Name: "damping", Default: 8000},
	InLFDamping:         {Name: "lf_damping", Default: 6},
	InDelayCompensation: {Name: "delay_compensation"},
	InReset:             {Name: "reset"},
}

var outputs = []core.Port{OutSig: {Name: "sig"}}

// Outputs describes the output ports of every string.
func Outputs() []core.Port { return outputs }

// Controls holds the per-sample control arrays shared by every string.
// A nil array selects the port default for the whole block; non-nil
// arrays must be at least as long as the output.
type Controls struct {
	Exciter           []float64
	Freq              []float64
	Position          []float64
	Feedback          []float64
	Stiffness         []float64
	Damping           []float64
	LFDamping         []float64
	DelayCompensation []float64
	Reset             []float64
}

// controlsFromBlock maps block inputs onto Controls by port index.
func controlsFromBlock(b *core.Block) Controls {
	return Controls{
		Exciter:           b.Input(InExciter),
		Freq:              b.Input(InFreq),
		Position:          b.Input(InPosition),
		Feedback:          b.Input(InFeedback),
		Stiffness:         b.Input(InStiffness),
		Damping:           b.Input(InDamping),
		LFDamping:         b.Input(InLFDamping),
		DelayCompensation: b.Input(InDelayCompensation),
		Reset:             b.Input(InReset),
	}
}

// frame is one sample worth of resolved controls.
type frame struct {
	exciter   float64
	freq      float64
	position  float64
	feedback  float64
	stiffness float64
	damping   float64
	lfDamping float64
	delayComp float64
	reset     float64
}

func (c *Controls) at(n int) frame {
	return frame{
		exciter:   valueAt(c.Exciter, n, stringInputs[InExciter].Default),
		freq:      valueAt(c.Freq, n, stringInputs[InFreq].Default),
		position:  valueAt(c.Position, n, stringInputs[InPosition].Default),
		feedback:  valueAt(c.Feedback, n, stringInputs[InFeedback].Default),
		stiffness: valueAt(c.Stiffness, n, stringInputs[InStiffness].Default),
		damping:   valueAt(c.Damping, n, stringInputs[InDamping].Default),
		lfDamping: valueAt(c.LFDamping, n, stringInputs[InLFDamping].Default),
		delayComp: valueAt(c.DelayCompensation, n, stringInputs[InDelayCompensation].Default),
		reset:     valueAt(c.Reset, n, stringInputs[InReset].Default),
	}
}

func (f *frame) finite() bool {
	return core.IsFinite(f.exciter) && core.IsFinite(f.freq) &&
		core.IsFinite(f.position) && core.IsFinite(f.feedback) &&
		core.IsFinite(f.stiffness) && core.IsFinite(f.damping) &&
		core.IsFinite(f.lfDamping) && core.IsFinite(f.delayComp)
}

func valueAt(s []float64, n int, def float64) float64 {
	if s == nil {
		return def
	}

	return s[n]
}

func withExtra(extra ...core.Port) []core.Port {
	ports := make([]core.Port, 0, len(stringInputs)+len(extra))
	ports = append(ports, stringInputs...)

	return append(ports, extra...)
}
