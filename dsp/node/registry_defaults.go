package node

import (
	"github.com/cwbudde/algo-waveguide/dsp/core"
	"github.com/cwbudde/algo-waveguide/dsp/effects/reverb"
	"github.com/cwbudde/algo-waveguide/dsp/param"
	"github.com/cwbudde/algo-waveguide/dsp/signal"
	"github.com/cwbudde/algo-waveguide/dsp/waveguide"
)

// Type names registered by DefaultRegistry.
const (
	TypeBasic    = "basic"
	TypeBowed    = "bowed"
	TypeSplit    = "split"
	TypeBandpass = "bandpass"
	TypeGalactic = "galactic"
	TypeLuff     = "luff"
	TypeHalfSine = "half_sine"
	TypeParam    = "param"
	TypeProbe    = "probe"
)

// DefaultRegistry returns a Registry pre-populated with every string,
// reverb and exciter in this module.
//
// Strings read "max_delay" and "capacity_divisor" from Params. Reverbs read
// "seed"; Luff also reads "tail_delay", "feedback", "early", "channels" and
// "diffusers". A param node starts at "value". Param nodes are sources and
// probes are sinks: hosts reach their values through *param.Value and
// *param.Probe.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(TypeBasic, Entry{
		Factory: func(ctx Context) (core.Node, error) {
			return build(waveguide.NewBasic(stringOptions(ctx.Params)...))
		},
		Inputs:  waveguide.BasicInputs(),
		Outputs: waveguide.Outputs(),
	})
	r.MustRegister(TypeBowed, Entry{
		Factory: func(ctx Context) (core.Node, error) {
			return build(waveguide.NewBowed(stringOptions(ctx.Params)...))
		},
		Inputs:  waveguide.BowedInputs(),
		Outputs: waveguide.Outputs(),
	})
	r.MustRegister(TypeSplit, Entry{
		Factory: func(ctx Context) (core.Node, error) {
			return build(waveguide.NewSplit(stringOptions(ctx.Params)...))
		},
		Inputs:  waveguide.SplitInputs(),
		Outputs: waveguide.Outputs(),
	})
	r.MustRegister(TypeBandpass, Entry{
		Factory: func(ctx Context) (core.Node, error) {
			return build(waveguide.NewBandpass(stringOptions(ctx.Params)...))
		},
		Inputs:  waveguide.BandpassInputs(),
		Outputs: waveguide.Outputs(),
	})
	r.MustRegister(TypeGalactic, Entry{
		Factory: func(ctx Context) (core.Node, error) {
			return build(reverb.NewGalactic(reverbOptions(ctx.Params)...))
		},
		Inputs:  reverb.GalacticInputs(),
		Outputs: reverb.GalacticOutputs(),
	})
	r.MustRegister(TypeLuff, Entry{
		Factory: func(ctx Context) (core.Node, error) {
			return build(reverb.NewLuff(reverbOptions(ctx.Params)...))
		},
		Inputs:  reverb.LuffInputs(),
		Outputs: reverb.LuffOutputs(),
	})
	r.MustRegister(TypeHalfSine, Entry{
		Factory: func(Context) (core.Node, error) { return signal.NewHalfSine(), nil },
		Inputs:  signal.HalfSineInputs(),
		Outputs: signal.Outputs(),
	})
	r.MustRegister(TypeParam, Entry{
		Factory: func(ctx Context) (core.Node, error) {
			return param.NewValue(ctx.Params.GetNum("value", 0)), nil
		},
		Outputs: param.ValueOutputs(),
	})
	r.MustRegister(TypeProbe, Entry{
		Factory: func(Context) (core.Node, error) { return &param.Probe{}, nil },
		Inputs:  param.ProbeInputs(),
	})

	return r
}

func stringOptions(p Params) []waveguide.Option {
	var opts []waveguide.Option
	if p.Has("max_delay") {
		opts = append(opts, waveguide.WithMaxDelay(p.GetInt("max_delay", 0)))
	}

	if p.Has("capacity_divisor") {
		opts = append(opts, waveguide.WithCapacityDivisor(p.GetNum("capacity_divisor", 0)))
	}

	return opts
}

func reverbOptions(p Params) []reverb.Option {
	var opts []reverb.Option
	if p.Has("seed") {
		opts = append(opts, reverb.WithSeed(int64(p.GetNum("seed", 0))))
	}

	if p.Has("tail_delay") {
		opts = append(opts, reverb.WithTailDelay(p.GetInt("tail_delay", 0)))
	}

	if p.Has("feedback") {
		opts = append(opts, reverb.WithFeedback(p.GetNum("feedback", 0)))
	}

	if p.Has("early") {
		opts = append(opts, reverb.WithEarlyReflections(p.GetNum("early", 0)))
	}

	if p.Has("channels") {
		opts = append(opts, reverb.WithChannels(p.GetInt("channels", 0)))
	}

	if p.Has("diffusers") {
		opts = append(opts, reverb.WithDiffusers(p.GetInt("diffusers", 0)))
	}

	return opts
}

// build avoids returning a typed nil inside the core.Node interface.
func build[T core.Node](n T, err error) (core.Node, error) {
	if err != nil {
		return nil, err
	}

	return n, nil
}
