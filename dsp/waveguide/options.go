package waveguide

// DefaultMaxDelay is the per-segment capacity before Init, enough for a
// 20 Hz string at 192 kHz.
const DefaultMaxDelay = 192000 / 20

// DefaultCapacityDivisor sets the Init capacity to sampleRate/20 frames,
// matching the 20 Hz frequency floor.
const DefaultCapacityDivisor = 20.0

// MinFrequency is the lowest string frequency in Hz. Lower requests are
// raised to it.
const MinFrequency = 20.0

type config struct {
	maxDelay int
	divisor  float64
}

func defaultConfig() config {
	return config{
		maxDelay: DefaultMaxDelay,
		divisor:  DefaultCapacityDivisor,
	}
}

// Option configures a string at construction.
type Option func(*config)

// WithMaxDelay sets the per-segment capacity used before Init.
// Non-positive values are ignored.
func WithMaxDelay(frames int) Option {
	return func(c *config) {
		if frames > 0 {
			c.maxDelay = frames
		}
	}
}

// WithCapacityDivisor sets the Init capacity to sampleRate/d frames.
// Lower divisors allow lower pitches. Non-positive values are ignored.
func WithCapacityDivisor(d float64) Option {
	return func(c *config) {
		if d > 0 {
			c.divisor = d
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
