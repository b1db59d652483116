package reverb

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-waveguide/dsp/mix"
)

const (
	defaultTailDelay        = 2350 * 48
	defaultFeedback         = 0.65
	defaultEarlyReflections = 0.3
	defaultChannels         = 2
	defaultDiffusers        = 4
)

var (
	// ErrInvalidSampleRate is returned by Init for non-positive rates.
	ErrInvalidSampleRate = errors.New("reverb: sample rate must be > 0")
	// ErrInvalidBlockSize is returned by Init for non-positive block sizes.
	ErrInvalidBlockSize = errors.New("reverb: block size must be > 0")
	// ErrTailTooShort is returned when a tail delay is shorter than the
	// block size; block reads would overtake the write head.
	ErrTailTooShort = errors.New("reverb: tail delay shorter than block size")
	// ErrInvalidTopology is returned for channel or diffuser counts the
	// mixing matrices cannot serve.
	ErrInvalidTopology = errors.New("reverb: invalid topology")
)

type config struct {
	seed      int64
	seeded    bool
	tailDelay int
	feedback  float64
	early     float64
	channels  int
	diffusers int
}

// Option configures a reverb at construction.
type Option func(*config)

// WithSeed fixes the construction-time random source.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
		c.seeded = true
	}
}

// WithTailDelay sets the Luff tail length in frames.
func WithTailDelay(frames int) Option {
	return func(c *config) { c.tailDelay = frames }
}

// WithFeedback sets the Luff tail feedback gain.
func WithFeedback(g float64) Option {
	return func(c *config) { c.feedback = g }
}

// WithEarlyReflections sets the Luff early reflection amplitude.
func WithEarlyReflections(amp float64) Option {
	return func(c *config) { c.early = amp }
}

// WithChannels sets the Luff internal channel count. Must be a power of
// two and at least 2.
func WithChannels(n int) Option {
	return func(c *config) { c.channels = n }
}

// WithDiffusers sets the number of Luff diffusion stages.
func WithDiffusers(n int) Option {
	return func(c *config) { c.diffusers = n }
}

func applyOptions(opts []Option) config {
	cfg := config{
		tailDelay: defaultTailDelay,
		feedback:  defaultFeedback,
		early:     defaultEarlyReflections,
		channels:  defaultChannels,
		diffusers: defaultDiffusers,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// rng returns the construction-time random source.
func (c config) rng() *rand.Rand {
	seed := c.seed
	if !c.seeded {
		seed = rand.Int63()
	}

	return rand.New(rand.NewSource(seed))
}

func (c config) validateLuff() error {
	if c.channels < 2 || !mix.IsPowerOfTwo(c.channels) {
		return fmt.Errorf("%w: channels=%d (need a power of two >= 2)", ErrInvalidTopology, c.channels)
	}

	if c.diffusers < 1 {
		return fmt.Errorf("%w: diffusers=%d", ErrInvalidTopology, c.diffusers)
	}

	// Every diffuser channel needs a non-empty length range.
	if c.tailDelay/(2*c.diffusers)/c.channels < 2 {
		return fmt.Errorf("%w: tail delay %d too short for %d diffusers x %d channels",
			ErrInvalidTopology, c.tailDelay, c.diffusers, c.channels)
	}

	return nil
}

func validateInit(sampleRate float64, blockSize int) error {
	if !(sampleRate > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if blockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}

	return nil
}
