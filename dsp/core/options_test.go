package core

import (
	"math"
	"testing"
)

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(96000), WithBlockSize(64))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}
	if cfg.BlockSize != 64 {
		t.Fatalf("block size = %d, want 64", cfg.BlockSize)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithSampleRate(math.Inf(1)), WithBlockSize(-1), nil)
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestFrames(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(48000))

	tests := []struct {
		seconds float64
		want    int
	}{
		{0.25, 12000},
		{1, 48000},
		{0, 0},
		{-1, 0},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := cfg.Frames(tt.seconds); got != tt.want {
			t.Fatalf("Frames(%v) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}
