package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails tb at the first frame where got and want
// differ by more than eps, or when their lengths differ.
func RequireSliceNearlyEqual(tb testing.TB, got, want []float64, eps float64) {
	tb.Helper()

	if len(got) != len(want) {
		tb.Fatalf("length mismatch: got %d frames, want %d", len(got), len(want))
		return
	}

	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps || math.IsNaN(diff) {
			tb.Fatalf("frame %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
			return
		}
	}
}

// RequireFinite fails tb at the first NaN or Inf frame.
func RequireFinite(tb testing.TB, data []float64) {
	tb.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			tb.Fatalf("frame %d: non-finite value %v", i, v)
			return
		}
	}
}

// RequireSilent fails tb at the first frame that is not exactly zero.
// A halted voice or a freshly reset node must produce true silence, not
// merely a small signal.
func RequireSilent(tb testing.TB, data []float64) {
	tb.Helper()

	for i, v := range data {
		if v != 0 {
			tb.Fatalf("frame %d: got %v, want silence", i, v)
			return
		}
	}
}
