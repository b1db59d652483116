package reverb

import "math"

const (
	// denormalFloor is the magnitude below which an input sample is
	// replaced by scaled generator state.
	denormalFloor = 1.18e-23
	denormalScale = 1.18e-17

	ditherScale  = 5.5e-36
	ditherCenter = 0x7fffffff
)

// fpDither is a xorshift32 floating-point dither. The noise it adds scales
// with the binary exponent of the sample, so it sits just below the
// resolution of a 32-bit float at any level.
type fpDither struct {
	state uint32
}

// seedDither draws a generator state in [16386, MaxUint32).
func seedDither(r interface{ Uint32() uint32 }) fpDither {
	for {
		s := r.Uint32()
		if s >= 16386 && s != math.MaxUint32 {
			return fpDither{state: s}
		}
	}
}

func (d *fpDither) next() uint32 {
	x := d.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	d.state = x

	return x
}

// floor replaces near-silent inputs so the network never runs on
// denormals.
func (d *fpDither) floor(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return float64(d.state) * denormalScale
	}

	return x
}

// apply adds dither sized to the float32 exponent of x.
func (d *fpDither) apply(x float64) float64 {
	_, exp := math.Frexp(float64(float32(x)))
	noise := (float64(d.next()) - ditherCenter) * ditherScale

	return x + math.Ldexp(noise, exp+62)
}
