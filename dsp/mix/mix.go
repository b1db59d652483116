package mix

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// HadamardInPlace applies the recursive Hadamard butterfly to frame.
// len(frame) must be a power of two. The transform is not normalized:
// applying it twice scales the input by len(frame).
func HadamardInPlace(frame []float64) {
	if len(frame) <= 1 {
		return
	}

	half := len(frame) / 2
	HadamardInPlace(frame[:half])
	HadamardInPlace(frame[half:])

	for i := range half {
		a := frame[i]
		b := frame[i+half]
		frame[i] = a + b
		frame[i+half] = a - b
	}
}

// HouseholderInPlace reflects frame about the all-ones vector:
// x_i += -2/N * Σx.
func HouseholderInPlace(frame []float64) {
	if len(frame) == 0 {
		return
	}

	var sum float64
	for _, x := range frame {
		sum += x
	}

	sum *= -2 / float64(len(frame))

	for i := range frame {
		frame[i] += sum
	}
}

// Subtract4 computes y_i = x_i - (x_{i+1} + x_{i+2} + x_{i+3}) with
// indices taken mod 4, writing into dst. dst must not alias src.
func Subtract4(dst, src *[4]float64) {
	for i := range 4 {
		dst[i] = src[i] - (src[(i+1)%4] + src[(i+2)%4] + src[(i+3)%4])
	}
}

// Sum returns the sum of frame.
func Sum(frame []float64) float64 {
	var s float64
	for _, x := range frame {
		s += x
	}

	return s
}
