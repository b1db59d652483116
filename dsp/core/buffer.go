package core

// EnsureLen returns buf resized to n frames, reusing its backing array when
// it is large enough. Node Init methods use it so a repeated Init with the
// same block size does not allocate. Reused frames keep their old values.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]float64, n)
}

// Zero silences buf.
func Zero(buf []float64) {
	clear(buf)
}

// Fill sets every frame of buf to v, turning a block-rate control into an
// audio-rate input.
func Fill(buf []float64, v float64) {
	for i := range buf {
		buf[i] = v
	}
}
