package interp

// Linear2 interpolates between x0 and x1 at t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Allpass is a first-order allpass section used as a fractional-delay
// interpolator. For a fractional delay delta its coefficient is
// (1-delta)/(1+delta).
type Allpass struct {
	coeff float64
	x1    float64
	y1    float64
}

// SetDelta sets the fractional delay in frames. delta is expected in
// [0.5, 1.5) where the filter is stable and its phase delay is accurate.
func (a *Allpass) SetDelta(delta float64) {
	a.coeff = (1 - delta) / (1 + delta)
}

// Coefficient returns the current filter coefficient.
func (a *Allpass) Coefficient() float64 {
	return a.coeff
}

// Process filters one sample.
func (a *Allpass) Process(x float64) float64 {
	y := -a.coeff*a.y1 + (a.x1 + a.coeff*x)
	a.x1 = x
	a.y1 = y

	return y
}

// Reset clears the filter history but keeps the coefficient.
func (a *Allpass) Reset() {
	a.x1 = 0
	a.y1 = 0
}
