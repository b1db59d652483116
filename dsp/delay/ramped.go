package delay

// RampSteps is the number of writes a Ramped line takes to reach a new
// length.
const RampSteps = 40

// Ramped is a Line whose length moves linearly to each new target over
// RampSteps writes, avoiding clicks on pitch changes.
type Ramped struct {
	line *Line

	target    float64
	current   float64
	step      float64
	stepsLeft int
}

// NewRamped returns a ramped line holding up to capacity frames.
func NewRamped(capacity int) (*Ramped, error) {
	line, err := New(capacity)
	if err != nil {
		return nil, err
	}

	return &Ramped{
		line:    line,
		target:  line.Length(),
		current: line.Length(),
	}, nil
}

// Cap returns the buffer capacity in frames.
func (r *Ramped) Cap() int { return r.line.Cap() }

// Length returns the length currently applied to the tap.
func (r *Ramped) Length() float64 { return r.current }

// Target returns the length the ramp is heading to.
func (r *Ramped) Target() float64 { return r.target }

// Ramping reports whether a length transition is in progress.
func (r *Ramped) Ramping() bool { return r.stepsLeft > 0 }

// SetLength starts a ramp towards frames. The first step is applied
// immediately; each following Write applies one more.
func (r *Ramped) SetLength(frames float64) {
	checkLength(frames, r.line.Cap())

	if frames < MinLength {
		frames = MinLength
	}

	r.target = frames
	r.step = (frames - r.current) / RampSteps
	r.stepsLeft = RampSteps - 1
	r.current += r.step
	r.line.SetLength(r.current)
}

// Read returns the next delayed sample. Call it before Write.
func (r *Ramped) Read() float64 {
	return r.line.Read()
}

// Write stores one sample and advances the ramp by one step.
func (r *Ramped) Write(x float64) {
	r.line.Write(x)

	if r.stepsLeft == 0 {
		return
	}

	r.stepsLeft--
	if r.stepsLeft == 0 {
		r.current = r.target
	} else {
		r.current += r.step
	}

	r.line.SetLength(r.current)
}

// Clear silences the line; see Line.Clear.
func (r *Ramped) Clear() {
	r.line.Clear()
}

// Clearing reports whether reads are still gated by a Clear.
func (r *Ramped) Clearing() bool { return r.line.Clearing() }

// Reset zeroes the buffer and jumps to the target length.
func (r *Ramped) Reset() {
	r.line.Reset()
	r.stepsLeft = 0
	r.current = r.target
	r.line.SetLength(r.current)
}
