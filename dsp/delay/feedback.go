package delay

// Feedback is a ramped fractional delay with a feedback path around it:
// the delayed sample is scaled and summed into the next write.
//
// The gain is not clamped. Gains at or above 1 are valid when the caller
// places loss filters in the surrounding loop.
type Feedback struct {
	line *Ramped
	gain float64
}

// NewFeedback returns a feedback delay holding up to capacity frames.
func NewFeedback(capacity int) (*Feedback, error) {
	line, err := NewRamped(capacity)
	if err != nil {
		return nil, err
	}

	return &Feedback{line: line}, nil
}

// Cap returns the buffer capacity in frames.
func (f *Feedback) Cap() int { return f.line.Cap() }

// Length returns the length currently applied to the tap.
func (f *Feedback) Length() float64 { return f.line.Length() }

// Target returns the length the ramp is heading to.
func (f *Feedback) Target() float64 { return f.line.Target() }

// Gain returns the feedback gain.
func (f *Feedback) Gain() float64 { return f.gain }

// SetGain sets the feedback gain.
func (f *Feedback) SetGain(g float64) { f.gain = g }

// SetLength ramps the delay to frames; see Ramped.SetLength.
func (f *Feedback) SetLength(frames float64) { f.line.SetLength(frames) }

// Process reads the delayed sample, writes delayed*gain + x and returns the
// delayed sample.
func (f *Feedback) Process(x float64) float64 {
	delayed := f.line.Read()
	f.line.Write(delayed*f.gain + x)

	return delayed
}

// Clear silences the line; see Line.Clear.
func (f *Feedback) Clear() { f.line.Clear() }

// Clearing reports whether reads are still gated by a Clear.
func (f *Feedback) Clearing() bool { return f.line.Clearing() }

// Reset zeroes the buffer.
func (f *Feedback) Reset() { f.line.Reset() }
