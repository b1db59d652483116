// Package delay provides fixed-capacity delay lines for feedback networks.
//
// Included types:
//   - Line: allpass-interpolated fractional delay with cheap clearing.
//   - Ramped: Line whose length glides to a new target over RampSteps writes.
//   - Crossfade: two allpass taps crossfaded on length changes.
//   - Feedback: Ramped line with an internal feedback path.
//   - Static: integer-length ring with block access, used by reverbs.
//
// All lines read before they write: the value returned by Read is the input
// written Length frames earlier. Capacities are fixed at construction and a
// length beyond capacity panics with ErrLengthExceedsCapacity, since the
// buffer was sized wrong and silently truncating would detune the loop.
package delay
