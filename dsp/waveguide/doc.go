// Package waveguide implements digital waveguide string models.
//
// A string is a closed loop of fractional feedback delays. Excitation enters
// at a position along the loop, a one-pole lowpass in the loop sets the
// high-frequency loss and a one-pole highpass removes DC. Segment inputs pass
// through a cubic soft clipper that bounds the energy of the travelling wave.
//
// Four variants are provided:
//
//   - Basic: two segments with one shared loss filter.
//   - Bowed: two segments excited through a stick-slip bow friction curve.
//   - Split: four segments blending an open and a stopped (fretted) path.
//   - Bandpass: Basic with a resonant band-pass mixed into one segment.
//
// All controls are per-sample arrays so they can be modulated smoothly. A
// rising edge on the reset control clears the loop sample-accurately.
// Coefficients and delay lengths are only recomputed when their controls
// change.
//
// A NaN or Inf reaching the loop halts the voice: the remainder of the
// block is silent, Process returns core.StatusFree and Err reports a
// *NonFiniteError. Reset revives a halted voice.
package waveguide
