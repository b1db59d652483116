// Package interp provides interpolation primitives used by delay-based DSP blocks.
//
// Available methods:
//
//   - [Linear2]:  2-point linear interpolation, used for modulated taps
//   - [Allpass]:  first-order allpass (unity magnitude, phase-only), used
//     for fractional lengths inside feedback loops
//
// Allpass interpolation keeps every frequency at unity gain, which is what a
// recirculating string or reverb loop needs. Its phase error grows towards
// Nyquist, so taps that are swept quickly use [Linear2] instead.
package interp
