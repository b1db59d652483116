// Package pitch estimates the fundamental frequency of a rendered voice
// from its spectrum.
//
// The signal is windowed, zero-padded to a power of two and transformed.
// The strongest bin in the search range is refined by parabolic
// interpolation on the log power spectrum. A harmonic guard then prefers a
// clear peak at a half, third or quarter of that frequency, so a string
// whose second harmonic dominates still reports its fundamental.
package pitch
