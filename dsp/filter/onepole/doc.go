// Package onepole provides one-pole lowpass and highpass filters used as
// loss and DC-blocking filters inside feedback loops.
//
// Coefficients are recomputed only when the cutoff changes, so per-sample
// cutoff arrays cost one comparison per sample while they hold still.
//
// Build with -tags fastmath to compute coefficients with algo-approx
// instead of math.Exp.
package onepole
