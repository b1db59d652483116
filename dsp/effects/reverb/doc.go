// Package reverb provides block-based feedback delay network reverbs.
//
// Included processors:
//   - Galactic: stereo 12-line network mixed by recursive subtraction, with a
//     detune chorus on the input and floating-point dither on the output.
//   - Luff: mono diffuser chain (Hadamard) feeding a Householder-mixed
//     feedback tail.
//
// Both allocate in New and Init and never on the processing path. Random
// delay lengths and dither seeds are drawn once at construction; pass
// WithSeed for reproducible output.
package reverb
