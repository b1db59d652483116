// Package design provides digital IIR filter coefficient designers.
//
// The functions in this package produce RBJ-style biquad coefficients
// consumable by dsp/filter/biquad for runtime processing.
package design
