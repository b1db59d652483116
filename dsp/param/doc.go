// Package param hands control values between a UI or control thread and the
// audio thread without locks.
//
// A Value is written by one goroutine and read by the audio callback, which
// fills a control block with the latest value. A Probe runs the other way:
// the audio callback captures one sample per block and a reader polls it.
// Both store float64 bits in an atomic word, so neither side ever blocks.
package param
