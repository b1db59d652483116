// Package signal generates the excitation burst used to pluck strings: a
// retriggerable half cycle of a cosine. HalfSine is a core.Node so it can
// be registered and rendered like any other component.
package signal
