package core

// Trigger detects rising edges in a per-sample control signal.
// A value above zero fires once when the previous value was zero or below.
type Trigger struct {
	prev float64
}

// Fire feeds one control value and reports whether it forms a rising edge.
func (t *Trigger) Fire(v float64) bool {
	fired := v > 0 && !(t.prev > 0)
	t.prev = v

	return fired
}

// Reset forgets the previous control value.
func (t *Trigger) Reset() {
	t.prev = 0
}
