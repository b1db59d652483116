package node

import "math"

// Params holds construction parameters for one node.
type Params struct {
	Num map[string]float64
}

// GetNum safely extracts a numeric parameter, returning def if missing or invalid.
func (p Params) GetNum(key string, def float64) float64 {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetInt is GetNum truncated to an int.
func (p Params) GetInt(key string, def int) int {
	return int(p.GetNum(key, float64(def)))
}

// Has reports whether key is set to a finite value.
func (p Params) Has(key string) bool {
	v, ok := p.Num[key]
	return ok && !math.IsNaN(v) && !math.IsInf(v, 0)
}
