package reverb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sequence []uint32

func (s *sequence) Uint32() uint32 {
	v := (*s)[0]
	*s = (*s)[1:]

	return v
}

func TestDitherXorshift(t *testing.T) {
	d := fpDither{state: 1}
	assert.Equal(t, uint32(270369), d.next())
	assert.Equal(t, uint32(270369), d.state)
}

func TestDitherBoundedByExponent(t *testing.T) {
	d := fpDither{state: 123456789}

	for _, x := range []float64{0.3, -0.7, 1e-3, 12.5} {
		y := d.apply(x)
		assert.NotEqual(t, x, y)
		assert.LessOrEqual(t, math.Abs(y-x), 2.5e-7*math.Abs(x), "x=%v", x)
	}
}

func TestDitherFloor(t *testing.T) {
	d := fpDither{state: 1000}

	assert.Equal(t, 0.5, d.floor(0.5))
	assert.Equal(t, 1000*denormalScale, d.floor(0))
	assert.Equal(t, 1000*denormalScale, d.floor(-1e-30))
}

func TestSeedDitherRange(t *testing.T) {
	seq := sequence{5, 16385, math.MaxUint32, 20000}
	d := seedDither(&seq)
	assert.Equal(t, uint32(20000), d.state)
}
