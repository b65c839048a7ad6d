package gcode

import (
	"testing"

	"github.com/mastercactapus/autolevel/coord"
	"github.com/stretchr/testify/assert"
)

func TestLine_AxisPosition(t *testing.T) {
	l := NewLine("G1 X1.500 y -2.25 Z0.100 F100")

	x, ok := l.AxisPosition('X')
	assert.True(t, ok)
	assert.Equal(t, 1.5, x)

	y, ok := l.AxisPosition('y')
	assert.True(t, ok)
	assert.Equal(t, -2.25, y)

	z, ok := l.AxisPosition('Z')
	assert.True(t, ok)
	assert.Equal(t, 0.1, z)

	_, ok = l.AxisPosition('A')
	assert.False(t, ok)
}

func TestLine_AxisPositionFirstMatch(t *testing.T) {
	l := NewLine("G1 X1.0 X2.0")
	x, ok := l.AxisPosition('X')
	assert.True(t, ok)
	assert.Equal(t, 1.0, x)

	// integers and dangling points don't count as positions
	for _, s := range []string{"G0 X10", "G0 X.5", "G0 X5.", "G0 X-", "G0 X"} {
		_, ok = NewLine(s).AxisPosition('X')
		assert.False(t, ok, s)
	}

	// skip non-matching occurrences and keep looking
	x, ok = NewLine("(max) X3.25").AxisPosition('x')
	assert.True(t, ok)
	assert.Equal(t, 3.25, x)
}

func TestLine_Coordinates(t *testing.T) {
	cur := coord.Point{X: 1, Y: 2, Z: 3}

	assert.Equal(t, coord.Point{X: 5, Y: 2, Z: 3}, NewLine("G1 X5.0").Coordinates(cur))
	assert.Equal(t, coord.Point{X: 1, Y: 2, Z: -1}, NewLine("g1 z-1.0").Coordinates(cur))
	assert.Equal(t, cur, NewLine("M3 S1000").Coordinates(cur))
}

func TestLine_Replace(t *testing.T) {
	l := NewLine("G1 x 1.5 Y2.0 ; move")
	res := l.Replace('X', -3)
	assert.Equal(t, "G1 x -3.000000 Y2.0 ; move", res.String())
	assert.Equal(t, "G1 x 1.5 Y2.0 ; move", l.String(), "original unchanged")

	x, _ := res.AxisPosition('X')
	assert.Equal(t, -3.0, x)

	assert.Equal(t, l, l.Replace('Z', 1))
}

func TestLine_SetZ(t *testing.T) {
	// no motion
	l := NewLine("M3 S10000 (spindle on)")
	assert.Equal(t, l.String(), l.SetZ(1).String())

	// X only
	assert.Equal(t, "G1 X1.0 Z0.250000", NewLine("G1 X1.0").SetZ(0.25).String())

	// Y only
	assert.Equal(t, "G1 Y1.0 Z-0.250000", NewLine("G1 Y1.0").SetZ(-0.25).String())

	// existing Z
	assert.Equal(t, "G1 X1.0 Z0.500000 F300", NewLine("G1 X1.0 Z-1.0 F300").SetZ(0.5).String())

	// Z only is replaced too
	assert.Equal(t, "G0 z2.000000", NewLine("G0 z5.0").SetZ(2).String())

	// CRLF line endings stay at the end
	assert.Equal(t, "G1 X1.0 Y1.0 Z0.500000\r", NewLine("G1 X1.0 Y1.0\r").SetZ(0.5).String())
	assert.Equal(t, "G1 X1.0 Z0.500000\r", NewLine("G1 X1.0 Z-1.0\r").SetZ(0.5).String())
	assert.Equal(t, "M5\r", NewLine("M5\r").SetZ(0.5).String())
}
