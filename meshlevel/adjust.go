package meshlevel

import (
	"errors"
	"fmt"
	"math"

	"github.com/mastercactapus/autolevel/coord"
	"github.com/mastercactapus/autolevel/gcode"
)

// ErrOutOfBounds is returned when a toolpath position is outside of the probed area.
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// Extent returns the min and max position on each axis over the toolpath.
// The origin is always included.
func Extent(tp gcode.Toolpath) (mins, maxes coord.Point) {
	for _, p := range tp.Positions() {
		mins.X, maxes.X = math.Min(mins.X, p.X), math.Max(maxes.X, p.X)
		mins.Y, maxes.Y = math.Min(mins.Y, p.Y), math.Max(maxes.Y, p.Y)
		mins.Z, maxes.Z = math.Min(mins.Z, p.Z), math.Max(maxes.Z, p.Z)
	}
	return mins, maxes
}

// AdjustZ adds the probed surface height to the Z position of every
// line that moves. Points outside of the probed area are never
// extrapolated, ErrOutOfBounds is returned instead.
//
// The edges of the probed area are inclusive within coord.Epsilon
// (0.001), so a position up to that far outside the hull uses the
// slope of the nearest triangle.
func AdjustZ(tp gcode.Toolpath, probed []coord.Point) (gcode.Toolpath, error) {
	mesh, err := NewMesh(probed)
	if err != nil {
		return gcode.Toolpath{}, err
	}
	return Level(tp, mesh)
}

// Level is like AdjustZ with an arbitrary height source.
func Level(tp gcode.Toolpath, z ZOffsetter) (gcode.Toolpath, error) {
	lines := tp.Lines()
	for i, pos := range tp.Positions() {
		ok, offset := z.OffsetZ(pos.X, pos.Y)
		if !ok {
			return gcode.Toolpath{}, fmt.Errorf("%w: line %d at X%g Y%g", ErrOutOfBounds, i+1, pos.X, pos.Y)
		}
		lines[i] = lines[i].SetZ(pos.Z + offset)
	}

	return gcode.NewToolpath(lines), nil
}
