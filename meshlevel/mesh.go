package meshlevel

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/delaunay"
	"github.com/mastercactapus/autolevel/coord"
)

// Mesh interpolates Z linearly across a Delaunay triangulation of
// probed points.
type Mesh struct {
	min, max  coord.Point
	triangles []coord.Triangle
}

var _ ZOffsetter = &Mesh{}

// NewMesh triangulates points in XY. At least 3 points that are not
// all on one line are required.
func NewMesh(points []coord.Point) (*Mesh, error) {
	if len(points) < 3 {
		return nil, errors.New("need at least 3 points to create a mesh")
	}

	mesh := &Mesh{min: points[0], max: points[0]}
	xy := make([]delaunay.Point, len(points))
	for i, p := range points {
		mesh.min = coord.Point{X: math.Min(mesh.min.X, p.X), Y: math.Min(mesh.min.Y, p.Y), Z: math.Min(mesh.min.Z, p.Z)}
		mesh.max = coord.Point{X: math.Max(mesh.max.X, p.X), Y: math.Max(mesh.max.Y, p.Y), Z: math.Max(mesh.max.Z, p.Z)}
		xy[i] = delaunay.Point{X: p.X, Y: p.Y}
	}

	tri, err := delaunay.Triangulate(xy)
	if err != nil {
		return nil, fmt.Errorf("triangulate %d points: %w", len(points), err)
	}

	// triangle indexes refer to points
	idx := tri.Triangles
	mesh.triangles = make([]coord.Triangle, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		mesh.triangles = append(mesh.triangles, coord.Triangle{
			A: points[idx[i]],
			B: points[idx[i+1]],
			C: points[idx[i+2]],
		})
	}
	if len(mesh.triangles) == 0 {
		return nil, errors.New("probed points do not cover an area")
	}

	return mesh, nil
}

// Bounds returns the smallest and largest probed value on each axis.
func (m *Mesh) Bounds() (min, max coord.Point) { return m.min, m.max }

func (m *Mesh) inBounds(x, y float64) bool {
	return m.min.X-coord.Epsilon <= x && x <= m.max.X+coord.Epsilon &&
		m.min.Y-coord.Epsilon <= y && y <= m.max.Y+coord.Epsilon
}

// OffsetZ returns the interpolated height at x,y. It returns false if x,y
// is outside of the probed area.
func (m *Mesh) OffsetZ(x, y float64) (bool, float64) {
	if !m.inBounds(x, y) {
		return false, 0
	}
	for _, t := range m.triangles {
		if t.ContainsXY(x, y) {
			return true, t.Z(x, y)
		}
	}

	return false, 0
}
