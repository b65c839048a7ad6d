package coord

import (
	"math"
)

const (
	// Epsilon is the max error when checking containment.
	Epsilon   = 0.001
	epsilonSq = Epsilon * Epsilon
)

// Triangle is a face of a height mesh. Only the XY projection
// is used for containment, Z is the sampled height at each vertex.
type Triangle struct{ A, B, C Point }

// ContainsXY returns true if the 2D projection of the triangle
// has the point x,y (edges are inclusive within Epsilon).
func (t Triangle) ContainsXY(x, y float64) bool {
	if !t.boundsXY(x, y) {
		return false
	}
	if t.det() == 0 {
		return false
	}

	a, b, c := t.weights(x, y)
	if a >= 0 && b >= 0 && c >= 0 {
		return true
	}

	return distSqToSegment(t.A, t.B, x, y) <= epsilonSq ||
		distSqToSegment(t.B, t.C, x, y) <= epsilonSq ||
		distSqToSegment(t.C, t.A, x, y) <= epsilonSq
}

// Z will give the Z-coordinate on the plane defined by the triangle
// where it intersects x,y.
//
// Vertex positions return the vertex Z exactly.
func (t Triangle) Z(x, y float64) float64 {
	a, b, c := t.weights(x, y)
	return a*t.A.Z + b*t.B.Z + c*t.C.Z
}

func (t Triangle) det() float64 {
	return (t.B.Y-t.C.Y)*(t.A.X-t.C.X) + (t.C.X-t.B.X)*(t.A.Y-t.C.Y)
}

// weights returns the barycentric coordinates of x,y.
func (t Triangle) weights(x, y float64) (a, b, c float64) {
	d := t.det()
	a = ((t.B.Y-t.C.Y)*(x-t.C.X) + (t.C.X-t.B.X)*(y-t.C.Y)) / d
	b = ((t.C.Y-t.A.Y)*(x-t.C.X) + (t.A.X-t.C.X)*(y-t.C.Y)) / d
	c = 1 - a - b
	return a, b, c
}

func (t Triangle) boundsXY(x, y float64) bool {
	xMin := math.Min(t.A.X, math.Min(t.B.X, t.C.X)) - Epsilon
	xMax := math.Max(t.A.X, math.Max(t.B.X, t.C.X)) + Epsilon
	yMin := math.Min(t.A.Y, math.Min(t.B.Y, t.C.Y)) - Epsilon
	yMax := math.Max(t.A.Y, math.Max(t.B.Y, t.C.Y)) + Epsilon

	return xMin <= x && x <= xMax && yMin <= y && y <= yMax
}

// adapted from https://totologic.blogspot.com/2014/01/accurate-point-in-triangle-test.html
func distSqToSegment(p1, p2 Point, x, y float64) float64 {
	lenSq := (p2.X-p1.X)*(p2.X-p1.X) + (p2.Y-p1.Y)*(p2.Y-p1.Y)
	dot := ((x-p1.X)*(p2.X-p1.X) + (y-p1.Y)*(p2.Y-p1.Y)) / lenSq
	if dot < 0 {
		return (x-p1.X)*(x-p1.X) + (y-p1.Y)*(y-p1.Y)
	}
	if dot <= 1 {
		return (p1.X-x)*(p1.X-x) + (p1.Y-y)*(p1.Y-y) - dot*dot*lenSq
	}

	return (x-p2.X)*(x-p2.X) + (y-p2.Y)*(y-p2.Y)
}
