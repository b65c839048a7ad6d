package coord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is returned when coordinate text is malformed.
var ErrParse = errors.New("parse coordinates")

// Point is a position on the X, Y and Z axes.
type Point struct{ X, Y, Z float64 }

// ParsePoint will parse a comma-separated triple like `1.000,-2.5,3`.
func ParsePoint(data string) (p Point, err error) {
	parts := strings.Split(data, ",")
	if len(parts) != 3 {
		return p, fmt.Errorf("%w: invalid number of elements in '%s'", ErrParse, data)
	}
	vals := [3]*float64{&p.X, &p.Y, &p.Z}
	for i, s := range parts {
		*vals[i], err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Point{}, fmt.Errorf("%w: %s", ErrParse, err)
		}
	}
	return p, nil
}

func (p Point) Equal(b Point) bool {
	return p.X == b.X && p.Y == b.Y && p.Z == b.Z
}

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	p.Z += target.Z
	return p
}

// Sub will subtract the target values from p.
func (p Point) Sub(target Point) Point {
	p.X -= target.X
	p.Y -= target.Y
	p.Z -= target.Z
	return p
}

func (p Point) String() string {
	return fmt.Sprintf("%f,%f,%f", p.X, p.Y, p.Z)
}
