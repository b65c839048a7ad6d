package gcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mastercactapus/autolevel/coord"
)

// axisToken locates the numeric part of an axis word within a line.
type axisToken struct {
	ok         bool
	val        float64
	start, end int
}

// Line is a single line of toolpath text.
//
// Line values are immutable, every mutation returns a new Line
// and the text outside of the changed token is kept as-is.
type Line struct {
	text string

	// eol is a trailing carriage return, not part of text.
	eol string

	axes [3]axisToken
}

var axisLetters = [3]byte{'X', 'Y', 'Z'}

func axisIndex(axis byte) int {
	switch axis {
	case 'X', 'x':
		return 0
	case 'Y', 'y':
		return 1
	case 'Z', 'z':
		return 2
	}
	return -1
}

// NewLine scans text for X, Y and Z positions.
func NewLine(text string) Line {
	l := Line{text: text}
	if strings.HasSuffix(text, "\r") {
		l.text, l.eol = text[:len(text)-1], "\r"
	}
	for i, a := range axisLetters {
		l.axes[i] = scanAxis(l.text, a)
	}
	return l
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func digits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

// scanAxis finds the first `<axis><spaces><-?digits.digits>` in s.
// The axis letter is matched case-insensitively.
func scanAxis(s string, axis byte) axisToken {
	lower := axis + ('a' - 'A')
	for i := 0; i < len(s); i++ {
		if s[i] != axis && s[i] != lower {
			continue
		}
		j := i + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		start := j
		if j < len(s) && s[j] == '-' {
			j++
		}
		intEnd := digits(s, j)
		if intEnd == j || intEnd >= len(s) || s[intEnd] != '.' {
			continue
		}
		end := digits(s, intEnd+1)
		if end == intEnd+1 {
			continue
		}

		val, err := strconv.ParseFloat(s[start:end], 64)
		if err != nil {
			continue
		}
		return axisToken{ok: true, val: val, start: start, end: end}
	}

	return axisToken{}
}

// AxisPosition returns the value of the first matching axis word.
func (l Line) AxisPosition(axis byte) (float64, bool) {
	i := axisIndex(axis)
	if i < 0 {
		return 0, false
	}
	return l.axes[i].val, l.axes[i].ok
}

// HasMotion returns true if the line specifies X or Y.
func (l Line) HasMotion() bool { return l.axes[0].ok || l.axes[1].ok }

// Coordinates returns current with each axis the line specifies overridden.
func (l Line) Coordinates(current coord.Point) coord.Point {
	if l.axes[0].ok {
		current.X = l.axes[0].val
	}
	if l.axes[1].ok {
		current.Y = l.axes[1].val
	}
	if l.axes[2].ok {
		current.Z = l.axes[2].val
	}
	return current
}

// Replace substitutes the numeric value of an axis that is already
// present in the line. Lines without the axis are returned unchanged.
func (l Line) Replace(axis byte, value float64) Line {
	i := axisIndex(axis)
	if i < 0 || !l.axes[i].ok {
		return l
	}
	tok := l.axes[i]
	return NewLine(l.text[:tok.start] + fmt.Sprintf("%f", value) + l.text[tok.end:] + l.eol)
}

// Append returns a new line with s added to the end, before any
// trailing carriage return.
func (l Line) Append(s string) Line {
	return NewLine(l.text + s + l.eol)
}

// SetZ replaces an existing Z value, or adds one to lines that move in X or Y.
// Lines without any motion (comments, modal commands) are never changed.
func (l Line) SetZ(z float64) Line {
	if l.axes[2].ok {
		return l.Replace('Z', z)
	}
	if l.HasMotion() {
		return l.Append(fmt.Sprintf(" Z%f", z))
	}
	return l
}

func (l Line) String() string { return l.text + l.eol }
