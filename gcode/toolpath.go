package gcode

import (
	"strings"

	"github.com/mastercactapus/autolevel/coord"
)

// Toolpath is an ordered, immutable list of toolpath lines.
type Toolpath struct {
	lines []Line
}

// ParseToolpath splits data on newlines. Every line is kept,
// including blanks, so String reproduces the input.
func ParseToolpath(data string) Toolpath {
	parts := strings.Split(data, "\n")
	lines := make([]Line, len(parts))
	for i, s := range parts {
		lines[i] = NewLine(s)
	}
	return Toolpath{lines: lines}
}

// NewToolpath creates a Toolpath from a copy of lines.
func NewToolpath(lines []Line) Toolpath {
	return Toolpath{lines: append([]Line(nil), lines...)}
}

func (t Toolpath) Len() int        { return len(t.lines) }
func (t Toolpath) Line(i int) Line { return t.lines[i] }

// Lines returns a copy of all lines.
func (t Toolpath) Lines() []Line { return append([]Line(nil), t.lines...) }

// WithLine returns a new Toolpath with line i replaced.
func (t Toolpath) WithLine(i int, l Line) Toolpath {
	lines := t.Lines()
	lines[i] = l
	return Toolpath{lines: lines}
}

// Positions returns the commanded position after each line. Axes a line
// doesn't mention keep their previous value, starting from zero.
func (t Toolpath) Positions() []coord.Point {
	var cur coord.Point
	res := make([]coord.Point, len(t.lines))
	for i, l := range t.lines {
		cur = l.Coordinates(cur)
		res[i] = cur
	}
	return res
}

func (t Toolpath) String() string {
	s := make([]string, len(t.lines))
	for i, l := range t.lines {
		s[i] = l.String()
	}
	return strings.Join(s, "\n")
}
