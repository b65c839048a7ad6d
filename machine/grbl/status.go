package grbl

import (
	"fmt"
	"strings"

	"github.com/mastercactapus/autolevel/coord"
)

// Segment is one `Name:Value` field of a status report.
type Segment struct {
	Name, Value string
}

// Status is a decoded `<State|Name:Value|...>` report.
type Status struct {
	State    string
	Segments []Segment
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '_' && (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

func validState(s string) bool {
	name, sub := s, ""
	if i := strings.IndexByte(s, ':'); i >= 0 {
		name, sub = s[:i], s[i+1:]
		if !isWord(sub) {
			return false
		}
	}
	return isWord(name)
}

// IsStatus returns true if line looks like a status report.
func IsStatus(line string) bool {
	if !strings.HasPrefix(line, "<") || !strings.HasSuffix(line, ">") {
		return false
	}
	parts := strings.SplitN(line[1:len(line)-1], "|", 2)
	return len(parts) == 2 && validState(parts[0]) && parts[1] != ""
}

// ParseStatus decodes a status report.
func ParseStatus(line string) (*Status, error) {
	line = strings.TrimSpace(line)
	if !IsStatus(line) {
		return nil, fmt.Errorf("%w: invalid status format '%s'", ErrParse, line)
	}

	parts := strings.Split(line[1:len(line)-1], "|")
	stat := &Status{
		State:    parts[0],
		Segments: make([]Segment, 0, len(parts)-1),
	}
	for _, s := range parts[1:] {
		sParts := strings.SplitN(s, ":", 2)
		if len(sParts) != 2 || sParts[0] == "" {
			return nil, fmt.Errorf("%w: invalid status segment '%s'", ErrParse, s)
		}
		stat.Segments = append(stat.Segments, Segment{Name: sParts[0], Value: sParts[1]})
	}

	return stat, nil
}

// IsIdle returns true if the machine reports the Idle state.
func (s Status) IsIdle() bool { return s.State == "Idle" }

// Segment returns the raw value of the first segment with the given name.
func (s Status) Segment(name string) (string, bool) {
	for _, seg := range s.Segments {
		if seg.Name == name {
			return seg.Value, true
		}
	}
	return "", false
}

func (s Status) point(name string) (coord.Point, bool, error) {
	val, ok := s.Segment(name)
	if !ok {
		return coord.Point{}, false, nil
	}
	p, err := coord.ParsePoint(val)
	if err != nil {
		return coord.Point{}, false, fmt.Errorf("%w: segment %s: %s", ErrParse, name, err)
	}
	return p, true, nil
}

// MPos returns the machine position, if reported.
func (s Status) MPos() (coord.Point, bool, error) { return s.point("MPos") }

// WCO returns the work coordinate offset, if reported.
func (s Status) WCO() (coord.Point, bool, error) { return s.point("WCO") }

// WPos returns the work position, if reported.
func (s Status) WPos() (coord.Point, bool, error) { return s.point("WPos") }
