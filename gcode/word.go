package gcode

import "strconv"

// Word is a single letter/number pair like `G38.2` or `Z-0.5`.
type Word struct {
	W   byte
	Arg float64
}

// IsValid returns true for upper case letters, the only words Grbl accepts.
func (w Word) IsValid() bool { return w.W >= 'A' && w.W <= 'Z' }

// appendWord formats w with at most 3 decimals and no trailing zeros.
func appendWord(dst []byte, w Word) []byte {
	dst = append(dst, w.W)
	start := len(dst)
	dst = strconv.AppendFloat(dst, w.Arg, 'f', 3, 64)
	for dst[len(dst)-1] == '0' {
		dst = dst[:len(dst)-1]
	}
	if dst[len(dst)-1] == '.' {
		dst = dst[:len(dst)-1]
	}
	if string(dst[start:]) == "-0" {
		dst = append(dst[:start], '0')
	}
	return dst
}

func (w Word) String() string { return string(appendWord(nil, w)) }
