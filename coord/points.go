package coord

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ReadPoints reads `x,y,z` records, one per line, with no header.
func ReadPoints(r io.Reader) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var res []Point
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrParse, err)
		}

		var p Point
		vals := [3]*float64{&p.X, &p.Y, &p.Z}
		for i, s := range rec {
			*vals[i], err = strconv.ParseFloat(s, 64)
			if err != nil {
				line, _ := cr.FieldPos(i)
				return nil, fmt.Errorf("%w: line %d: %s", ErrParse, line, err)
			}
		}
		res = append(res, p)
	}
}

// WritePoints writes points in the format read by ReadPoints.
func WritePoints(w io.Writer, points []Point) error {
	cw := csv.NewWriter(w)
	for _, p := range points {
		err := cw.Write([]string{
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.FormatFloat(p.Y, 'f', -1, 64),
			strconv.FormatFloat(p.Z, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
