package machine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/mastercactapus/autolevel/coord"
)

// GridOptions configure a grid-pattern z-probe operation.
//
// The grid starts at the work origin and covers 0..XMax, 0..YMax.
type GridOptions struct {
	XMax, XStep float64
	YMax, YStep float64

	// ZMin is the lowest work Z to probe to at each point.
	ZMin     float64
	FeedRate float64
}

func (opt GridOptions) Validate() error {
	switch {
	case opt.XStep <= 0 || opt.YStep <= 0:
		return errors.New("grid step must be positive")
	case opt.XMax < 0 || opt.YMax < 0:
		return errors.New("grid size must not be negative")
	case opt.FeedRate <= 0:
		return errors.New("feed rate must be positive")
	}
	return nil
}

// linspace returns n evenly spaced values from start to stop, inclusive.
func linspace(start, stop float64, n int) []float64 {
	if n == 1 {
		return []float64{start}
	}
	res := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range res {
		res[i] = start + step*float64(i)
	}
	res[n-1] = stop
	return res
}

// GridPoints generates probe locations column by column, alternating the
// Y direction on each column so that consecutive points are always adjacent.
//
// Each axis has floor(max/step)+1 evenly spaced samples including 0 and max.
func GridPoints(xMax, xStep, yMax, yStep float64) [][2]float64 {
	if xStep <= 0 || yStep <= 0 || xMax < 0 || yMax < 0 {
		return nil
	}
	xNum := int(math.Floor(xMax/xStep)) + 1
	yNum := int(math.Floor(yMax/yStep)) + 1

	yMin := 0.0
	res := make([][2]float64, 0, xNum*yNum)
	for _, x := range linspace(0, xMax, xNum) {
		for _, y := range linspace(yMin, yMax, yNum) {
			res = append(res, [2]float64{x, y})
		}
		yMin, yMax = yMax, yMin
	}

	return res
}

// GridProbe probes Z at each point of a grid.
type GridProbe struct {
	probe *Probe
	opt   GridOptions
}

func NewGridProbe(p *Probe, opt GridOptions) *GridProbe {
	return &GridProbe{probe: p, opt: opt}
}

// Points returns the probe locations in the order they are visited.
func (g *GridProbe) Points() [][2]float64 {
	return GridPoints(g.opt.XMax, g.opt.XStep, g.opt.YMax, g.opt.YStep)
}

// Scan starts a new scan. Nothing moves until Next is called.
func (g *GridProbe) Scan() *GridScan {
	return &GridScan{g: g, points: g.Points(), err: g.opt.Validate()}
}

// Finish raises to the safe height and returns to the XY origin.
func (g *GridProbe) Finish() error {
	return runBlocks(g.probe.s, generateGoTo(g.probe.opt.SafeZ, 0, 0)...)
}

// GridScan iterates over a grid probe, one physical probe per call to Next.
//
// A GridScan drives the machine as it is consumed and cannot be restarted.
type GridScan struct {
	g      *GridProbe
	points [][2]float64
	n      int

	cur coord.Point
	err error
}

// Next moves to the next grid point and probes it. It returns false
// when all points are done or an error occurred.
func (s *GridScan) Next(ctx context.Context) bool {
	if s.err != nil || s.n >= len(s.points) {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}

	pt := s.points[s.n]
	s.n++

	p := s.g.probe
	err := runBlocks(p.s, generateGoTo(p.opt.SafeZ, pt[0], pt[1])...)
	if err != nil {
		s.err = fmt.Errorf("move to %g,%g: %w", pt[0], pt[1], err)
		return false
	}

	res, err := p.Probe(s.g.opt.ZMin, s.g.opt.FeedRate)
	if err != nil {
		s.err = fmt.Errorf("probe %g,%g: %w", pt[0], pt[1], err)
		return false
	}
	if !res.Valid {
		s.err = fmt.Errorf("%w at %g,%g", ErrProbeFailed, pt[0], pt[1])
		return false
	}

	s.cur = res.Point.Sub(p.s.WCO())
	p.log.Info("probed", zap.Int("n", s.n), zap.Int("total", len(s.points)), zap.Stringer("position", s.cur))
	return true
}

// Point returns the last probed position in work coordinates.
func (s *GridScan) Point() coord.Point { return s.cur }

// Err returns the error that stopped the scan, if any.
func (s *GridScan) Err() error { return s.err }

// Progress returns the number of points probed so far and the total.
func (s *GridScan) Progress() (done, total int) { return s.n, len(s.points) }
