package machine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mastercactapus/autolevel/coord"
	"github.com/mastercactapus/autolevel/gcode"
	"github.com/mastercactapus/autolevel/machine/grbl"
)

// ProbeResult is a decoded `[PRB:x,y,z:code]` report. The position is
// in machine coordinates.
type ProbeResult struct {
	coord.Point
	Valid bool
}

// IsProbeReport returns true if line looks like a PRB report.
func IsProbeReport(line string) bool {
	return strings.HasPrefix(line, "[PRB:") && strings.HasSuffix(line, "]")
}

// ParseProbeResult decodes a PRB report line.
func ParseProbeResult(data string) (*ProbeResult, error) {
	data = strings.TrimSpace(data)
	if !IsProbeReport(data) {
		return nil, fmt.Errorf("%w: invalid probe report '%s'", grbl.ErrParse, data)
	}
	parts := strings.Split(data[len("[PRB:"):len(data)-1], ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: invalid probe report '%s'", grbl.ErrParse, data)
	}

	var res ProbeResult
	var err error
	res.Point, err = coord.ParsePoint(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: probe report: %s", grbl.ErrParse, err)
	}
	res.Valid = parts[1] == "1"

	return &res, nil
}

// DefaultSafeZ is the travel height used when ProbeOptions.SafeZ is unset.
const DefaultSafeZ = 1.0

// ProbeOptions configure a straight z-probe operation.
type ProbeOptions struct {
	// SafeZ is the work Z height used for travel moves. Values at or
	// below the surface (<= 0) mean DefaultSafeZ.
	SafeZ float64

	// Retract will raise to SafeZ before FindZOrigin probes, in case
	// the probe is already touching the surface.
	Retract bool

	// ReturnFeed is the feed rate used to move back up to the contact
	// point after probing. Defaults to 1.
	ReturnFeed float64

	Log *zap.Logger
}

// Probe runs single-axis touch-off operations.
type Probe struct {
	s   Sender
	opt ProbeOptions
	log *zap.Logger
}

func NewProbe(s Sender, opt ProbeOptions) *Probe {
	if opt.SafeZ <= 0 {
		opt.SafeZ = DefaultSafeZ
	}
	if opt.ReturnFeed <= 0 {
		opt.ReturnFeed = 1
	}
	if opt.Log == nil {
		opt.Log = zap.NewNop()
	}
	return &Probe{s: s, opt: opt, log: opt.Log}
}

// probeCommand moves toward minZ until contact.
func probeCommand(minZ, feed float64) gcode.Block {
	return gcode.Block{
		{W: 'G', Arg: 38.2},
		{W: 'Z', Arg: minZ},
		{W: 'F', Arg: feed},
	}
}

// Probe moves down to minZ (work coordinates) until contact is made.
//
// A probe that doesn't make contact is not an error, check Valid
// on the result.
func (p *Probe) Probe(minZ, feed float64) (*ProbeResult, error) {
	_, err := p.s.SendBlock(probeCommand(minZ, feed))
	msgs := p.s.ReadMessages()
	if err != nil {
		return nil, err
	}

	var res *ProbeResult
	for _, m := range msgs {
		if !IsProbeReport(m) {
			p.log.Info("message", zap.String("message", m))
			continue
		}
		res, err = ParseProbeResult(m)
		if err != nil {
			return nil, err
		}
	}
	if res == nil {
		return nil, ErrNoProbeReport
	}

	p.log.Debug("probe", zap.Stringer("position", res.Point), zap.Bool("valid", res.Valid))
	return res, nil
}

// FindZOrigin probes down and sets work Z to zero at the contact point.
//
// After contact the machine slowly returns to the reported position to
// undo any overshoot, and the offset is only set once that move is complete.
func (p *Probe) FindZOrigin(ctx context.Context, minZ, feed float64) (*ProbeResult, error) {
	if p.opt.Retract {
		err := runBlocks(p.s, gcode.Block{{W: 'G', Arg: 0}, {W: 'Z', Arg: p.opt.SafeZ}})
		if err != nil {
			return nil, err
		}
	}

	res, err := p.Probe(minZ, feed)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, fmt.Errorf("%w: no contact before Z%g", ErrProbeFailed, minZ)
	}

	// PRB is reported in machine coordinates
	err = runBlocks(p.s, gcode.Block{
		{W: 'G', Arg: 53},
		{W: 'G', Arg: 1},
		{W: 'Z', Arg: res.Z},
		{W: 'F', Arg: p.opt.ReturnFeed},
	})
	if err != nil {
		return nil, err
	}
	err = p.s.WaitUntilIdle(ctx)
	if err != nil {
		return nil, err
	}

	err = runBlocks(p.s, gcode.Block{{W: 'G', Arg: 92}, {W: 'Z', Arg: 0}})
	if err != nil {
		return nil, err
	}
	err = p.s.WaitUntilIdle(ctx)
	if err != nil {
		return nil, err
	}

	p.log.Info("set Z origin", zap.Stringer("position", res.Point))
	return res, nil
}
