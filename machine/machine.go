package machine

import (
	"context"
	"errors"

	"github.com/mastercactapus/autolevel/coord"
	"github.com/mastercactapus/autolevel/gcode"
	"github.com/mastercactapus/autolevel/machine/grbl"
)

var (
	// ErrProbeFailed is returned when the probe reached its travel limit without contact.
	ErrProbeFailed = errors.New("probe failed")

	// ErrNoProbeReport is returned when a probe command completed without a PRB report.
	ErrNoProbeReport = errors.New("no probe data returned")
)

// Sender is the part of *grbl.Sender used to run probe operations.
type Sender interface {
	SendBlock(gcode.Block) (grbl.Response, error)
	ReadMessages() []string
	WaitUntilIdle(context.Context) error
	WCO() coord.Point
}

var _ Sender = &grbl.Sender{}

func runBlocks(s Sender, b ...gcode.Block) error {
	for _, bl := range b {
		_, err := s.SendBlock(bl)
		if err != nil {
			return err
		}
	}
	return nil
}

// generateGoTo raises to travelZ before moving to x,y (work coordinates).
func generateGoTo(travelZ, x, y float64) []gcode.Block {
	return []gcode.Block{
		{
			{W: 'G', Arg: 0},
			{W: 'Z', Arg: travelZ},
		},
		{
			{W: 'G', Arg: 0},
			{W: 'X', Arg: x},
			{W: 'Y', Arg: y},
		},
	}
}
