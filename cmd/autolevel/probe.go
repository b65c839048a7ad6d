package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mastercactapus/autolevel/coord"
	"github.com/mastercactapus/autolevel/machine"
	"github.com/mastercactapus/autolevel/machine/grbl"
)

var (
	// The controller serial port, or SPJS websocket URL
	device string

	// Output points file
	outputFile string

	// Address to serve progress events on
	eventsAddr string

	grid machine.GridOptions

	originZMin     float64
	originFeedRate float64
)

func init() {
	flags := ProbeCmd.Flags()

	flags.StringVarP(&device, "device", "d", "", "serial device, or ws:// URL of a Serial Port JSON Server")
	flags.StringVarP(&outputFile, "output", "o", "", "path to output points file")
	flags.Float64Var(&grid.XMax, "x-max", 0, "grid size in X")
	flags.Float64Var(&grid.XStep, "x-step", 10, "max distance between points in X")
	flags.Float64Var(&grid.YMax, "y-max", 0, "grid size in Y")
	flags.Float64Var(&grid.YStep, "y-step", 10, "max distance between points in Y")
	flags.Float64Var(&grid.ZMin, "z-min", -0.5, "lowest Z to probe to at each point")
	flags.Float64Var(&grid.FeedRate, "feedrate", 50, "probe feed rate")
	flags.Float64Var(&originZMin, "origin-z-min", -10, "lowest Z to probe to when finding the Z origin")
	flags.Float64Var(&originFeedRate, "origin-feedrate", 50, "feed rate when finding the Z origin")
	flags.StringVar(&eventsAddr, "events", "", "serve progress as server-sent events on this address")

	for _, name := range []string{"device", "output", "x-max", "y-max"} {
		if err := ProbeCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

var ProbeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Find the Z origin then probe a grid of points",
	Long: `Find the Z origin then probe a grid of points

The grid starts at the current X/Y work origin. The tool is lowered until
it touches the surface to set Z0, then every grid point is probed and
written to the output file as x,y,z lines.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		if err := grid.Validate(); err != nil {
			return err
		}

		ctx, signalStop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer signalStop()

		var ev *events
		if eventsAddr != "" {
			ev = newEvents(logger.Named("events"))
			if err := ev.listen(eventsAddr); err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				err = multierr.Append(err, ev.Close(ctx))
			}()
		}

		rw, err := openDevice(ctx, device, conf, logger)
		if err != nil {
			return err
		}
		s, err := grbl.NewSender(rw, grbl.Config{
			Log:          logger.Named("grbl"),
			PollInterval: conf.PollInterval,
		})
		if err != nil {
			return multierr.Append(err, rw.Close())
		}
		defer func() { err = multierr.Append(err, s.Close()) }()

		points, err := probeSurface(ctx, s, ev)
		if err != nil {
			return err
		}

		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		err = coord.WritePoints(f, points)
		return multierr.Append(err, f.Close())
	},
}

// idleContext bounds a wait for the controller by the configured timeout.
func idleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if conf.IdleTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, conf.IdleTimeout)
}

func probeSurface(ctx context.Context, s *grbl.Sender, ev *events) ([]coord.Point, error) {
	p := machine.NewProbe(s, machine.ProbeOptions{
		SafeZ:   conf.SafeZ,
		Retract: true,
		Log:     logger.Named("probe"),
	})

	ev.Status("origin", 0, 0)
	waitCtx, cancel := idleContext(ctx)
	_, err := p.FindZOrigin(waitCtx, originZMin, originFeedRate)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("find Z origin: %w", err)
	}

	g := machine.NewGridProbe(p, grid)
	scan := g.Scan()
	var points []coord.Point
	for scan.Next(ctx) {
		pt := scan.Point()
		points = append(points, pt)
		ev.Point(pt)
		done, total := scan.Progress()
		ev.Status("probing", done, total)
	}
	if err := scan.Err(); err != nil {
		ev.Status("failed", len(points), len(g.Points()))
		return nil, err
	}

	if err := g.Finish(); err != nil {
		return nil, err
	}
	waitCtx, cancel = idleContext(ctx)
	defer cancel()
	if err := s.WaitUntilIdle(waitCtx); err != nil {
		return nil, err
	}
	ev.Status("done", len(points), len(points))
	logger.Info("probe complete", zap.Int("points", len(points)))

	return points, nil
}
