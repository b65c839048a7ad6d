package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mastercactapus/autolevel/coord"
	"github.com/mastercactapus/autolevel/gcode"
	"github.com/mastercactapus/autolevel/meshlevel"
)

// Path to the probed points file
var pointsFile string

func init() {
	for _, cmd := range []*cobra.Command{AdjustCmd, ExtentCmd} {
		cmd.Flags().StringVarP(&gcodeFile, "gcode", "g", "", "path to input gcode file")
		if err := cmd.MarkFlagRequired("gcode"); err != nil {
			panic(err)
		}
	}

	AdjustCmd.Flags().StringVarP(&pointsFile, "points", "p", "", "path to points file")
	if err := AdjustCmd.MarkFlagRequired("points"); err != nil {
		panic(err)
	}
}

func readToolpath(name string) (gcode.Toolpath, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return gcode.Toolpath{}, err
	}
	return gcode.ParseToolpath(string(data)), nil
}

func readPoints(name string) ([]coord.Point, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	points, err := coord.ReadPoints(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return points, nil
}

var AdjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Adjust gcode Z values to the probed surface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tp, err := readToolpath(gcodeFile)
		if err != nil {
			return err
		}
		points, err := readPoints(pointsFile)
		if err != nil {
			return err
		}

		res, err := meshlevel.AdjustZ(tp, points)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.String())
		return err
	},
}

var ExtentCmd = &cobra.Command{
	Use:   "extent",
	Short: "Output the gcode extent on each axis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tp, err := readToolpath(gcodeFile)
		if err != nil {
			return err
		}

		mins, maxes := meshlevel.Extent(tp)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "x: %f - %f\n", mins.X, maxes.X)
		fmt.Fprintf(out, "y: %f - %f\n", mins.Y, maxes.Y)
		fmt.Fprintf(out, "z: %f - %f\n", mins.Z, maxes.Z)
		return nil
	},
}
