package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mastercactapus/autolevel/internal/env"
)

var (
	conf   *env.Config
	logger *zap.Logger

	// Path to the gcode file
	gcodeFile string
)

var RootCmd = &cobra.Command{
	Use:   "autolevel",
	Short: "Probe a PCB blank and level gcode to its surface",
	Long: `Probe a PCB blank and level gcode to its surface

Usage
	autolevel probe -d /dev/ttyUSB0 -o points.csv --x-max 50 --y-max 30
	autolevel adjust -g board.nc -p points.csv > board-leveled.nc
	autolevel extent -g board.nc

Settings are read from the environment (and .env.local):
	AUTOLEVEL_BAUD, AUTOLEVEL_POLL_INTERVAL, AUTOLEVEL_IDLE_TIMEOUT,
	AUTOLEVEL_LOG_LEVEL, AUTOLEVEL_SPJS_PORT, AUTOLEVEL_SAFE_Z
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		conf, err = env.LoadConfig(cmd.Context())
		if err != nil {
			return err
		}

		logger, err = makeLogger(conf.LogLevel)
		return err
	},
}

var makeLogger = env.MakeLogger

func init() {
	RootCmd.AddCommand(AdjustCmd, ExtentCmd, ProbeCmd)
}

// execute runs the command line and flushes the logger, whether
// the command failed or not.
func execute() error {
	err := RootCmd.Execute()
	if logger != nil {
		// syncing a terminal stderr fails on some platforms
		_ = logger.Sync()
	}
	return err
}

func Execute() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
