package main

import (
	"context"
	"io"
	"strings"

	"github.com/tarm/serial"
	"go.uber.org/zap"

	"github.com/mastercactapus/autolevel/internal/env"
	"github.com/mastercactapus/autolevel/spjs"
)

// openDevice opens a serial port directly, or through a Serial Port JSON
// Server when device is a websocket URL.
func openDevice(ctx context.Context, device string, conf *env.Config, log *zap.Logger) (io.ReadWriteCloser, error) {
	if strings.HasPrefix(device, "ws://") || strings.HasPrefix(device, "wss://") {
		return spjs.Open(ctx, spjs.Config{
			URL:  device,
			Port: conf.SPJSPort,
			Baud: conf.Baud,
			Log:  log.Named("spjs"),
		})
	}

	log.Info("opening serial port", zap.String("device", device), zap.Int("baud", conf.Baud))
	return serial.OpenPort(&serial.Config{
		Name: strings.TrimPrefix(device, "serial:"),
		Baud: conf.Baud,
	})
}
