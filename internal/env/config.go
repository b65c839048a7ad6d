package env

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds settings read from the environment. Command line flags
// take precedence where both exist.
type Config struct {
	Baud         int           `env:"AUTOLEVEL_BAUD,default=115200"`
	PollInterval time.Duration `env:"AUTOLEVEL_POLL_INTERVAL,default=200ms"`

	// IdleTimeout bounds each wait for the controller to become idle.
	// Zero waits forever.
	IdleTimeout time.Duration `env:"AUTOLEVEL_IDLE_TIMEOUT,default=0s"`
	LogLevel    string        `env:"AUTOLEVEL_LOG_LEVEL,default=info"`

	// SPJSPort is the serial port name used with ws:// devices.
	SPJSPort string  `env:"AUTOLEVEL_SPJS_PORT"`
	SafeZ    float64 `env:"AUTOLEVEL_SAFE_Z,default=1"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
