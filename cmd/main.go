package main

import (
	"context"
	"fmt"
	"os"

	"dmxsend/internal/app"
	"dmxsend/internal/config"
	"dmxsend/internal/device"
	"dmxsend/internal/dmx"
	"dmxsend/internal/logger"
	"dmxsend/internal/universe"
)

// Channel tokens such as "-3" look like flags, so the config file comes from
// the environment instead of a command line flag.
const configEnv = "DMX_CONFIG"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.NewConfig(os.Getenv(configEnv))
	if err != nil {
		return fmt.Errorf("configuration file read error: %w", err)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create a logger: %w", err)
	}
	log.With(logger.Fields{"module": "logger"}).Debug("newLogger created ok")

	store := universe.NewStore(log, cfg.State.Path)
	tx := dmx.NewTransmitter(log, device.NewFTDI(log, cfg.Device))

	return app.New(log, store, tx).Run(context.Background(), args)
}
