// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/bureau-foundation/armada/cmd/armada/cli"
	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/captain"
	"github.com/bureau-foundation/armada/lib/config"
	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/grid"
	"github.com/bureau-foundation/armada/lib/ship"
)

type captainParams struct {
	cli.LogParams
	cli.ConfigParams
	Map          string        `flag:"map" desc:"chart file (default paths.map)"`
	Ships        string        `flag:"ships" desc:"fleet manifest, one \"ID (X,Y) SPEED\" per line (default paths.manifest)"`
	Bus          string        `flag:"bus" desc:"ursula's named pipe; empty sails without an arbiter"`
	Random       bool          `flag:"random" desc:"launch autonomous ships instead of taking commands"`
	Steps        int           `flag:"steps" desc:"moves per autonomous ship (default ship.steps)"`
	Food         int           `flag:"food" desc:"starting food per ship (default ship.food)"`
	ReplyTimeout time.Duration `flag:"reply-timeout" desc:"how long to wait for a ship to answer (default captain.reply_timeout)"`
	ShipBinary   string        `flag:"ship-binary" desc:"executable to launch ships with (default: this binary)"`
	Name         string        `flag:"name" desc:"captain name used in logs (default captain.name)"`
}

func captainCommand() *cli.Command {
	var params captainParams

	return &cli.Command{
		Name:    "captain",
		Summary: "Launch a fleet and command it",
		Description: `Launch one ship process per manifest line and command the fleet.

In commanded mode the captain reads operator commands on stdin:

  <id> up|down|left|right   move a ship
  <id> status               show one ship
  <id> exit                 send a ship home
  status                    show every ship
  map                       print the chart with the fleet on it
  exit                      send every ship home

With --random each ship instead sails on its own for --steps moves,
one move every SPEED seconds from the manifest.

When every ship has gone the captain prints each ship's gold.`,
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Command a fleet refereed by ursula",
				Command:     "armada captain --map map.txt --ships ships.txt --bus /tmp/armada.bus",
			},
			{
				Description: "Let the fleet sail on its own for 10 moves",
				Command:     "armada captain --map map.txt --ships ships.txt --random --steps 10",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			cfg, err := loadConfig(params.ConfigPath)
			if err != nil {
				return err
			}
			cfg, err = validated(cfg, func(c *config.Config) {
				c.Paths.Map = firstSet(params.Map, c.Paths.Map)
				c.Paths.Manifest = firstSet(params.Ships, c.Paths.Manifest)
				c.Ship.Steps = firstSet(params.Steps, c.Ship.Steps)
				c.Ship.Food = firstSet(params.Food, c.Ship.Food)
				c.Captain.ReplyTimeout = firstSet(params.ReplyTimeout, c.Captain.ReplyTimeout)
				c.Captain.ShipBinary = firstSet(params.ShipBinary, c.Captain.ShipBinary)
				c.Captain.Name = firstSet(params.Name, c.Captain.Name)
				if params.Random {
					c.Captain.Mode = config.ModeAutonomous
				}
			})
			if err != nil {
				return err
			}
			if cfg.Captain.Name != "" {
				logger = logger.With("captain", cfg.Captain.Name)
			}
			return runCaptain(ctx, cfg, params.Bus, params.LogLevel, logger)
		},
	}
}

func runCaptain(ctx context.Context, cfg *config.Config, busPath, logLevel string, logger *slog.Logger) error {
	chart, err := grid.Load(cfg.Paths.Map)
	if err != nil {
		return err
	}
	entries, err := readManifest(cfg.Paths.Manifest, logger)
	if err != nil {
		return err
	}

	var publisher bus.Publisher
	if busPath != "" {
		fifo := bus.NewFIFOPublisher(busPath, logger)
		defer fifo.Close()
		publisher = fifo
	}

	// SIGINT is both the operator's ^C and ursula's shutdown order.
	controls, stop := control.NotifyOS(
		[]control.Signal{control.Shutdown},
		map[os.Signal]control.Signal{syscall.SIGTERM: control.Shutdown},
	)
	defer stop()

	spawner := &captain.ExecSpawner{
		Binary:    cfg.Captain.ShipBinary,
		MapPath:   cfg.Paths.Map,
		MapDigest: chart.Digest(),
		BusPath:   busPath,
		Food:      cfg.Ship.Food,
		LogLevel:  logLevel,
		Logger:    logger,
	}

	fleet, err := captain.New(captain.Config{
		PID:          os.Getpid(),
		Grid:         chart,
		Spawner:      spawner,
		Publisher:    publisher,
		Mode:         fleetMode(cfg.Captain.Mode),
		Steps:        cfg.Ship.Steps,
		Controls:     controls,
		Input:        os.Stdin,
		Output:       os.Stdout,
		ReplyTimeout: cfg.Captain.ReplyTimeout,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	if fleet.LaunchFleet(ctx, entries) == 0 {
		logger.Warn("no ship could be launched")
	}
	fleet.Run(ctx)
	return nil
}

func fleetMode(mode string) ship.Mode {
	if mode == config.ModeAutonomous {
		return ship.Autonomous
	}
	return ship.Commanded
}
