// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bureau-foundation/armada/cmd/armada/cli"
	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/captain"
	"github.com/bureau-foundation/armada/lib/clock"
	"github.com/bureau-foundation/armada/lib/config"
	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/grid"
	"github.com/bureau-foundation/armada/lib/ursula"
)

// arbiterGrace bounds the wait for ursula to see the fleet's last
// events once the captain has finished.
const arbiterGrace = 5 * time.Second

type simParams struct {
	cli.LogParams
	cli.ConfigParams
	Map      string `flag:"map" desc:"chart file (default paths.map)"`
	Ships    string `flag:"ships" desc:"fleet manifest (default paths.manifest)"`
	Random   bool   `flag:"random" desc:"autonomous ships instead of operator commands"`
	Steps    int    `flag:"steps" desc:"moves per autonomous ship (default ship.steps)"`
	Food     int    `flag:"food" desc:"starting food per ship (default ship.food)"`
	Treasury int    `flag:"treasury" desc:"ursula's starting treasury (default ursula.treasury)"`
	Seed     uint64 `flag:"seed" desc:"seed for ship moves and combat winners (default ursula.seed)"`
	Journal  string `flag:"journal" desc:"SQLite journal (default paths.journal)"`
	Snapshot string `flag:"snapshot" desc:"file to write ursula's final registry to (default paths.snapshot)"`
}

func simCommand() *cli.Command {
	var params simParams

	return &cli.Command{
		Name:    "sim",
		Summary: "Run ursula, a captain and its fleet in one process",
		Description: `Run the whole simulation in one process.

Ursula, the captain and every ship run as goroutines. The bus is an
in-memory pipe and signals travel over channels, so no FIFO is created
and no child process is started. Operator commands are the same as for
"armada captain".`,
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Reproducible random fleet",
				Command:     "armada sim --map map.txt --ships ships.txt --random --steps 20 --seed 7",
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
				c.Paths.Journal = firstSet(params.Journal, c.Paths.Journal)
				c.Paths.Snapshot = firstSet(params.Snapshot, c.Paths.Snapshot)
				c.Ship.Steps = firstSet(params.Steps, c.Ship.Steps)
				c.Ship.Food = firstSet(params.Food, c.Ship.Food)
				c.Ursula.Treasury = firstSet(params.Treasury, c.Ursula.Treasury)
				c.Ursula.Seed = firstSet(params.Seed, c.Ursula.Seed)
				if params.Random {
					c.Captain.Mode = config.ModeAutonomous
				}
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSim(ctx, simulation{
				Config: cfg,
				Input:  os.Stdin,
				Output: os.Stdout,
				Logger: logger,
			})
		},
	}
}

// simulation is everything runSim needs beyond the config.
type simulation struct {
	Config *config.Config
	Input  io.Reader
	Output io.Writer
	Clock  clock.Clock
	Logger *slog.Logger
}

func runSim(ctx context.Context, sim simulation) error {
	cfg, logger := sim.Config, sim.Logger
	if sim.Clock == nil {
		sim.Clock = clock.Real()
	}

	chart, err := grid.Load(cfg.Paths.Map)
	if err != nil {
		return err
	}
	entries, err := readManifest(cfg.Paths.Manifest, logger)
	if err != nil {
		return err
	}

	session, err := openSession(ctx, cfg.Paths.Journal, "sim", logger)
	if err != nil {
		return err
	}
	defer session.close(logger)

	pipe := bus.NewPipe(logger)
	directory := control.NewDirectory(1)
	captainPID, captainInbox := directory.Register()
	defer directory.Unregister(captainPID)

	arbiter, err := ursula.New(ursula.Config{
		Signaler: directory,
		Treasury: cfg.Ursula.Treasury,
		Intn:     picker(cfg.Ursula.Seed),
		Recorder: session.recorder(),
		Logger:   logger.With("role", "ursula"),
	})
	if err != nil {
		pipe.Close()
		return err
	}

	// Ursula outlives an interrupt so she can watch the fleet wind down.
	arbiterCtx, cancelArbiter := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelArbiter()
	arbiterDone := make(chan error, 1)
	go func() {
		err := arbiter.Run(arbiterCtx, pipe.Reader())
		// Later publishes fail and are dropped instead of blocking.
		pipe.Close()
		arbiterDone <- err
	}()

	fleet, err := captain.New(captain.Config{
		PID:  captainPID,
		Grid: chart.Clone(),
		Spawner: &captain.LocalSpawner{
			Grid:      chart,
			Directory: directory,
			Publisher: pipe.Publisher(),
			Clock:     sim.Clock,
			Food:      cfg.Ship.Food,
			Intn:      picker(cfg.Ursula.Seed),
			Logger:    logger.With("role", "ship"),
		},
		Publisher:    pipe.Publisher(),
		Mode:         fleetMode(cfg.Captain.Mode),
		Steps:        cfg.Ship.Steps,
		Controls:     captainInbox,
		Input:        sim.Input,
		Output:       sim.Output,
		Clock:        sim.Clock,
		ReplyTimeout: cfg.Captain.ReplyTimeout,
		Logger:       logger.With("role", "captain"),
	})
	if err != nil {
		cancelArbiter()
		<-arbiterDone
		return err
	}

	if fleet.LaunchFleet(ctx, entries) == 0 {
		logger.Warn("no ship could be launched")
	}
	fleet.Run(ctx)

	var runErr error
	select {
	case runErr = <-arbiterDone:
	case <-sim.Clock.After(arbiterGrace):
		logger.Warn("ursula did not close the session, stopping her")
		cancelArbiter()
		runErr = <-arbiterDone
	}

	fmt.Fprintln(sim.Output)
	return finishArbiter(arbiter, runErr, cfg.Paths.Snapshot, session, sim.Output, logger)
}
