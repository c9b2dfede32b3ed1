// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/bureau-foundation/armada/cmd/armada/cli"
	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/config"
	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/grid"
	"github.com/bureau-foundation/armada/lib/process"
	"github.com/bureau-foundation/armada/lib/protocol"
	"github.com/bureau-foundation/armada/lib/ship"
)

type shipParams struct {
	cli.LogParams
	cli.ConfigParams
	Map       string        `flag:"map" desc:"chart file (default paths.map)"`
	MapDigest string        `flag:"map-digest" desc:"refuse to sail unless the chart has this digest"`
	X         int           `flag:"x" desc:"starting column" default:"-1"`
	Y         int           `flag:"y" desc:"starting row" default:"-1"`
	Food      int           `flag:"food" desc:"starting food (default ship.food)"`
	Bus       string        `flag:"bus" desc:"ursula's named pipe; empty sails without one"`
	Captain   bool          `flag:"captain" desc:"take directives on stdin and answer on stdout"`
	Random    bool          `flag:"random" desc:"move in a random direction every period"`
	Steps     int           `flag:"steps" desc:"random moves before leaving; negative is unlimited (default ship.steps)"`
	Period    time.Duration `flag:"period" desc:"time between random moves (default ship.period)"`
}

func shipCommand() *cli.Command {
	var params shipParams

	return &cli.Command{
		Name:    "ship",
		Summary: "Run a single ship (normally started by a captain)",
		Description: `Run one ship.

A ship under --captain reads one directive per line on stdin (up, down,
left, right or exit) and answers OK or NOK on stdout. A --random ship
picks a direction every --period until its --steps run out.

Moving costs 5 food. Landing on an island earns 10 gold and a port
restocks 20 food. SIGUSR1 and SIGUSR2 deliver ursula's reward and
penalty, SIGTSTP asks for a status line and SIGQUIT ends the voyage.

The exit status is the gold collected, capped at 255. A ship that
cannot start writes "ABORT: <reason>" on stdout before exiting, so a
captain can tell a failed launch from a poor voyage.`,
		Usage:  "armada ship --map FILE --x X --y Y (--captain | --random) [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			err := runShip(ctx, args, &params, logger)
			reportAbort(os.Stdout, err)
			return err
		},
	}
}

// reportAbort writes the abort line for err, unless err is nil or
// already carries an exit status.
func reportAbort(w io.Writer, err error) {
	var exit *cli.ExitError
	if err == nil || errors.As(err, &exit) {
		return
	}
	fmt.Fprintln(w, protocol.AbortLine(err.Error()))
}

func runShip(ctx context.Context, args []string, params *shipParams, logger *slog.Logger) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q", args[0])
	}
	mode, err := shipMode(params.Captain, params.Random)
	if err != nil {
		return err
	}
	if params.X < 0 || params.Y < 0 {
		return errors.New("--x and --y are required and must not be negative")
	}

	cfg, err := loadConfig(params.ConfigPath)
	if err != nil {
		return err
	}
	cfg, err = validated(cfg, func(c *config.Config) {
		c.Paths.Map = firstSet(params.Map, c.Paths.Map)
		c.Ship.Food = firstSet(params.Food, c.Ship.Food)
		c.Ship.Steps = firstSet(params.Steps, c.Ship.Steps)
		c.Ship.Period = firstSet(params.Period, c.Ship.Period)
	})
	if err != nil {
		return err
	}

	chart, err := grid.Load(cfg.Paths.Map)
	if err != nil {
		return err
	}

	var publisher bus.Publisher
	if params.Bus != "" {
		fifo := bus.NewFIFOPublisher(params.Bus, logger)
		defer fifo.Close()
		publisher = fifo
	}

	controls, stop := control.NotifyOS(
		[]control.Signal{control.Reward, control.Penalty, control.Status, control.Terminate},
		map[os.Signal]control.Signal{
			syscall.SIGINT:  control.Terminate,
			syscall.SIGTERM: control.Terminate,
		},
	)
	defer stop()

	vessel, err := ship.New(ship.Config{
		PID:       os.Getpid(),
		Grid:      chart,
		MapDigest: params.MapDigest,
		X:         params.X,
		Y:         params.Y,
		Food:      cfg.Ship.Food,
		Mode:      mode,
		Steps:     cfg.Ship.Steps,
		Period:    cfg.Ship.Period,
		Publisher: publisher,
		Responses: os.Stdout,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	gold := vessel.Run(ctx, os.Stdin, controls)
	if code := process.ExitCodeForGold(gold); code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}

func shipMode(commanded, random bool) (ship.Mode, error) {
	switch {
	case commanded && random:
		return 0, errors.New("--captain and --random are mutually exclusive")
	case commanded:
		return ship.Commanded, nil
	case random:
		return ship.Autonomous, nil
	default:
		return 0, errors.New("one of --captain or --random is required")
	}
}
