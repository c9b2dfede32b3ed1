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
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bureau-foundation/armada/cmd/armada/cli"
	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/config"
	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/journal"
	"github.com/bureau-foundation/armada/lib/ursula"
)

type ursulaParams struct {
	cli.LogParams
	cli.ConfigParams
	Bus      string `flag:"bus" desc:"named pipe to create and read events from (default paths.bus)"`
	Treasury int    `flag:"treasury" desc:"starting treasury (default ursula.treasury)"`
	Journal  string `flag:"journal" desc:"SQLite journal of every event and combat (default paths.journal)"`
	Snapshot string `flag:"snapshot" desc:"file to write the final registry to (default paths.snapshot)"`
	Seed     uint64 `flag:"seed" desc:"seed for combat winners; 0 picks at random (default ursula.seed)"`
}

func ursulaCommand() *cli.Command {
	var params ursulaParams

	return &cli.Command{
		Name:    "ursula",
		Summary: "Run the arbiter that referees combat",
		Description: `Run ursula, the arbiter.

Ursula creates the bus FIFO and reads ship and captain events from it.
Whenever two or more ships end up in the same cell she picks a winner,
penalises the losers and pays the winner from their losses, topping up
from the treasury. If the treasury cannot cover a reward every captain
is told to shut down and ursula exits with status 1.

Ursula exits once at least one captain has registered and every
captain and ship has gone.`,
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Referee with a small treasury and keep a journal",
				Command:     "armada ursula --bus /tmp/armada.bus --treasury 30 --journal armada.db",
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
				c.Paths.Bus = firstSet(params.Bus, c.Paths.Bus)
				c.Paths.Journal = firstSet(params.Journal, c.Paths.Journal)
				c.Paths.Snapshot = firstSet(params.Snapshot, c.Paths.Snapshot)
				c.Ursula.Treasury = firstSet(params.Treasury, c.Ursula.Treasury)
				c.Ursula.Seed = firstSet(params.Seed, c.Ursula.Seed)
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runUrsula(ctx, cfg, logger)
		},
	}
}

func runUrsula(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	busPath := cfg.Paths.Bus
	if err := os.MkdirAll(filepath.Dir(busPath), 0o755); err != nil {
		return fmt.Errorf("creating bus directory: %w", err)
	}
	if err := bus.CreateFIFO(busPath); err != nil {
		return err
	}
	defer func() {
		if err := bus.RemoveFIFO(busPath); err != nil {
			logger.Warn("removing bus", "path", busPath, "error", err)
		}
	}()

	reader, err := bus.OpenFIFOReader(busPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	session, err := openSession(ctx, cfg.Paths.Journal, "ursula", logger)
	if err != nil {
		return err
	}
	defer session.close(logger)

	arbiter, err := ursula.New(ursula.Config{
		Signaler: control.UnixSignaler{},
		Treasury: cfg.Ursula.Treasury,
		Intn:     picker(cfg.Ursula.Seed),
		Recorder: session.recorder(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	logger.Info("ursula started", "pid", os.Getpid(), "bus", busPath, "treasury", cfg.Ursula.Treasury)
	runErr := arbiter.Run(ctx, reader)
	return finishArbiter(arbiter, runErr, cfg.Paths.Snapshot, session, os.Stdout, logger)
}

// finishArbiter records how the arbiter ended, prints the report and
// maps the outcome onto the command's error.
func finishArbiter(arbiter *ursula.Arbiter, runErr error, snapshotPath string, session *session, out io.Writer, logger *slog.Logger) error {
	outcome := ursula.OutcomeQuiescent
	switch {
	case runErr == nil:
	case errors.Is(runErr, ursula.ErrBankrupt):
		outcome = ursula.OutcomeBankrupt
	case errors.Is(runErr, context.Canceled):
		outcome = ursula.OutcomeInterrupted
	default:
		outcome = ursula.OutcomeFailed
	}

	snapshot := arbiter.Snapshot(outcome, time.Now())
	if snapshotPath != "" {
		if err := ursula.WriteSnapshot(snapshotPath, snapshot); err != nil {
			logger.Error("writing snapshot", "path", snapshotPath, "error", err)
		} else {
			logger.Info("snapshot written", "path", snapshotPath)
		}
	}
	session.end(outcome, logger)
	if err := snapshot.Report(out); err != nil {
		logger.Warn("printing report", "error", err)
	}

	switch outcome {
	case ursula.OutcomeBankrupt:
		return &cli.ExitError{Code: 1}
	case ursula.OutcomeFailed:
		return runErr
	}
	return nil
}

// session is the optional journal behind an arbiter.
type session struct {
	journal *journal.Journal
	run     *journal.Run
}

func openSession(ctx context.Context, path, label string, logger *slog.Logger) (*session, error) {
	if path == "" {
		return &session{}, nil
	}
	store, err := journal.Open(ctx, journal.Config{Path: path, Logger: logger})
	if err != nil {
		return nil, err
	}
	run, err := store.Begin(ctx, label)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &session{journal: store, run: run}, nil
}

// recorder returns the arbiter's recorder, nil without a journal.
func (s *session) recorder() ursula.Recorder {
	if s.run == nil {
		return nil
	}
	return s.run
}

func (s *session) end(outcome string, logger *slog.Logger) {
	if s.run == nil {
		return
	}
	if err := s.run.End(context.Background(), outcome); err != nil {
		logger.Warn("closing journal run", "run_id", s.run.ID(), "error", err)
	}
}

func (s *session) close(logger *slog.Logger) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Close(); err != nil {
		logger.Warn("closing journal", "error", err)
	}
}
