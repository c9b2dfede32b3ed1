// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package captain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/clock"
	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/grid"
	"github.com/bureau-foundation/armada/lib/process"
	"github.com/bureau-foundation/armada/lib/protocol"
	"github.com/bureau-foundation/armada/lib/ship"
)

// DefaultReplyTimeout bounds every round trip with a ship.
const DefaultReplyTimeout = 5 * time.Second

// Config describes a captain.
type Config struct {
	// PID identifies the captain to ursula.
	PID int

	// Grid is the captain's chart, used for pre-flight and local move
	// checks and for the "map" command.
	Grid *grid.Grid

	Spawner Spawner

	// Publisher reaches ursula. Nil runs without a bus; the captain
	// then neither registers nor signs off.
	Publisher bus.Publisher

	// Mode is the mode every ship is launched in. Autonomous fleets
	// take no operator commands.
	Mode ship.Mode

	// Steps is the autonomous move budget per ship.
	Steps int

	// Controls delivers interrupts and ursula's shutdown signal.
	Controls <-chan control.Signal

	// Input carries operator commands in commanded mode.
	Input io.Reader

	// Output receives console text: replies, status lines and the
	// final score table.
	Output io.Writer

	Clock        clock.Clock
	ReplyTimeout time.Duration
	Logger       *slog.Logger
}

// Result is how one ship ended.
type Result struct {
	ID     int
	PID    int
	Status process.ExitStatus
}

// record is the captain's replica of one launched ship. Only the
// captain loop touches it.
type record struct {
	id     int
	handle Handle
	x, y   int
	alive  bool
	status process.ExitStatus

	// Moves forwarded to the ship and not yet answered, oldest first.
	// A ship answers directives in order, so each OK or NOK settles
	// the head of the queue, however late it arrives.
	unanswered []pendingMove

	// Set when the ship reported that it could not start.
	abort string

	// Closed once every response line has reached the loop.
	pumped chan struct{}
}

// pendingMove is a forwarded move and the cell it leads to.
type pendingMove struct {
	direction protocol.Direction
	x, y      int
}

// Captain orchestrates a fleet. Create with New, launch with
// LaunchFleet, then Run.
type Captain struct {
	pid          int
	grid         *grid.Grid
	spawner      Spawner
	publisher    bus.Publisher
	registered   bool
	mode         ship.Mode
	steps        int
	controls     <-chan control.Signal
	input        io.Reader
	console      *console
	clock        clock.Clock
	replyTimeout time.Duration
	logger       *slog.Logger

	records []*record
	live    int

	// Set once every live ship has been told to terminate; later
	// interrupts are not re-broadcast.
	terminating bool

	// Fed by per-ship goroutines, consumed by the loop.
	replies chan reply
	reaps   chan reap
}

type reply struct {
	record *record
	line   string
	closed bool
}

type reap struct {
	record *record
	status process.ExitStatus
}

// New validates config and returns a captain with no ships.
func New(config Config) (*Captain, error) {
	if config.Grid == nil {
		return nil, errors.New("captain needs a grid")
	}
	if config.Spawner == nil {
		return nil, errors.New("captain needs a spawner")
	}
	if config.Mode == ship.Autonomous && config.Steps == 0 {
		config.Steps = ship.DefaultSteps
	}

	c := &Captain{
		pid:          config.PID,
		grid:         config.Grid,
		spawner:      config.Spawner,
		publisher:    config.Publisher,
		registered:   config.Publisher != nil,
		mode:         config.Mode,
		steps:        config.Steps,
		controls:     config.Controls,
		input:        config.Input,
		clock:        config.Clock,
		replyTimeout: config.ReplyTimeout,
		logger:       config.Logger,
		replies:      make(chan reply),
		reaps:        make(chan reap),
	}
	if c.publisher == nil {
		c.publisher = bus.Discard
	}
	output := config.Output
	if output == nil {
		output = io.Discard
	}
	c.console = newConsole(output)
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.replyTimeout <= 0 {
		c.replyTimeout = DefaultReplyTimeout
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

// LaunchFleet starts one ship per manifest entry and returns how many
// are live. Entries whose start cell is not navigable on the captain's
// chart, entries reusing an id, and entries whose spawn fails are
// logged and skipped; each spawn is attempted once.
func (c *Captain) LaunchFleet(ctx context.Context, entries []protocol.ManifestEntry) int {
	seen := make(map[int]bool)
	for _, entry := range entries {
		logger := c.logger.With("ship_id", entry.ID, "line", entry.Line)
		if seen[entry.ID] {
			logger.Warn("skipping duplicate ship id")
			continue
		}
		if !c.grid.CanSail(entry.X, entry.Y) {
			logger.Warn("skipping ship: start cell not navigable", "x", entry.X, "y", entry.Y)
			continue
		}

		spec := ShipSpec{ID: entry.ID, X: entry.X, Y: entry.Y, Mode: c.mode}
		if c.mode == ship.Autonomous {
			spec.Steps = c.steps
			spec.Period = time.Duration(entry.Speed) * time.Second
		}
		handle, err := c.spawner.Spawn(ctx, spec)
		if err != nil {
			logger.Warn("ship failed to launch", "error", err)
			continue
		}

		seen[entry.ID] = true
		c.records = append(c.records, &record{
			id:     entry.ID,
			handle: handle,
			x:      entry.X,
			y:      entry.Y,
			alive:  true,
			pumped: make(chan struct{}),
		})
		c.live++
		c.grid.MarkOccupied(entry.X, entry.Y)
		logger.Info("ship launched", "pid", handle.PID(), "x", entry.X, "y", entry.Y)
	}
	return c.live
}

// Live returns the number of ships not yet reaped.
func (c *Captain) Live() int { return c.live }

// Results lists every launched ship in launch order. Ships still
// running have a zero status.
func (c *Captain) Results() []Result {
	results := make([]Result, 0, len(c.records))
	for _, rec := range c.records {
		results = append(results, Result{ID: rec.id, PID: rec.handle.PID(), Status: rec.status})
	}
	return results
}

// lookup returns the live record for a manifest id.
func (c *Captain) lookup(id int) *record {
	for _, rec := range c.records {
		if rec.id == id && rec.alive {
			return rec
		}
	}
	return nil
}

// relocate moves rec's replica to (x, y) and updates the overlay.
func (c *Captain) relocate(rec *record, x, y int) {
	c.vacate(rec)
	rec.x, rec.y = x, y
	c.grid.MarkOccupied(x, y)
}

// vacate clears rec's cell in the overlay unless another live ship
// shares it.
func (c *Captain) vacate(rec *record) {
	if c.occupant(rec.x, rec.y, rec) == nil {
		c.grid.ClearOccupied(rec.x, rec.y)
	}
}

// occupant returns another live record last seen at (x, y).
func (c *Captain) occupant(x, y int, except *record) *record {
	for _, rec := range c.records {
		if rec != except && rec.alive && rec.x == x && rec.y == y {
			return rec
		}
	}
	return nil
}
