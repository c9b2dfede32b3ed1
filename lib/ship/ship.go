// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ship

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/clock"
	"github.com/bureau-foundation/armada/lib/grid"
	"github.com/bureau-foundation/armada/lib/protocol"
)

// Economy constants.
const (
	InitialFood  = 100
	MoveCost     = 5
	IslandGold   = 10
	PortFood     = 20
	RewardGold   = 10
	PenaltyFood  = 10
	PenaltyGold  = 10
	DefaultSteps = 5
)

// Mode selects what drives the ship's moves.
type Mode int

const (
	// Commanded ships move only when a directive arrives.
	Commanded Mode = iota
	// Autonomous ships move in a random direction on every tick.
	Autonomous
)

func (m Mode) String() string {
	if m == Autonomous {
		return "autonomous"
	}
	return "commanded"
}

var (
	// ErrNotNavigable is returned by New when the start cell is rock or
	// off the chart.
	ErrNotNavigable = errors.New("start cell is not navigable")

	// ErrMapMismatch is returned by New when the loaded grid does not
	// match the digest the captain expects.
	ErrMapMismatch = errors.New("map digest mismatch")
)

// Config describes a ship to create.
type Config struct {
	// PID identifies the ship on the bus and to ursula.
	PID int

	// Grid is the ship's own copy of the chart. The ship marks and
	// clears its own cell on it.
	Grid *grid.Grid

	// MapDigest, when set, must equal Grid.Digest().
	MapDigest string

	// X and Y are the starting cell.
	X, Y int

	// Food is the starting food. Zero means InitialFood.
	Food int

	Mode Mode

	// Steps is the autonomous move budget. Negative means unlimited;
	// zero is invalid in autonomous mode.
	Steps int

	// Period is the autonomous tick interval.
	Period time.Duration

	// Publisher receives bus events. Nil means no bus.
	Publisher bus.Publisher

	// Responses receives OK/NOK confirmations and status lines. Nil
	// discards them.
	Responses io.Writer

	// Clock drives autonomous ticks. Nil means the real clock.
	Clock clock.Clock

	// Intn picks a direction index in [0, n). Nil means
	// math/rand/v2.IntN.
	Intn func(n int) int

	Logger *slog.Logger
}

// Ship is one vessel. Its methods are not safe for concurrent use; Run
// calls them from a single goroutine.
type Ship struct {
	pid       int
	grid      *grid.Grid
	x, y      int
	food      int
	gold      int
	active    bool
	mode      Mode
	steps     int
	period    time.Duration
	publisher bus.Publisher
	responses io.Writer
	clock     clock.Clock
	intn      func(int) int
	logger    *slog.Logger

	responseFailed bool
}

// New places a ship on the grid and announces it with INIT. The bus
// announcement is best-effort; a missing bus never fails New.
func New(config Config) (*Ship, error) {
	if config.Grid == nil {
		return nil, errors.New("ship needs a grid")
	}
	if config.PID <= 0 {
		return nil, fmt.Errorf("invalid pid %d", config.PID)
	}
	if config.MapDigest != "" && config.MapDigest != config.Grid.Digest() {
		return nil, fmt.Errorf("%w: expected %s, loaded %s", ErrMapMismatch, config.MapDigest, config.Grid.Digest())
	}
	if config.Mode == Autonomous {
		if config.Steps == 0 {
			return nil, errors.New("autonomous ship needs a non-zero step budget")
		}
		if config.Period <= 0 {
			return nil, fmt.Errorf("autonomous ship needs a positive period, got %v", config.Period)
		}
	}
	if !config.Grid.CanSail(config.X, config.Y) {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrNotNavigable, config.X, config.Y)
	}

	ship := &Ship{
		pid:       config.PID,
		grid:      config.Grid,
		x:         config.X,
		y:         config.Y,
		food:      config.Food,
		mode:      config.Mode,
		steps:     config.Steps,
		period:    config.Period,
		publisher: config.Publisher,
		responses: config.Responses,
		clock:     config.Clock,
		intn:      config.Intn,
		logger:    config.Logger,
		active:    true,
	}
	if ship.food == 0 {
		ship.food = InitialFood
	}
	if ship.publisher == nil {
		ship.publisher = bus.Discard
	}
	if ship.responses == nil {
		ship.responses = io.Discard
	}
	if ship.clock == nil {
		ship.clock = clock.Real()
	}
	if ship.intn == nil {
		ship.intn = rand.IntN
	}
	if ship.logger == nil {
		ship.logger = slog.New(slog.DiscardHandler)
	}
	ship.logger = ship.logger.With("pid", ship.pid)

	ship.grid.MarkOccupied(ship.x, ship.y)
	ship.publish(protocol.ShipInit)
	ship.logger.Info("ship launched",
		"x", ship.x,
		"y", ship.y,
		"food", ship.food,
		"mode", ship.mode.String(),
	)
	return ship, nil
}

// Rejection explains why a move was refused.
type Rejection int

const (
	// InsufficientFood: fewer than MoveCost food left.
	InsufficientFood Rejection = iota + 1
	// BlockedTerrain: the destination is rock, occupied, or off the chart.
	BlockedTerrain
)

func (r Rejection) String() string {
	switch r {
	case InsufficientFood:
		return "insufficient food"
	case BlockedTerrain:
		return "blocked terrain"
	default:
		return "none"
	}
}

// AttemptMove tries one step in direction. Food is checked before
// terrain. On success the ship pays MoveCost, collects the cell's
// reward and publishes MOVE; on rejection nothing changes.
func (s *Ship) AttemptMove(direction protocol.Direction) (bool, Rejection) {
	if s.food < MoveCost {
		return false, InsufficientFood
	}
	nextX, nextY := direction.Apply(s.x, s.y)
	if !s.grid.CanSail(nextX, nextY) {
		return false, BlockedTerrain
	}

	s.grid.ClearOccupied(s.x, s.y)
	s.x, s.y = nextX, nextY
	s.grid.MarkOccupied(s.x, s.y)
	s.food -= MoveCost

	if terrain, ok := s.grid.CellType(s.x, s.y); ok {
		switch terrain.Underlying() {
		case grid.Island:
			s.gold += IslandGold
		case grid.Port:
			s.food += PortFood
		}
	}

	s.publish(protocol.ShipMove)
	s.logger.Debug("ship moved",
		"direction", direction.String(),
		"x", s.x,
		"y", s.y,
		"food", s.food,
		"gold", s.gold,
	)
	return true, 0
}

// OnReward credits a combat win.
func (s *Ship) OnReward() {
	s.gold += RewardGold
	s.logger.Info("rewarded", "gold", s.gold)
}

// OnPenalty debits a combat loss. Neither resource goes below zero.
func (s *Ship) OnPenalty() {
	s.food = max(0, s.food-PenaltyFood)
	s.gold = max(0, s.gold-PenaltyGold)
	s.logger.Info("penalized", "food", s.food, "gold", s.gold)
}

// Status returns the ship's current state.
func (s *Ship) Status() protocol.Status {
	return protocol.Status{PID: s.pid, X: s.x, Y: s.y, Food: s.food, Gold: s.gold}
}

// Active reports whether the ship is still on the grid.
func (s *Ship) Active() bool { return s.active }

// Terminate takes the ship off the grid and returns its final gold.
// It publishes TERMINATE. Repeated calls return the same gold and
// publish nothing.
func (s *Ship) Terminate(voluntary bool) int {
	if !s.active {
		return s.gold
	}
	s.active = false
	s.publish(protocol.ShipTerminate)
	s.grid.ClearOccupied(s.x, s.y)
	s.logger.Info("ship terminated",
		"voluntary", voluntary,
		"x", s.x,
		"y", s.y,
		"food", s.food,
		"gold", s.gold,
	)
	return s.gold
}

func (s *Ship) publish(eventType protocol.EventType) {
	s.publisher.Publish(protocol.Event{
		PID:  s.pid,
		Type: eventType,
		X:    s.x,
		Y:    s.y,
		Food: s.food,
		Gold: s.gold,
	})
}

// respond writes one line to the response channel. A broken channel
// is logged once; the ship keeps sailing.
func (s *Ship) respond(line string) {
	if _, err := io.WriteString(s.responses, line+"\n"); err != nil && !s.responseFailed {
		s.responseFailed = true
		s.logger.Warn("response channel unavailable", "error", err)
	}
}
