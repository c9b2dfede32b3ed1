// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ursula

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/protocol"
)

// DefaultTreasury is the starting treasury.
const DefaultTreasury = 100

// ErrBankrupt ends a session whose treasury could not fund a combat
// reward.
var ErrBankrupt = errors.New("treasury bankrupt")

// Recorder receives an audit trail of everything the arbiter sees.
// Failures are logged and never stop the arbiter.
type Recorder interface {
	RecordEvent(ctx context.Context, event protocol.Event) error
	RecordCombat(ctx context.Context, outcome CombatOutcome) error
}

// ShipRecord is the arbiter's view of one ship.
type ShipRecord struct {
	PID    int  `cbor:"pid"`
	X      int  `cbor:"x"`
	Y      int  `cbor:"y"`
	Food   int  `cbor:"food"`
	Gold   int  `cbor:"gold"`
	Active bool `cbor:"active"`
}

// CaptainRecord is the arbiter's view of one captain.
type CaptainRecord struct {
	PID    int  `cbor:"pid"`
	Active bool `cbor:"active"`
}

// Config describes an arbiter.
type Config struct {
	// Signaler delivers rewards, penalties and shutdowns.
	Signaler control.Signaler

	// Treasury is the starting treasury. Zero means DefaultTreasury.
	Treasury int

	// Intn picks combat winners. Nil means math/rand/v2.IntN.
	Intn func(n int) int

	// Recorder is optional.
	Recorder Recorder

	Logger *slog.Logger
}

// Arbiter holds the registry. It is driven by Run, or event by event
// through Handle; it is not safe for concurrent use.
type Arbiter struct {
	signaler control.Signaler
	treasury int
	intn     func(int) int
	recorder Recorder
	logger   *slog.Logger

	ships    map[int]*ShipRecord
	captains map[int]*CaptainRecord
	combats  []CombatOutcome

	// A session cannot quiesce before its first captain registers.
	sawCaptain bool
}

// New returns an arbiter with an empty registry.
func New(config Config) (*Arbiter, error) {
	if config.Signaler == nil {
		return nil, errors.New("arbiter needs a signaler")
	}
	if config.Treasury < 0 {
		return nil, fmt.Errorf("treasury must not be negative, got %d", config.Treasury)
	}

	a := &Arbiter{
		signaler: config.Signaler,
		treasury: config.Treasury,
		intn:     config.Intn,
		recorder: config.Recorder,
		logger:   config.Logger,
		ships:    make(map[int]*ShipRecord),
		captains: make(map[int]*CaptainRecord),
	}
	if a.treasury == 0 {
		a.treasury = DefaultTreasury
	}
	if a.intn == nil {
		a.intn = rand.IntN
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a, nil
}

// Run reads the bus until the session quiesces (nil), the treasury goes
// bankrupt (ErrBankrupt), ctx is cancelled (ctx.Err()), or the bus
// reaches end of input. Malformed lines are logged and skipped.
func (a *Arbiter) Run(ctx context.Context, reader io.Reader) error {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream := bus.NewStream(streamCtx, reader)
	a.logger.Info("arbiter listening", "treasury", a.treasury)

	for {
		select {
		case line, ok := <-stream.Lines():
			if !ok {
				if err := stream.Err(); err != nil {
					return fmt.Errorf("reading bus: %w", err)
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.logger.Info("bus closed")
				return nil
			}
			event, err := protocol.ParseEvent(line)
			if err != nil {
				a.logger.Warn("skipping malformed bus line", "error", err)
				continue
			}
			if err := a.Handle(ctx, event); err != nil {
				return err
			}
			if a.Quiescent() {
				a.logger.Info("all captains and ships gone, closing session", "treasury", a.treasury)
				return nil
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Handle applies one event to the registry, running combat after a
// move. It returns ErrBankrupt when combat bankrupts the treasury.
func (a *Arbiter) Handle(ctx context.Context, event protocol.Event) error {
	a.record(ctx, event)
	logger := a.logger.With("pid", event.PID, "event", string(event.Type))

	switch event.Type {
	case protocol.CaptainInit:
		a.captains[event.PID] = &CaptainRecord{PID: event.PID, Active: true}
		a.sawCaptain = true
		logger.Info("captain registered")

	case protocol.CaptainEnd:
		if captain, ok := a.captains[event.PID]; ok {
			captain.Active = false
		}
		logger.Info("captain signed off")

	case protocol.ShipInit:
		if existing, ok := a.ships[event.PID]; ok && existing.Active {
			logger.Debug("ignoring INIT for active ship")
			return nil
		}
		a.ships[event.PID] = &ShipRecord{
			PID: event.PID, X: event.X, Y: event.Y,
			Food: event.Food, Gold: event.Gold, Active: true,
		}
		logger.Info("ship registered", "x", event.X, "y", event.Y)

	case protocol.ShipMove:
		ship, ok := a.ships[event.PID]
		if !ok {
			ship = &ShipRecord{PID: event.PID}
			a.ships[event.PID] = ship
			logger.Info("ship registered on first move")
		}
		ship.X, ship.Y, ship.Food, ship.Gold, ship.Active = event.X, event.Y, event.Food, event.Gold, true
		logger.Debug("ship moved", "x", ship.X, "y", ship.Y, "food", ship.Food, "gold", ship.Gold)
		return a.combat(ctx, ship.X, ship.Y)

	case protocol.ShipTerminate:
		if ship, ok := a.ships[event.PID]; ok {
			ship.Active = false
		}
		logger.Info("ship left")
	}
	return nil
}

// combat settles a fight at (x, y), if there is one.
func (a *Arbiter) combat(ctx context.Context, x, y int) error {
	var combatants []Combatant
	for _, ship := range a.ships {
		if ship.Active && ship.X == x && ship.Y == y {
			combatants = append(combatants, Combatant{PID: ship.PID, Food: ship.Food, Gold: ship.Gold})
		}
	}
	outcome, ok := ResolveCombat(combatants, a.treasury, a.intn)
	if !ok {
		return nil
	}
	outcome.X, outcome.Y = x, y
	a.combats = append(a.combats, outcome)
	a.recordCombat(ctx, outcome)

	if outcome.Bankrupt {
		a.logger.Error("treasury cannot fund combat reward, shutting down",
			"x", x, "y", y,
			"treasury", a.treasury,
			"shortfall", outcome.Subsidy,
		)
		a.shutdownCaptains()
		return ErrBankrupt
	}

	a.treasury -= outcome.Subsidy
	for _, loss := range outcome.Losses {
		loser := a.ships[loss.PID]
		loser.Food -= loss.Food
		loser.Gold -= loss.Gold
		a.signal(loss.PID, control.Penalty)
	}
	a.ships[outcome.Winner].Gold += WinnerReward
	a.signal(outcome.Winner, control.Reward)

	a.logger.Info("combat settled",
		"x", x, "y", y,
		"combatants", len(outcome.Combatants),
		"winner", outcome.Winner,
		"pool", outcome.Pool,
		"treasury", a.treasury,
	)
	return nil
}

func (a *Arbiter) shutdownCaptains() {
	for _, pid := range a.activeCaptains() {
		a.signal(pid, control.Shutdown)
	}
}

func (a *Arbiter) signal(pid int, sig control.Signal) {
	if err := a.signaler.Send(pid, sig); err != nil {
		a.logger.Warn("control signal not delivered", "pid", pid, "signal", sig.String(), "error", err)
	}
}

func (a *Arbiter) record(ctx context.Context, event protocol.Event) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.RecordEvent(ctx, event); err != nil {
		a.logger.Warn("journal write failed", "error", err)
	}
}

func (a *Arbiter) recordCombat(ctx context.Context, outcome CombatOutcome) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.RecordCombat(ctx, outcome); err != nil {
		a.logger.Warn("journal write failed", "error", err)
	}
}

func (a *Arbiter) activeCaptains() []int {
	var pids []int
	for pid, captain := range a.captains {
		if captain.Active {
			pids = append(pids, pid)
		}
	}
	slices.Sort(pids)
	return pids
}

// Quiescent reports whether the session is over: a captain has been
// seen, and no captain and no ship is active.
func (a *Arbiter) Quiescent() bool {
	if !a.sawCaptain {
		return false
	}
	for _, captain := range a.captains {
		if captain.Active {
			return false
		}
	}
	for _, ship := range a.ships {
		if ship.Active {
			return false
		}
	}
	return true
}

// Treasury returns the current treasury.
func (a *Arbiter) Treasury() int { return a.treasury }

// Ship returns a copy of the record for pid.
func (a *Arbiter) Ship(pid int) (ShipRecord, bool) {
	ship, ok := a.ships[pid]
	if !ok {
		return ShipRecord{}, false
	}
	return *ship, true
}
