// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ship

import (
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/armada/lib/grid"
	"github.com/bureau-foundation/armada/lib/protocol"
)

// chart layout, (x,y):
//
//	. . . I .
//	. # P . .
//	. . . . .
const chart = "...I.\n.#P..\n.....\n"

// recorder is a Publisher that queues every event.
type recorder struct {
	events chan protocol.Event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan protocol.Event, 64)}
}

func (r *recorder) Publish(event protocol.Event) { r.events <- event }

func (r *recorder) drain() []protocol.Event {
	var events []protocol.Event
	for {
		select {
		case event := <-r.events:
			events = append(events, event)
		default:
			return events
		}
	}
}

func loadChart(t *testing.T, text string) *grid.Grid {
	t.Helper()
	g, err := grid.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func newShip(t *testing.T, x, y int, publisher *recorder) (*Ship, *grid.Grid) {
	t.Helper()
	g := loadChart(t, chart)
	config := Config{PID: 100, Grid: g, X: x, Y: y}
	if publisher != nil {
		config.Publisher = publisher
	}
	s, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, g
}

func TestNewMarksCellAndAnnounces(t *testing.T) {
	t.Parallel()

	events := newRecorder()
	_, g := newShip(t, 0, 0, events)

	if cell, _ := g.CellType(0, 0); cell != grid.ShipOnWater {
		t.Errorf("start cell = %q, want 'S'", cell)
	}
	got := events.drain()
	want := protocol.Event{PID: 100, Type: protocol.ShipInit, X: 0, Y: 0, Food: InitialFood}
	if len(got) != 1 || got[0] != want {
		t.Errorf("events = %+v, want [%+v]", got, want)
	}
}

func TestNewRejectsRock(t *testing.T) {
	t.Parallel()

	_, err := New(Config{PID: 1, Grid: loadChart(t, chart), X: 1, Y: 1})
	if !errors.Is(err, ErrNotNavigable) {
		t.Errorf("got %v, want ErrNotNavigable", err)
	}
}

func TestNewRejectsDigestMismatch(t *testing.T) {
	t.Parallel()

	_, err := New(Config{PID: 1, Grid: loadChart(t, chart), MapDigest: "feedface"})
	if !errors.Is(err, ErrMapMismatch) {
		t.Errorf("got %v, want ErrMapMismatch", err)
	}
}

func TestNewRejectsAutonomousWithoutBudget(t *testing.T) {
	t.Parallel()

	_, err := New(Config{PID: 1, Grid: loadChart(t, chart), Mode: Autonomous, Period: 1})
	if err == nil {
		t.Error("New accepted an autonomous ship with zero steps")
	}
}

func TestMoveCostsFoodAndPublishes(t *testing.T) {
	t.Parallel()

	events := newRecorder()
	s, g := newShip(t, 0, 0, events)
	events.drain()

	confirmed, _ := s.AttemptMove(protocol.Right)
	if !confirmed {
		t.Fatal("move right from (0,0) rejected")
	}
	if status := s.Status(); status.X != 1 || status.Y != 0 || status.Food != 95 || status.Gold != 0 {
		t.Errorf("status = %+v, want (1,0) food 95 gold 0", status)
	}
	if cell, _ := g.CellType(0, 0); cell != grid.Water {
		t.Errorf("vacated cell = %q, want '.'", cell)
	}
	if cell, _ := g.CellType(1, 0); cell != grid.ShipOnWater {
		t.Errorf("new cell = %q, want 'S'", cell)
	}
	got := events.drain()
	want := protocol.Event{PID: 100, Type: protocol.ShipMove, X: 1, Y: 0, Food: 95}
	if len(got) != 1 || got[0] != want {
		t.Errorf("events = %+v, want [%+v]", got, want)
	}
}

func TestMoveOntoIslandAndPort(t *testing.T) {
	t.Parallel()

	s, g := newShip(t, 2, 0, nil)

	s.AttemptMove(protocol.Right) // island at (3,0)
	if status := s.Status(); status.Gold != IslandGold || status.Food != 95 {
		t.Errorf("after island: %+v, want gold 10 food 95", status)
	}
	if cell, _ := g.CellType(3, 0); cell != grid.ShipOnIsland {
		t.Errorf("island cell = %q, want 'B'", cell)
	}

	s.AttemptMove(protocol.Left)
	s.AttemptMove(protocol.Down) // port at (2,1)
	if status := s.Status(); status.Food != 85+PortFood {
		t.Errorf("after port: food %d, want %d", status.Food, 85+PortFood)
	}
	if cell, _ := g.CellType(3, 0); cell != grid.Island {
		t.Errorf("island after leaving = %q, want 'I'", cell)
	}
}

func TestBlockedMoveChangesNothing(t *testing.T) {
	t.Parallel()

	events := newRecorder()
	s, _ := newShip(t, 0, 1, events)
	events.drain()
	before := s.Status()

	for _, direction := range []protocol.Direction{protocol.Right, protocol.Left} {
		confirmed, reason := s.AttemptMove(direction)
		if confirmed || reason != BlockedTerrain {
			t.Errorf("%s from (0,1): confirmed=%v reason=%s, want blocked terrain", direction, confirmed, reason)
		}
	}
	if after := s.Status(); after != before {
		t.Errorf("status changed on rejection: %+v -> %+v", before, after)
	}
	if got := events.drain(); len(got) != 0 {
		t.Errorf("rejected moves published %+v", got)
	}
}

func TestFoodIsCheckedBeforeTerrain(t *testing.T) {
	t.Parallel()

	g := loadChart(t, chart)
	s, err := New(Config{PID: 5, Grid: g, X: 0, Y: 1, Food: 4})
	if err != nil {
		t.Fatal(err)
	}
	confirmed, reason := s.AttemptMove(protocol.Right) // rock
	if confirmed || reason != InsufficientFood {
		t.Errorf("got confirmed=%v reason=%s, want insufficient food", confirmed, reason)
	}
	confirmed, reason = s.AttemptMove(protocol.Down) // water
	if confirmed || reason != InsufficientFood {
		t.Errorf("got confirmed=%v reason=%s, want insufficient food", confirmed, reason)
	}
}

func TestUpThenDownReturnsHome(t *testing.T) {
	t.Parallel()

	s, _ := newShip(t, 4, 2, nil)
	s.AttemptMove(protocol.Up)
	s.AttemptMove(protocol.Down)
	if status := s.Status(); status.X != 4 || status.Y != 2 || status.Food != InitialFood-2*MoveCost {
		t.Errorf("status = %+v, want (4,2) food %d", status, InitialFood-2*MoveCost)
	}
}

func TestRewardAndPenaltyFloorAtZero(t *testing.T) {
	t.Parallel()

	g := loadChart(t, chart)
	s, err := New(Config{PID: 5, Grid: g, Food: 3})
	if err != nil {
		t.Fatal(err)
	}
	s.OnReward()
	if gold := s.Status().Gold; gold != RewardGold {
		t.Errorf("gold after reward = %d, want %d", gold, RewardGold)
	}
	s.OnPenalty()
	s.OnPenalty()
	status := s.Status()
	if status.Food != 0 || status.Gold != 0 {
		t.Errorf("after penalties: %+v, want food 0 gold 0", status)
	}
}

func TestTerminateReleasesCellOnce(t *testing.T) {
	t.Parallel()

	events := newRecorder()
	s, g := newShip(t, 2, 0, events)
	s.AttemptMove(protocol.Right)
	events.drain()

	if gold := s.Terminate(false); gold != IslandGold {
		t.Errorf("Terminate = %d, want %d", gold, IslandGold)
	}
	if gold := s.Terminate(true); gold != IslandGold {
		t.Errorf("second Terminate = %d, want %d", gold, IslandGold)
	}
	if cell, _ := g.CellType(3, 0); cell != grid.Island {
		t.Errorf("cell after terminate = %q, want 'I'", cell)
	}
	got := events.drain()
	if len(got) != 1 || got[0].Type != protocol.ShipTerminate {
		t.Errorf("events = %+v, want one TERMINATE", got)
	}
	if s.Active() {
		t.Error("ship still active after Terminate")
	}
}
