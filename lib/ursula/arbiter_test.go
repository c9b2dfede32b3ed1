// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ursula

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/protocol"
	"github.com/bureau-foundation/armada/lib/testutil"
)

type sent struct {
	pid    int
	signal control.Signal
}

type recordingSignaler struct {
	mu   sync.Mutex
	sent []sent
}

func (s *recordingSignaler) Send(pid int, sig control.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sent{pid, sig})
	return nil
}

func (s *recordingSignaler) all() []sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sent(nil), s.sent...)
}

func newArbiter(t *testing.T, treasury int, winner int) (*Arbiter, *recordingSignaler) {
	t.Helper()
	signaler := &recordingSignaler{}
	arbiter, err := New(Config{Signaler: signaler, Treasury: treasury, Intn: always(winner)})
	if err != nil {
		t.Fatal(err)
	}
	return arbiter, signaler
}

func lines(events ...string) io.Reader {
	return strings.NewReader(strings.Join(events, "\n") + "\n")
}

func TestCombatAppliesRewardAndPenalty(t *testing.T) {
	t.Parallel()

	arbiter, signaler := newArbiter(t, 100, 1)
	err := arbiter.Run(context.Background(), lines(
		"1,INIT,0,0,100,20",
		"2,INIT,1,0,100,0",
		"2,MOVE,0,0,95,0",
	))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	loser, _ := arbiter.Ship(1)
	winner, _ := arbiter.Ship(2)
	if loser.Food != 90 || loser.Gold != 10 {
		t.Errorf("loser = %+v, want food 90 gold 10", loser)
	}
	if winner.Gold != WinnerReward {
		t.Errorf("winner gold = %d, want %d", winner.Gold, WinnerReward)
	}
	if arbiter.Treasury() != 100 {
		t.Errorf("treasury = %d, want 100", arbiter.Treasury())
	}

	got := signaler.all()
	want := []sent{{1, control.Penalty}, {2, control.Reward}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("signals = %v, want %v", got, want)
	}
}

func TestBankruptcyStopsTheLoop(t *testing.T) {
	t.Parallel()

	arbiter, signaler := newArbiter(t, 5, 0)
	err := arbiter.Run(context.Background(), lines(
		"900,INIT_CAPT",
		"901,INIT_CAPT",
		"901,END_CAPT",
		"1,INIT,3,3,100,0",
		"2,INIT,3,4,100,2",
		"2,MOVE,3,3,95,2",
		"3,INIT,0,0,100,0",
	))
	if !errors.Is(err, ErrBankrupt) {
		t.Fatalf("Run = %v, want ErrBankrupt", err)
	}

	got := signaler.all()
	if len(got) != 1 || got[0] != (sent{900, control.Shutdown}) {
		t.Errorf("signals = %v, want only shutdown to the active captain 900", got)
	}
	if _, ok := arbiter.Ship(3); ok {
		t.Error("event after bankruptcy was processed")
	}
	if ship, _ := arbiter.Ship(2); ship.Gold != 2 {
		t.Errorf("ship 2 gold = %d after bankruptcy, want unchanged 2", ship.Gold)
	}
	if arbiter.Treasury() != 5 {
		t.Errorf("treasury = %d, want unchanged 5", arbiter.Treasury())
	}
}

func TestNoQuiescenceWithoutCaptain(t *testing.T) {
	t.Parallel()

	arbiter, _ := newArbiter(t, 0, 0)
	input, writer := io.Pipe()
	done := make(chan error, 1)
	go func() { done <- arbiter.Run(context.Background(), input) }()

	io.WriteString(writer, "1,INIT,0,0,100,0\n1,TERMINATE\n")
	testutil.RequireNoReceive(t, done, 50*time.Millisecond, "arbiter ended without any captain")

	io.WriteString(writer, "50,INIT_CAPT\n2,INIT,1,1,100,0\n50,END_CAPT\n")
	testutil.RequireNoReceive(t, done, 50*time.Millisecond, "arbiter ended with a ship still active")

	io.WriteString(writer, "2,TERMINATE\n")
	if err := testutil.RequireReceive(t, done, 5*time.Second, "quiescence"); err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
	writer.Close()
}

func TestQuiescenceStopsReading(t *testing.T) {
	t.Parallel()

	arbiter, _ := newArbiter(t, 0, 0)
	err := arbiter.Run(context.Background(), lines(
		"50,INIT_CAPT",
		"7,INIT,0,0,100,0",
		"50,END_CAPT",
		"7,TERMINATE",
		"8,INIT,0,0,100,0",
	))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := arbiter.Ship(8); ok {
		t.Error("event after quiescence was processed")
	}
}

func TestMoveBeforeInitRegisters(t *testing.T) {
	t.Parallel()

	arbiter, _ := newArbiter(t, 0, 0)
	if err := arbiter.Handle(context.Background(), protocol.Event{PID: 4, Type: protocol.ShipMove, X: 2, Y: 1, Food: 95}); err != nil {
		t.Fatal(err)
	}
	ship, ok := arbiter.Ship(4)
	if !ok || !ship.Active || ship.X != 2 || ship.Y != 1 || ship.Food != 95 {
		t.Errorf("ship = %+v, %v; want active at (2,1) with 95 food", ship, ok)
	}

	// A late INIT for an active ship does not reset it.
	arbiter.Handle(context.Background(), protocol.Event{PID: 4, Type: protocol.ShipInit, X: 0, Y: 0, Food: 100})
	if ship, _ := arbiter.Ship(4); ship.X != 2 {
		t.Errorf("late INIT moved the ship to (%d,%d)", ship.X, ship.Y)
	}

	// A fresh INIT after TERMINATE re-activates the pid.
	arbiter.Handle(context.Background(), protocol.Event{PID: 4, Type: protocol.ShipTerminate})
	arbiter.Handle(context.Background(), protocol.Event{PID: 4, Type: protocol.ShipInit, X: 0, Y: 0, Food: 100})
	if ship, _ := arbiter.Ship(4); !ship.Active || ship.X != 0 || ship.Food != 100 {
		t.Errorf("re-initialized ship = %+v", ship)
	}
}

func TestMalformedLinesAreSkipped(t *testing.T) {
	t.Parallel()

	arbiter, _ := newArbiter(t, 0, 0)
	err := arbiter.Run(context.Background(), lines(
		"garbage",
		"1,MOVE,1",
		"",
		"5, INIT, 2, 2, 100, 0",
	))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ship, ok := arbiter.Ship(5); !ok || ship.X != 2 {
		t.Errorf("ship 5 = %+v, %v; want registered at (2,2)", ship, ok)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	arbiter, _ := newArbiter(t, 0, 0)
	input, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- arbiter.Run(ctx, input) }()
	cancel()

	if err := testutil.RequireReceive(t, done, 5*time.Second, "cancel"); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

// journalStub records calls, failing every other one.
type journalStub struct {
	events  int
	combats int
}

func (j *journalStub) RecordEvent(context.Context, protocol.Event) error {
	j.events++
	if j.events%2 == 0 {
		return errors.New("disk full")
	}
	return nil
}

func (j *journalStub) RecordCombat(context.Context, CombatOutcome) error {
	j.combats++
	return nil
}

func TestRecorderSeesEveryEvent(t *testing.T) {
	t.Parallel()

	journal := &journalStub{}
	arbiter, err := New(Config{Signaler: &recordingSignaler{}, Recorder: journal, Intn: always(0)})
	if err != nil {
		t.Fatal(err)
	}
	err = arbiter.Run(context.Background(), lines(
		"1,INIT,0,0,100,0",
		"2,INIT,0,1,100,0",
		"2,MOVE,0,0,95,0",
	))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if journal.events != 3 || journal.combats != 1 {
		t.Errorf("journal saw %d events and %d combats, want 3 and 1", journal.events, journal.combats)
	}
}
