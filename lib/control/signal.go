// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// Signal is a control event.
type Signal int

const (
	// Reward: ursula to a combat winner. +10 gold.
	Reward Signal = iota + 1
	// Penalty: ursula to a combat loser. -10 food, -10 gold.
	Penalty
	// Status: captain to ship. Write one status line.
	Status
	// Terminate: captain to ship. Leave now.
	Terminate
	// Shutdown: ursula to captain on bankruptcy. Terminate the fleet.
	Shutdown
)

var unixSignals = map[Signal]syscall.Signal{
	Reward:    unix.SIGUSR1,
	Penalty:   unix.SIGUSR2,
	Status:    unix.SIGTSTP,
	Terminate: unix.SIGQUIT,
	Shutdown:  unix.SIGINT,
}

func (s Signal) String() string {
	switch s {
	case Reward:
		return "reward"
	case Penalty:
		return "penalty"
	case Status:
		return "status"
	case Terminate:
		return "terminate"
	case Shutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// Unix returns the UNIX signal that carries s between processes.
func (s Signal) Unix() (syscall.Signal, bool) {
	sig, ok := unixSignals[s]
	return sig, ok
}

// FromUnix maps a received OS signal back onto a Signal.
func FromUnix(received os.Signal) (Signal, bool) {
	for candidate, sig := range unixSignals {
		if sig == received {
			return candidate, true
		}
	}
	return 0, false
}

// ErrNoSuchUnit is returned when the target pid is not running or not
// registered.
var ErrNoSuchUnit = errors.New("no such unit")

// Signaler delivers a control signal to the unit identified by pid.
type Signaler interface {
	Send(pid int, signal Signal) error
}

// UnixSignaler delivers signals with kill(2).
type UnixSignaler struct{}

// Send signals pid. ESRCH is reported as ErrNoSuchUnit.
func (UnixSignaler) Send(pid int, sig Signal) error {
	unixSignal, ok := sig.Unix()
	if !ok {
		return fmt.Errorf("sending %s to %d: no unix mapping", sig, pid)
	}
	if err := unix.Kill(pid, unixSignal); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("sending %s to %d: %w", sig, pid, ErrNoSuchUnit)
		}
		return fmt.Errorf("sending %s to %d: %w", sig, pid, err)
	}
	return nil
}

// NotifyOS relays the UNIX signals for the given control signals, plus
// any extra OS signals mapped through aliases, onto a channel. The
// returned stop function unregisters and ends the relay goroutine.
//
// aliases lets a unit treat an OS signal that has no control meaning of
// its own, such as SIGTERM, as one that does.
func NotifyOS(wanted []Signal, aliases map[os.Signal]Signal) (<-chan Signal, func()) {
	raw := make(chan os.Signal, 16)
	var osSignals []os.Signal
	for _, sig := range wanted {
		if unixSignal, ok := sig.Unix(); ok {
			osSignals = append(osSignals, unixSignal)
		}
	}
	for sig := range aliases {
		osSignals = append(osSignals, sig)
	}
	signal.Notify(raw, osSignals...)

	out := make(chan Signal, 16)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case received := <-raw:
				translated, ok := aliases[received]
				if !ok {
					translated, ok = FromUnix(received)
				}
				if !ok {
					continue
				}
				select {
				case out <- translated:
				default:
				}
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		signal.Stop(raw)
		close(done)
	}
	return out, stop
}
