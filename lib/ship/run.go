// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ship

import (
	"context"
	"io"
	"time"

	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/protocol"
)

// Run drives the ship until it terminates and returns its final gold.
//
// directives is the command channel and is only read in commanded
// mode. controls delivers control signals; a nil channel is never
// ready. Cancelling ctx is a forced termination.
func (s *Ship) Run(ctx context.Context, directives io.Reader, controls <-chan control.Signal) int {
	if !s.active {
		return s.gold
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var lines <-chan string
	if s.mode == Commanded && directives != nil {
		lines = bus.NewStream(loopCtx, directives).Lines()
	}

	var ticks <-chan time.Time
	if s.mode == Autonomous {
		ticker := s.clock.NewTicker(s.period)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				s.logger.Info("command channel closed")
				return s.Terminate(true)
			}
			if s.handleDirective(line) {
				return s.Terminate(true)
			}

		case sig := <-controls:
			if s.handleControl(sig) {
				return s.Terminate(false)
			}

		case <-ticks:
			if s.tick() {
				return s.Terminate(true)
			}

		case <-ctx.Done():
			return s.Terminate(false)
		}
	}
}

// handleDirective applies one command line. It reports whether the
// ship should exit.
func (s *Ship) handleDirective(line string) bool {
	directive, err := protocol.ParseDirective(line)
	if err != nil {
		s.logger.Warn("ignoring directive", "error", err)
		return false
	}
	if directive.Exit {
		return true
	}
	confirmed, reason := s.AttemptMove(directive.Direction)
	if confirmed {
		s.respond(protocol.ReplyOK)
	} else {
		s.logger.Info("move rejected", "direction", directive.Direction.String(), "reason", reason.String())
		s.respond(protocol.ReplyNOK)
	}
	return false
}

// handleControl applies one control signal. It reports whether the
// ship should exit.
func (s *Ship) handleControl(sig control.Signal) bool {
	switch sig {
	case control.Reward:
		s.OnReward()
	case control.Penalty:
		s.OnPenalty()
	case control.Status:
		s.respond(s.Status().String())
	case control.Terminate, control.Shutdown:
		return true
	default:
		s.logger.Warn("ignoring control signal", "signal", sig.String())
	}
	return false
}

// tick performs one autonomous step. The budget is spent whether or
// not the move succeeds. It reports whether the budget is exhausted.
func (s *Ship) tick() bool {
	direction := protocol.Directions[s.intn(len(protocol.Directions))]
	if confirmed, reason := s.AttemptMove(direction); !confirmed {
		s.logger.Debug("autonomous move rejected", "direction", direction.String(), "reason", reason.String())
	}
	if s.steps < 0 {
		return false
	}
	s.steps--
	return s.steps == 0
}
