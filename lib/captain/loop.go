// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package captain

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/process"
	"github.com/bureau-foundation/armada/lib/protocol"
	"github.com/bureau-foundation/armada/lib/ship"
)

// Run drives the fleet until every launched ship has been reaped, then
// signs off from ursula, prints the score table and returns the
// results. Cancelling ctx terminates the fleet the same way an
// interrupt does; Run still waits for the reaps.
func (c *Captain) Run(ctx context.Context) []Result {
	loopCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if c.registered {
		c.publisher.Publish(protocol.Event{PID: c.pid, Type: protocol.CaptainInit})
	}

	for _, rec := range c.records {
		go c.wait(loopCtx, rec)
		go c.pumpReplies(loopCtx, rec)
	}

	var commands <-chan string
	if c.mode == ship.Commanded && c.input != nil {
		commands = bus.NewStream(loopCtx, c.input).Lines()
		c.console.banner(c.live)
	}

	done := ctx.Done()
	for c.live > 0 {
		select {
		case line, ok := <-commands:
			if !ok {
				c.logger.Info("operator input closed, terminating fleet")
				c.terminateAll()
				commands = nil
				continue
			}
			if c.execute(line) {
				commands = nil
			}

		case r := <-c.reaps:
			c.handleReap(r)

		case r := <-c.replies:
			c.unsolicited(r)

		case sig := <-c.controls:
			c.handleControl(sig)

		case <-done:
			c.logger.Info("captain cancelled, terminating fleet")
			c.terminateAll()
			done = nil
		}
	}

	for _, rec := range c.records {
		c.grid.ClearOccupied(rec.x, rec.y)
	}
	if c.registered {
		c.publisher.Publish(protocol.Event{PID: c.pid, Type: protocol.CaptainEnd})
	}

	results := c.Results()
	c.console.scoreTable(results)
	c.logger.Info("fleet finished", "ships", len(results))
	return results
}

// wait reaps one ship and posts the result to the loop once the
// ship's last response lines have been delivered.
func (c *Captain) wait(ctx context.Context, rec *record) {
	status := rec.handle.Wait()
	select {
	case <-rec.pumped:
	case <-ctx.Done():
		return
	}
	select {
	case c.reaps <- reap{record: rec, status: status}:
	case <-ctx.Done():
	}
}

// pumpReplies forwards a ship's response lines to the loop, then
// reports the channel closed.
func (c *Captain) pumpReplies(ctx context.Context, rec *record) {
	defer close(rec.pumped)
	stream := bus.NewStream(ctx, rec.handle.Responses())
	for line := range stream.Lines() {
		select {
		case c.replies <- reply{record: rec, line: line}:
		case <-ctx.Done():
			return
		}
	}
	select {
	case c.replies <- reply{record: rec, closed: true}:
	case <-ctx.Done():
	}
}

func (c *Captain) handleReap(r reap) {
	rec := r.record
	if !rec.alive {
		return
	}
	rec.alive = false
	rec.status = r.status
	if rec.abort != "" && !r.status.Abnormal {
		rec.status = process.ExitStatus{Abnormal: true, Reason: "failed to launch: " + rec.abort}
	}
	rec.unanswered = nil
	c.live--
	rec.handle.Close()
	c.vacate(rec)

	logger := c.logger.With("ship_id", rec.id, "pid", rec.handle.PID(), "live", c.live)
	if rec.status.Abnormal {
		logger.Warn("ship ended abnormally", "reason", rec.status.Reason)
	} else {
		logger.Info("ship exited", "gold", rec.status.String())
	}
}

// unsolicited handles a reply nobody is waiting for.
func (c *Captain) unsolicited(r reply) {
	if !c.note(r) {
		c.logger.Debug("discarding unsolicited reply", "ship_id", r.record.id, "line", r.line)
	}
}

// note applies what a reply says about the ship: a move answer or a
// failed launch. It reports whether the reply was consumed.
func (c *Captain) note(r reply) bool {
	if r.closed {
		return true
	}
	if protocol.IsMoveReply(r.line) {
		c.settle(r.record, r.line)
		return true
	}
	if reason, ok := protocol.ParseAbort(r.line); ok {
		r.record.abort = reason
		c.logger.Warn("ship could not start", "ship_id", r.record.id, "reason", reason)
		return true
	}
	return false
}

// settle pairs a move answer with the oldest unanswered move. A late
// OK still moves the replica.
func (c *Captain) settle(rec *record, line string) {
	if len(rec.unanswered) == 0 {
		c.logger.Debug("move answer with no move outstanding", "ship_id", rec.id, "line", line)
		return
	}
	move := rec.unanswered[0]
	rec.unanswered = rec.unanswered[1:]
	if line != protocol.ReplyOK {
		return
	}
	c.relocate(rec, move.x, move.y)
	c.logger.Debug("move confirmed", "ship_id", rec.id, "direction", move.direction.String(), "x", move.x, "y", move.y)
}

func (c *Captain) handleControl(sig control.Signal) {
	switch sig {
	case control.Shutdown, control.Terminate:
		c.logger.Warn("shutdown requested, terminating fleet", "signal", sig.String())
		c.terminateAll()
	default:
		c.logger.Debug("ignoring control signal", "signal", sig.String())
	}
}

// terminateAll tells every live ship to terminate without waiting.
func (c *Captain) terminateAll() {
	if c.terminating {
		return
	}
	c.terminating = true
	for _, rec := range c.records {
		if !rec.alive {
			continue
		}
		if err := rec.handle.Signal(control.Terminate); err != nil {
			c.logger.Warn("terminate not delivered", "ship_id", rec.id, "error", err)
		}
	}
}

// execute runs one operator command. It reports whether operator
// input should stop being read.
func (c *Captain) execute(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}

	switch {
	case len(fields) == 1 && fields[0] == "exit":
		c.console.info("terminating the fleet")
		c.terminateAll()
		return true
	case len(fields) == 1 && fields[0] == "status":
		c.statusAll()
		return false
	case len(fields) == 1 && fields[0] == "help":
		c.console.help()
		return false
	case len(fields) == 1 && fields[0] == "map":
		if err := c.grid.Render(c.console.out); err != nil {
			c.logger.Warn("rendering map", "error", err)
		}
		return false
	case len(fields) == 2:
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			break
		}
		c.shipCommand(id, fields[1])
		return false
	}

	c.console.failure(fmt.Sprintf("unknown command %q (try help)", strings.TrimSpace(line)))
	return false
}

func (c *Captain) shipCommand(id int, word string) {
	rec := c.lookup(id)
	if rec == nil {
		c.console.failure(fmt.Sprintf("ship %d not found", id))
		return
	}

	switch word {
	case protocol.ExitWord:
		if err := c.send(rec, protocol.Directive{Exit: true}); err != nil {
			c.console.failure(fmt.Sprintf("ship %d: %v", id, err))
			return
		}
		c.console.info(fmt.Sprintf("ship %d asked to leave", id))
	case "status":
		if status, ok := c.requestStatus(rec); ok {
			c.console.status(rec.id, status)
		} else {
			c.console.failure(fmt.Sprintf("ship %d did not report", id))
		}
	default:
		direction, err := protocol.ParseDirection(word)
		if err != nil {
			c.console.failure(fmt.Sprintf("unknown command %q for ship %d", word, id))
			return
		}
		c.move(rec, direction)
	}
}

// move checks a move against the captain's replica, forwards it and
// waits for the confirmation. An earlier move still unanswered is
// settled first so the check sees the ship's real cell.
func (c *Captain) move(rec *record, direction protocol.Direction) {
	if !c.settleMoves(rec) {
		c.console.failure(fmt.Sprintf("NOK: ship %d has not answered its last move", rec.id))
		return
	}

	nextX, nextY := direction.Apply(rec.x, rec.y)
	if other := c.occupant(nextX, nextY, rec); other != nil {
		c.console.failure(fmt.Sprintf("NOK: ship %d cannot move %s, ship %d is at (%d,%d)",
			rec.id, direction, other.id, nextX, nextY))
		return
	}
	if !c.grid.CanSail(nextX, nextY) {
		c.console.failure(fmt.Sprintf("NOK: ship %d cannot move %s onto (%d,%d)", rec.id, direction, nextX, nextY))
		return
	}

	if err := c.send(rec, protocol.Directive{Direction: direction}); err != nil {
		c.console.failure(fmt.Sprintf("NOK: ship %d: %v", rec.id, err))
		return
	}
	rec.unanswered = append(rec.unanswered, pendingMove{direction: direction, x: nextX, y: nextY})

	// A NOK leaves the ship where it was, which is never the target.
	if !c.settleMoves(rec) || rec.x != nextX || rec.y != nextY {
		c.console.failure(fmt.Sprintf("NOK: ship %d did not move %s", rec.id, direction))
		return
	}
	c.console.success(fmt.Sprintf("OK: ship %d moved %s to (%d,%d)", rec.id, direction, rec.x, rec.y))
}

// settleMoves waits until every move forwarded to rec is answered.
// It reports false when rec stays silent.
func (c *Captain) settleMoves(rec *record) bool {
	c.drain()
	if len(rec.unanswered) == 0 {
		return true
	}
	_, ok := c.await(rec, func(string) bool { return len(rec.unanswered) == 0 })
	return ok
}

// statusAll collects one status line from every live ship.
func (c *Captain) statusAll() {
	for _, rec := range c.records {
		if !rec.alive {
			continue
		}
		if status, ok := c.requestStatus(rec); ok {
			c.console.status(rec.id, status)
		} else {
			c.console.failure(fmt.Sprintf("ship %d did not report", rec.id))
		}
	}
	c.console.info(fmt.Sprintf("%d ships alive", c.live))
}

func (c *Captain) requestStatus(rec *record) (protocol.Status, bool) {
	c.drain()
	if err := rec.handle.Signal(control.Status); err != nil {
		c.logger.Warn("status request not delivered", "ship_id", rec.id, "error", err)
		return protocol.Status{}, false
	}
	line, ok := c.await(rec, protocol.IsStatusLine)
	if !ok {
		return protocol.Status{}, false
	}
	status, err := protocol.ParseStatus(line)
	if err != nil {
		c.logger.Warn("bad status line", "ship_id", rec.id, "error", err)
		return protocol.Status{}, false
	}
	return status, true
}

func (c *Captain) send(rec *record, directive protocol.Directive) error {
	if _, err := io.WriteString(rec.handle.Directives(), directive.String()+"\n"); err != nil {
		return fmt.Errorf("sending %s: %w", directive, err)
	}
	return nil
}

// drain handles replies already queued, left over from requests that
// timed out.
func (c *Captain) drain() {
	for {
		select {
		case r := <-c.replies:
			if !c.note(r) {
				c.logger.Debug("discarding stale reply", "ship_id", r.record.id, "line", r.line)
			}
		default:
			return
		}
	}
}

// await waits for a reply from rec accepted by match. Reaps and
// control signals arriving meanwhile are handled as in the main loop.
// It gives up on timeout, on an interrupt, or when rec exits or closes
// its response channel.
func (c *Captain) await(rec *record, match func(string) bool) (string, bool) {
	deadline := c.clock.After(c.replyTimeout)
	for {
		select {
		case r := <-c.replies:
			if r.record != rec {
				c.unsolicited(r)
				continue
			}
			if r.closed {
				return "", false
			}
			consumed := c.note(r)
			if match(r.line) {
				return r.line, true
			}
			if !consumed {
				c.logger.Debug("discarding unexpected reply", "ship_id", rec.id, "line", r.line)
			}

		case r := <-c.reaps:
			c.handleReap(r)
			if r.record == rec {
				return "", false
			}

		case sig := <-c.controls:
			c.handleControl(sig)
			if c.terminating {
				return "", false
			}

		case <-deadline:
			c.logger.Warn("ship did not reply in time", "ship_id", rec.id, "timeout", c.replyTimeout)
			return "", false
		}
	}
}
