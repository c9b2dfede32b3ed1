// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EventType names a bus event.
type EventType string

const (
	// Captain lifecycle.
	CaptainInit EventType = "INIT_CAPT"
	CaptainEnd  EventType = "END_CAPT"

	// Ship lifecycle and state.
	ShipInit      EventType = "INIT"
	ShipMove      EventType = "MOVE"
	ShipTerminate EventType = "TERMINATE"
)

// carriesState reports whether events of type t carry x,y,food,gold.
func (t EventType) carriesState() bool {
	return t == ShipInit || t == ShipMove
}

func (t EventType) known() bool {
	switch t {
	case CaptainInit, CaptainEnd, ShipInit, ShipMove, ShipTerminate:
		return true
	}
	return false
}

// MaxEventLength bounds an encoded event. Every event is written with
// a single write(2) well under PIPE_BUF, which is what keeps lines
// from concurrent writers on a FIFO from interleaving.
const MaxEventLength = 256

// ErrEventTooLong rejects an event line longer than MaxEventLength.
var ErrEventTooLong = errors.New("event exceeds maximum length")

// Event is one record on ursula's bus.
type Event struct {
	PID  int
	Type EventType

	// Set only for INIT and MOVE.
	X, Y int
	Food int
	Gold int
}

// Encode returns the wire form of e including the trailing newline.
func (e Event) Encode() []byte {
	if e.Type.carriesState() {
		return fmt.Appendf(nil, "%d,%s,%d,%d,%d,%d\n", e.PID, e.Type, e.X, e.Y, e.Food, e.Gold)
	}
	return fmt.Appendf(nil, "%d,%s\n", e.PID, e.Type)
}

// Frame returns the wire form of e, refusing anything a single FIFO
// write could not carry atomically.
func (e Event) Frame() ([]byte, error) {
	line := e.Encode()
	if len(line) > MaxEventLength {
		return nil, fmt.Errorf("%s event from pid %d: %w (%d bytes)", e.Type, e.PID, ErrEventTooLong, len(line))
	}
	return line, nil
}

func (e Event) String() string {
	return strings.TrimSuffix(string(e.Encode()), "\n")
}

// ParseEvent parses one bus line. Fields may carry surrounding spaces
// ("123, MOVE, 1, 2, 95, 0" is accepted). INIT and MOVE require all
// four state fields; the other types ignore anything after the type.
func ParseEvent(line string) (Event, error) {
	if len(line) > MaxEventLength {
		return Event{}, fmt.Errorf("event of %d bytes: %w", len(line), ErrEventTooLong)
	}
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < 2 {
		return Event{}, fmt.Errorf("event %q: want at least pid and type", line)
	}

	pid, err := atoi(fields[0])
	if err != nil {
		return Event{}, fmt.Errorf("event %q: bad pid: %w", line, err)
	}
	if pid <= 0 {
		return Event{}, fmt.Errorf("event %q: pid must be positive", line)
	}

	event := Event{PID: pid, Type: EventType(strings.TrimSpace(fields[1]))}
	if !event.Type.known() {
		return Event{}, fmt.Errorf("event %q: unknown type %q", line, event.Type)
	}
	if !event.Type.carriesState() {
		return event, nil
	}

	if len(fields) < 6 {
		return Event{}, fmt.Errorf("event %q: %s needs x,y,food,gold", line, event.Type)
	}
	values := make([]int, 4)
	for i := range values {
		values[i], err = strconv.Atoi(strings.TrimSpace(fields[i+2]))
		if err != nil {
			return Event{}, fmt.Errorf("event %q: field %d: %w", line, i+3, err)
		}
	}
	event.X, event.Y, event.Food, event.Gold = values[0], values[1], values[2], values[3]
	return event, nil
}
