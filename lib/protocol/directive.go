// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Confirmation tokens written by a ship after every commanded move.
const (
	ReplyOK  = "OK"
	ReplyNOK = "NOK"
)

// ExitWord is the directive that asks a ship to leave voluntarily.
const ExitWord = "exit"

// Directive is one line on a ship's command channel: either a move in
// Direction or, when Exit is set, a voluntary termination request.
type Directive struct {
	Direction Direction
	Exit      bool
}

// String returns the wire form, without a trailing newline.
func (d Directive) String() string {
	if d.Exit {
		return ExitWord
	}
	return d.Direction.String()
}

// ParseDirective parses one command-channel line. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseDirective(line string) (Directive, error) {
	word := strings.ToLower(strings.TrimSpace(line))
	if word == ExitWord {
		return Directive{Exit: true}, nil
	}
	direction, err := ParseDirection(word)
	if err != nil {
		return Directive{}, fmt.Errorf("unknown directive %q", strings.TrimSpace(line))
	}
	return Directive{Direction: direction}, nil
}

// Status is a ship's self-reported snapshot.
type Status struct {
	PID  int
	X, Y int
	Food int
	Gold int
}

// String renders the status line as written on the response channel,
// without a trailing newline.
func (s Status) String() string {
	return fmt.Sprintf("PID %d, Location: (%d,%d), Food: %d, Gold: %d",
		s.PID, s.X, s.Y, s.Food, s.Gold)
}

// ParseStatus parses a line produced by Status.String.
func ParseStatus(line string) (Status, error) {
	var status Status
	count, err := fmt.Sscanf(strings.TrimSpace(line), "PID %d, Location: (%d,%d), Food: %d, Gold: %d",
		&status.PID, &status.X, &status.Y, &status.Food, &status.Gold)
	if err != nil || count != 5 {
		return Status{}, fmt.Errorf("malformed status line %q", line)
	}
	return status, nil
}

// IsStatusLine reports whether line looks like a status reply rather
// than a move confirmation.
func IsStatusLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "PID ")
}

// AbortPrefix starts the line a ship writes on its response channel
// when it gives up before sailing, so the captain can tell a failed
// launch from a ship that earned a little gold.
const AbortPrefix = "ABORT: "

// AbortLine returns the abort line for reason, without a trailing
// newline. Line breaks in reason are flattened.
func AbortLine(reason string) string {
	return AbortPrefix + strings.Join(strings.Fields(reason), " ")
}

// ParseAbort returns the reason carried by an abort line.
func ParseAbort(line string) (string, bool) {
	return strings.CutPrefix(strings.TrimSpace(line), AbortPrefix)
}

// IsMoveReply reports whether line confirms or refuses a move.
func IsMoveReply(line string) bool {
	return line == ReplyOK || line == ReplyNOK
}

// atoi parses a decimal integer, tolerating surrounding spaces.
func atoi(field string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(field))
}
