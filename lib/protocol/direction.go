// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"
	"strings"
)

// Direction is one of the four compass moves. The zero value is not a
// valid direction.
type Direction int

const (
	Up Direction = iota + 1
	Down
	Left
	Right
)

// Directions lists every valid direction, in the order the autonomous
// scheduler draws from.
var Directions = [...]Direction{Down, Right, Up, Left}

// Delta returns the (dx, dy) step for d. Row 0 is the top of the
// chart, so Up decreases y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// Apply returns the cell reached by moving one step in d from (x, y).
func (d Direction) Apply(x, y int) (int, int) {
	dx, dy := d.Delta()
	return x + dx, y + dy
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection accepts up, down, left or right in any case.
func ParseDirection(word string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", word)
	}
}
