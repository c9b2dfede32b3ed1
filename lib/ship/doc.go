// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ship implements the fleet worker: one vessel on the grid
// with food, gold and a position.
//
// A [Ship] is created on a navigable cell with [New] and then driven
// by [Ship.Run], a single select loop that owns all of the ship's
// state. The loop multiplexes three inputs:
//
//   - directives (up, down, left, right, exit), one per line, in
//     commanded mode; every move is answered with OK or NOK and end of
//     input is a voluntary exit;
//   - ticks of a fixed period in autonomous mode, each attempting a
//     move in a random direction until the step budget runs out;
//   - control signals: reward, penalty, status and terminate.
//
// Every confirmed move and the lifecycle edges (INIT, TERMINATE) are
// published to ursula's bus. Run returns the final gold, which a ship
// process reports as its exit status.
package ship
