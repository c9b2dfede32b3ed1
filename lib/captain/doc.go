// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package captain implements the fleet orchestrator.
//
// A [Captain] launches one ship per manifest entry through a
// [Spawner], then runs a single event loop that owns every fleet
// record. The loop multiplexes operator commands, replies from ships,
// ship exits (reaps) and interrupts. In commanded mode the operator
// steers individual ships:
//
//	status          status of every live ship, then "N ships alive"
//	<id> status     status of one ship
//	<id> <dir>      move a ship up, down, left or right
//	<id> exit       ask one ship to leave
//	exit            terminate the whole fleet
//	map             draw the chart with last known positions
//	help            list commands
//
// In autonomous ("random") mode ships steer themselves and the captain
// only reaps them and forwards interrupts.
//
// Two spawners exist. [ExecSpawner] starts ships as child processes
// re-executing the armada binary; [LocalSpawner] runs ships as
// goroutines inside the captain's process, for the single-process
// simulator and for tests. Both expose the same [Handle].
//
// Each command that expects an answer is a round trip with a timeout.
// A timeout, a closed response channel or an interrupt counts as NOK.
package captain
