// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package captain

import (
	"context"
	"io"
	"time"

	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/process"
	"github.com/bureau-foundation/armada/lib/ship"
)

// ShipSpec describes one ship to start.
type ShipSpec struct {
	// ID is the manifest id, used for logging only.
	ID int

	X, Y int

	Mode ship.Mode

	// Steps and Period configure autonomous ships.
	Steps  int
	Period time.Duration
}

// Handle is the captain's view of a running ship.
type Handle interface {
	// PID identifies the ship on the bus and for signals.
	PID() int

	// Directives is the ship's command channel.
	Directives() io.Writer

	// Responses is the ship's reply channel. It reaches end of input
	// when the ship exits.
	Responses() io.Reader

	// Signal delivers a control signal without waiting for it to be
	// handled.
	Signal(sig control.Signal) error

	// Wait blocks until the ship has exited and reports how. It is
	// called exactly once per handle, from a dedicated goroutine.
	Wait() process.ExitStatus

	// Close releases the command channel. The ship sees end of input.
	Close() error
}

// Spawner starts ships.
type Spawner interface {
	Spawn(ctx context.Context, spec ShipSpec) (Handle, error)
}
