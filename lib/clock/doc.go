// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by ships and
// the captain.
//
// Anything that waits on wall-clock time (the autonomous ship ticker,
// the captain's reply timeout) takes a Clock instead of calling the
// time package directly. Production wiring passes Real(); tests pass
// Fake() and move time forward explicitly with Advance:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go ship.Run(ctx)           // registers its ticker
//	fake.WaitForTimers(1)      // wait until the ticker exists
//	fake.Advance(time.Second)  // deliver exactly one tick
package clock
