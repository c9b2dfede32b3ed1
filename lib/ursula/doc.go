// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ursula implements the arbiter: the one process that reads
// every bus event, keeps a registry of ships and captains, and settles
// combat when two or more ships share a cell.
//
// An [Arbiter] is a serial loop. Bus lines are read on a helper
// goroutine and handed to the loop, which owns the registry outright.
// After every event the loop checks for quiescence: once at least one
// captain has registered, and no captain and no ship remains active,
// the session is over.
//
// Combat is computed by the pure [ResolveCombat] and only then
// applied. The winner's reward is funded by gold taken from the losers;
// any surplus is taxed into the treasury and any shortfall is drawn
// from it. When the treasury cannot cover a shortfall the session is
// bankrupt: every active captain is told to shut down, no ship is
// rewarded or penalized, and Run returns [ErrBankrupt].
package ursula
