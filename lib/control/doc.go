// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package control carries out-of-band control events between fleet
// units: ursula rewarding or penalizing a ship, the captain asking a
// ship for status or telling it to terminate, and ursula telling a
// captain to shut down.
//
// A [Signal] names the event independently of how it travels. Between
// OS processes each signal maps onto a UNIX signal ([UnixSignaler],
// [NotifyOS]). Inside one process a [Directory] hands every unit a
// synthetic pid and a buffered inbox channel, so the same arbiter and
// captain code drive goroutine ships.
//
// Delivery is fire-and-forget in both transports. Like UNIX signals,
// a Directory inbox that is already full drops the new signal.
package control
