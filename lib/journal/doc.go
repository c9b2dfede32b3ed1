// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal keeps a SQLite audit trail of arbiter sessions.
//
// Each arbiter session is a [Run] identified by a UUID. Every bus
// event the arbiter accepts and every combat it settles is appended to
// the run. The journal is write-only from the arbiter's point of view:
// nothing in a session depends on reading it back, so a journal
// failure costs history, never correctness.
//
// Connections come from a zombiezen sqlitex pool with WAL journaling,
// NORMAL synchronous and a busy timeout, so an operator can query the
// database while a session is still writing to it.
//
//	j, err := journal.Open(ctx, journal.Config{Path: "armada.db", Logger: logger})
//	run, err := j.Begin(ctx, "bay-session")
//	err = run.RecordEvent(ctx, event)
//	err = run.End(ctx, "quiescent")
package journal
