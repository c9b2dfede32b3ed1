// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bus carries fleet events to ursula, the arbiter.
//
// Two transports implement the same contract. [CreateFIFO] and
// [OpenFIFOReader] set up the named pipe ursula listens on in a
// multi-process deployment; [FIFOPublisher] is the writer side used by
// ships and captains. [Pipe] is an in-memory equivalent used when the
// whole fleet runs inside one process.
//
// Publishing is always best-effort. A fleet unit keeps running when
// ursula is absent or has exited: the first failure is logged at warn
// level, later failures are dropped silently, and no publish ever
// blocks the caller for long.
//
// Every event is written with a single write so that concurrent
// writers on one FIFO cannot interleave partial lines. Readers use
// [LineReader] or [Stream], which reassemble lines split across reads.
package bus
