// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInboxFull is returned when a signal is dropped because the target
// has not drained its inbox.
var ErrInboxFull = errors.New("inbox full")

// InboxSize is the per-unit signal buffer.
const InboxSize = 16

// Directory is the in-process signal transport. Each registered unit
// gets a pid, unique for the directory's lifetime, and an inbox.
type Directory struct {
	mu      sync.Mutex
	nextPID int
	inboxes map[int]chan Signal
}

// NewDirectory returns a directory whose first pid is firstPID.
func NewDirectory(firstPID int) *Directory {
	if firstPID <= 0 {
		firstPID = 1
	}
	return &Directory{nextPID: firstPID, inboxes: make(map[int]chan Signal)}
}

// Register allocates a pid and its inbox.
func (d *Directory) Register() (int, <-chan Signal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pid := d.nextPID
	d.nextPID++
	inbox := make(chan Signal, InboxSize)
	d.inboxes[pid] = inbox
	return pid, inbox
}

// Unregister removes pid. Later sends to it fail with ErrNoSuchUnit.
// The inbox is not closed; its owner simply stops reading it.
func (d *Directory) Unregister(pid int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inboxes, pid)
}

// Send queues sig for pid without blocking.
func (d *Directory) Send(pid int, sig Signal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	inbox, ok := d.inboxes[pid]
	if !ok {
		return fmt.Errorf("sending %s to %d: %w", sig, pid, ErrNoSuchUnit)
	}
	select {
	case inbox <- sig:
		return nil
	default:
		return fmt.Errorf("sending %s to %d: %w", sig, pid, ErrInboxFull)
	}
}
