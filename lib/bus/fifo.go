// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/armada/lib/protocol"
)

// CreateFIFO creates a named pipe at path. An existing FIFO is reused;
// any other existing file is an error.
func CreateFIFO(path string) error {
	err := unix.Mkfifo(path, 0o666)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EEXIST) {
		return fmt.Errorf("creating fifo %s: %w", path, err)
	}
	info, statErr := os.Lstat(path)
	if statErr != nil {
		return fmt.Errorf("inspecting existing %s: %w", path, statErr)
	}
	if info.Mode()&fs.ModeNamedPipe == 0 {
		return fmt.Errorf("%s exists and is not a fifo (mode %s)", path, info.Mode())
	}
	return nil
}

// OpenFIFOReader opens the read end of the FIFO at path. The pipe is
// opened read-write so the reader never observes end-of-file when the
// last writer goes away; writers come and go for the lifetime of a
// session. Closing the returned file unblocks a pending Read.
func OpenFIFOReader(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening fifo %s: %w", path, err)
	}
	return file, nil
}

// RemoveFIFO deletes the FIFO at path. A missing file is not an error.
func RemoveFIFO(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing fifo %s: %w", path, err)
	}
	return nil
}

// FIFOPublisher writes events to the named pipe at a fixed path.
//
// The pipe is opened lazily, non-blocking and write-only: with no
// reader the open fails with ENXIO instead of hanging, and a full pipe
// fails a write with EAGAIN instead of stalling the ship. Raw
// descriptors are used rather than *os.File so those errors reach the
// publisher instead of parking in the runtime poller. After a failed
// open or a broken pipe the next Publish tries again, so a unit started
// before ursula begins reporting once ursula appears.
type FIFOPublisher struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	fd     int
	warned bool
}

// NewFIFOPublisher returns a publisher for the FIFO at path. No file is
// opened until the first Publish.
func NewFIFOPublisher(path string, logger *slog.Logger) *FIFOPublisher {
	return &FIFOPublisher{path: path, logger: logger, fd: -1}
}

// Publish writes event in a single write(2).
func (p *FIFOPublisher) Publish(event protocol.Event) {
	line, err := event.Frame()
	if err != nil {
		p.logger.Warn("dropping event", "path", p.path, "error", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fd < 0 {
		fd, err := unix.Open(p.path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err != nil {
			p.warnOnce(event, "opening", err)
			return
		}
		p.fd = fd
	}

	written, err := unix.Write(p.fd, line)
	if err == nil && written == len(line) {
		return
	}
	if err == nil {
		err = fmt.Errorf("short write: %d of %d bytes", written, len(line))
	}
	p.warnOnce(event, "writing", err)
	if errors.Is(err, unix.EPIPE) {
		unix.Close(p.fd)
		p.fd = -1
	}
}

func (p *FIFOPublisher) warnOnce(event protocol.Event, action string, err error) {
	if p.warned {
		return
	}
	p.warned = true
	p.logger.Warn("event bus unavailable, dropping events",
		"path", p.path,
		"action", action,
		"event", event.Type,
		"pid", event.PID,
		"error", err,
	)
}

// Close releases the descriptor, if one is open.
func (p *FIFOPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fd < 0 {
		return nil
	}
	err := unix.Close(p.fd)
	p.fd = -1
	return err
}
