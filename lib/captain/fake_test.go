// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package captain

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/grid"
	"github.com/bureau-foundation/armada/lib/process"
	"github.com/bureau-foundation/armada/lib/protocol"
)

// fakeHandle is a ship that never answers on its own. Terminate makes
// it exit with its configured gold.
type fakeHandle struct {
	pid            int
	gold           int
	directives     chan string
	signals        chan control.Signal
	responses      *io.PipeReader
	responseWriter *io.PipeWriter
	exit           chan struct{}
	exitOnce       sync.Once
}

func newFakeHandle(pid, gold int) *fakeHandle {
	reader, writer := io.Pipe()
	return &fakeHandle{
		pid:            pid,
		gold:           gold,
		directives:     make(chan string, 16),
		signals:        make(chan control.Signal, 16),
		responses:      reader,
		responseWriter: writer,
		exit:           make(chan struct{}),
	}
}

func (h *fakeHandle) PID() int             { return h.pid }
func (h *fakeHandle) Responses() io.Reader { return h.responses }

func (h *fakeHandle) Directives() io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		h.directives <- strings.TrimSpace(string(p))
		return len(p), nil
	})
}

func (h *fakeHandle) Signal(sig control.Signal) error {
	h.signals <- sig
	if sig == control.Terminate {
		h.quit()
	}
	return nil
}

// quit makes the ship exit without being asked.
func (h *fakeHandle) quit() {
	h.exitOnce.Do(func() { close(h.exit) })
}

// respond writes one line on the ship's response channel. It blocks
// until the captain reads it.
func (h *fakeHandle) respond(t *testing.T, line string) {
	t.Helper()
	if _, err := io.WriteString(h.responseWriter, line+"\n"); err != nil {
		t.Fatalf("writing response %q: %v", line, err)
	}
}

func (h *fakeHandle) Wait() process.ExitStatus {
	<-h.exit
	h.responseWriter.Close()
	return process.ExitStatus{Gold: h.gold}
}

func (h *fakeHandle) Close() error { return nil }

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// fakeSpawner hands out fakeHandles with pids 100, 101, ... and fails
// for the ids listed in fail.
type fakeSpawner struct {
	mu      sync.Mutex
	fail    map[int]bool
	handles []*fakeHandle
	specs   []ShipSpec
}

func (s *fakeSpawner) Spawn(_ context.Context, spec ShipSpec) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[spec.ID] {
		return nil, errors.New("spawn refused")
	}
	handle := newFakeHandle(100+len(s.handles), spec.ID*10)
	s.handles = append(s.handles, handle)
	s.specs = append(s.specs, spec)
	return handle, nil
}

// recorder is a Publisher that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []protocol.Event
}

func (r *recorder) Publish(event protocol.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) snapshot() []protocol.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]protocol.Event(nil), r.events...)
}

func parseChart(t *testing.T, rows ...string) *grid.Grid {
	t.Helper()
	g, err := grid.Parse(strings.NewReader(strings.Join(rows, "\n")))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func entry(id, x, y, speed int) protocol.ManifestEntry {
	return protocol.ManifestEntry{ID: id, X: x, Y: y, Speed: speed}
}
