// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package captain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/armada/lib/bus"
	"github.com/bureau-foundation/armada/lib/clock"
	"github.com/bureau-foundation/armada/lib/control"
	"github.com/bureau-foundation/armada/lib/grid"
	"github.com/bureau-foundation/armada/lib/process"
	"github.com/bureau-foundation/armada/lib/ship"
)

// LocalSpawner runs ships as goroutines in the current process. Each
// ship sails on its own clone of Grid, receives signals through
// Directory and talks to the captain over in-memory pipes. Grid must
// not be the captain's own chart, which carries fleet overlays.
type LocalSpawner struct {
	Grid      *grid.Grid
	Directory *control.Directory
	Publisher bus.Publisher
	Clock     clock.Clock
	Food      int

	// Intn is shared by every autonomous ship. It must be safe for
	// concurrent use; nil means math/rand/v2.IntN.
	Intn func(n int) int

	Logger *slog.Logger
}

// Spawn creates and starts one goroutine ship. Ships outlive ctx only
// until it is cancelled, which terminates them.
func (s *LocalSpawner) Spawn(ctx context.Context, spec ShipSpec) (Handle, error) {
	pid, inbox := s.Directory.Register()
	commandReader, commandWriter := io.Pipe()
	responseReader, responseWriter := io.Pipe()

	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	vessel, err := ship.New(ship.Config{
		PID:       pid,
		Grid:      s.Grid.Clone(),
		X:         spec.X,
		Y:         spec.Y,
		Food:      s.Food,
		Mode:      spec.Mode,
		Steps:     spec.Steps,
		Period:    spec.Period,
		Publisher: s.Publisher,
		Responses: responseWriter,
		Clock:     s.Clock,
		Intn:      s.Intn,
		Logger:    logger.With("ship_id", spec.ID),
	})
	if err != nil {
		s.Directory.Unregister(pid)
		commandReader.Close()
		responseReader.Close()
		return nil, fmt.Errorf("starting ship %d: %w", spec.ID, err)
	}

	handle := &localHandle{
		pid:       pid,
		directory: s.Directory,
		commands:  commandWriter,
		responses: responseReader,
		done:      make(chan struct{}),
	}
	go func() {
		gold := vessel.Run(ctx, commandReader, inbox)
		s.Directory.Unregister(pid)
		commandReader.Close()
		responseWriter.Close()
		handle.status = process.ExitStatus{Gold: gold}
		close(handle.done)
	}()
	return handle, nil
}

type localHandle struct {
	pid       int
	directory *control.Directory
	commands  *io.PipeWriter
	responses *io.PipeReader

	done   chan struct{}
	status process.ExitStatus

	closeOnce sync.Once
}

func (h *localHandle) PID() int              { return h.pid }
func (h *localHandle) Directives() io.Writer { return h.commands }
func (h *localHandle) Responses() io.Reader  { return h.responses }

func (h *localHandle) Signal(sig control.Signal) error {
	return h.directory.Send(h.pid, sig)
}

func (h *localHandle) Wait() process.ExitStatus {
	<-h.done
	return h.status
}

func (h *localHandle) Close() error {
	h.closeOnce.Do(func() { h.commands.Close() })
	return nil
}
