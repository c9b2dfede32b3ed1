// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"io"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/armada/lib/protocol"
)

// Publisher sends events to ursula. Publish never fails from the
// caller's point of view; delivery problems are the publisher's to log.
type Publisher interface {
	Publish(event protocol.Event)
}

// Discard is a Publisher for units running without a bus.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(protocol.Event) {}

// WriterPublisher writes events to an io.Writer, one Write per event.
// It is safe for concurrent use.
type WriterPublisher struct {
	mu     sync.Mutex
	writer io.Writer
	logger *slog.Logger
	warned bool
}

// NewWriterPublisher returns a publisher writing to w.
func NewWriterPublisher(w io.Writer, logger *slog.Logger) *WriterPublisher {
	return &WriterPublisher{writer: w, logger: logger}
}

// Publish writes event. The first write error is logged; later errors
// are dropped.
func (p *WriterPublisher) Publish(event protocol.Event) {
	line, err := event.Frame()
	if err != nil {
		p.logger.Warn("dropping event", "error", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.writer.Write(line); err != nil && !p.warned {
		p.warned = true
		p.logger.Warn("event bus unavailable, dropping events",
			"event", event.Type,
			"pid", event.PID,
			"error", err,
		)
	}
}
