// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"io"
	"log/slog"
)

// Pipe is an in-process bus. The reader end is handed to ursula and
// each publisher created with Publisher writes into the writer end.
// Closing the reader makes every later publish fail, which the
// publishers log once and otherwise ignore, the same as a FIFO with no
// reader.
type Pipe struct {
	reader *io.PipeReader
	writer *io.PipeWriter
	shared *WriterPublisher
}

// NewPipe creates an in-memory bus.
func NewPipe(logger *slog.Logger) *Pipe {
	reader, writer := io.Pipe()
	return &Pipe{
		reader: reader,
		writer: writer,
		shared: NewWriterPublisher(writer, logger),
	}
}

// Reader returns the arbiter's end of the bus.
func (p *Pipe) Reader() io.ReadCloser {
	return p.reader
}

// Publisher returns a publisher writing into the bus. All publishers
// share one lock so each event arrives as one uninterrupted line.
func (p *Pipe) Publisher() Publisher {
	return p.shared
}

// Close shuts down both ends of the bus.
func (p *Pipe) Close() error {
	p.writer.Close()
	return p.reader.Close()
}
