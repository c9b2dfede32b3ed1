// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// LineReader yields newline-terminated records from an underlying
// reader. Records split across reads are reassembled, blank lines are
// skipped, and a trailing "\r" is removed.
type LineReader struct {
	reader *bufio.Reader
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// Next returns the next non-blank line without its terminator. A final
// line with no newline is still returned. At end of input Next returns
// io.EOF.
func (l *LineReader) Next() (string, error) {
	for {
		raw, err := l.reader.ReadString('\n')
		line := strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(line) != "" {
			// Deliver a complete record even when the read that
			// finished it also hit EOF; the error resurfaces on the
			// next call.
			return line, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// Stream delivers lines from a reader on a channel. It owns one
// goroutine, which exits when the input ends, a read fails, or the
// context is cancelled.
type Stream struct {
	lines chan string
	done  chan struct{}
	err   error
}

// NewStream starts reading r. Cancelling ctx stops delivery, but a
// goroutine blocked inside r.Read stays blocked until the read returns;
// callers that need prompt shutdown close r as well.
func NewStream(ctx context.Context, r io.Reader) *Stream {
	stream := &Stream{
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go stream.run(ctx, NewLineReader(r))
	return stream
}

func (s *Stream) run(ctx context.Context, reader *LineReader) {
	defer close(s.done)
	defer close(s.lines)
	for {
		line, err := reader.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return
		}
		select {
		case s.lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

// Lines returns the delivery channel. It is closed when the stream
// ends.
func (s *Stream) Lines() <-chan string {
	return s.lines
}

// Err returns the read error that ended the stream, or nil for a clean
// end of input or cancellation. It blocks until the stream has ended.
func (s *Stream) Err() error {
	<-s.done
	return s.err
}
