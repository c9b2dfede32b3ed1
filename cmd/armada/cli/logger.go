// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// NewLogger returns the logger handed to every command. On a terminal
// stderr gets text output; otherwise JSON, so logs from ships, captain
// and ursula can be collected and parsed together.
func NewLogger(level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// ParseLevel accepts the slog level names, case-insensitively.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

// logLevel reads --log-level when the command defines it.
func logLevel(flagSet *pflag.FlagSet) (slog.Level, error) {
	flag := flagSet.Lookup("log-level")
	if flag == nil {
		return slog.LevelInfo, nil
	}
	return ParseLevel(flag.Value.String())
}
