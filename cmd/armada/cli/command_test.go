// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	t.Parallel()

	var called string
	root := &Command{
		Name: "armada",
		Subcommands: []*Command{
			{Name: "ursula", Run: func(context.Context, []string, *slog.Logger) error {
				called = "ursula"
				return nil
			}},
			{Name: "captain", Run: func(context.Context, []string, *slog.Logger) error {
				called = "captain"
				return nil
			}},
		},
	}

	if err := root.Execute(context.Background(), []string{"captain"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "captain" {
		t.Errorf("dispatched to %q, want captain", called)
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	t.Parallel()

	var received []string
	root := &Command{
		Name: "armada",
		Subcommands: []*Command{{
			Name: "map",
			Subcommands: []*Command{{
				Name: "check",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					received = args
					return nil
				},
			}},
		}},
	}

	if err := root.Execute(context.Background(), []string{"map", "check", "bay.txt"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(received) != 1 || received[0] != "bay.txt" {
		t.Errorf("args = %v, want [bay.txt]", received)
	}
}

type testParams struct {
	LogParams
	Food   int           `flag:"food" desc:"starting food" default:"100"`
	Random bool          `flag:"random,r" desc:"autonomous"`
	Period time.Duration `flag:"period" default:"2s"`
	Seed   uint64        `flag:"seed"`
	Name   string        `flag:"name"`
}

func TestCommand_Execute_BindsParams(t *testing.T) {
	t.Parallel()

	var params testParams
	var got testParams
	command := &Command{
		Name:   "ship",
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			got = params
			return nil
		},
	}

	err := command.Execute(context.Background(), []string{
		"--food", "40", "-r", "--period=500ms", "--seed", "9", "--name", "hind", "--log-level", "debug",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Food != 40 || !got.Random || got.Period != 500*time.Millisecond || got.Seed != 9 || got.Name != "hind" {
		t.Errorf("params = %+v", got)
	}
	if got.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", got.LogLevel)
	}
}

func TestCommand_Execute_AppliesDefaults(t *testing.T) {
	t.Parallel()

	var params testParams
	command := &Command{
		Name:   "ship",
		Params: func() any { return &params },
		Run:    func(context.Context, []string, *slog.Logger) error { return nil },
	}
	if err := command.Execute(context.Background(), nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if params.Food != 100 || params.Period != 2*time.Second || params.LogLevel != "info" {
		t.Errorf("defaults = %+v", params)
	}
}

func TestCommand_Execute_RejectsBadLogLevel(t *testing.T) {
	t.Parallel()

	var params testParams
	command := &Command{
		Name:   "ship",
		Params: func() any { return &params },
		Run:    func(context.Context, []string, *slog.Logger) error { return nil },
	}
	err := command.Execute(context.Background(), []string{"--log-level", "loud"})
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("err = %v, want invalid log level", err)
	}
}

func TestCommand_Execute_SuggestsCommand(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name: "armada",
		Subcommands: []*Command{
			{Name: "captain", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}
	err := root.Execute(context.Background(), []string{"captian"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "captain"`) {
		t.Errorf("error %q has no suggestion", err)
	}
}

func TestCommand_Execute_SuggestsFlag(t *testing.T) {
	t.Parallel()

	var params testParams
	command := &Command{
		Name:   "ship",
		Params: func() any { return &params },
		Run:    func(context.Context, []string, *slog.Logger) error { return nil },
	}
	err := command.Execute(context.Background(), []string{"--periodd", "1s"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --period") {
		t.Errorf("error %q has no suggestion", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	t.Parallel()

	var help bytes.Buffer
	root := &Command{
		Name:   "armada",
		Output: &help,
		Subcommands: []*Command{
			{Name: "version", Summary: "Print version information"},
		},
	}
	if err := root.Execute(context.Background(), nil); err == nil {
		t.Fatal("expected error without a subcommand")
	}
	if !strings.Contains(help.String(), "version") {
		t.Errorf("help output missing subcommand listing:\n%s", help.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	t.Parallel()

	var params testParams
	root := &Command{Name: "armada"}
	command := &Command{
		Name:        "ship",
		Description: "Run one ship.",
		Params:      func() any { return &params },
		Examples:    []Example{{Description: "Sail under orders", Command: "armada ship --captain"}},
		parent:      root,
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()
	for _, want := range []string{"Run one ship.", "armada ship [flags]", "--food", "--log-level", "# Sail under orders"} {
		if !strings.Contains(output, want) {
			t.Errorf("help missing %q:\n%s", want, output)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"ship", "ship", 0},
		{"ship", "shp", 1},
		{"captian", "captain", 2},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(name)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
