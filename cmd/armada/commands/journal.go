// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/armada/cmd/armada/cli"
	"github.com/bureau-foundation/armada/lib/journal"
)

func journalCommand() *cli.Command {
	return &cli.Command{
		Name:    "journal",
		Summary: "List the sessions recorded in a journal database",
		Usage:   "armada journal FILE",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return errors.New("usage: armada journal FILE")
			}
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("journal: %w", err)
			}
			store, err := journal.Open(ctx, journal.Config{Path: args[0], Logger: logger})
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(ctx)
			if err != nil {
				return err
			}
			return printRuns(os.Stdout, runs)
		},
	}
}

func printRuns(w io.Writer, runs []journal.Summary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no sessions recorded")
		return err
	}

	renderer := lipgloss.NewRenderer(w)
	heading := renderer.NewStyle().Bold(true)

	rows := [][]string{{"RUN", "LABEL", "STARTED", "OUTCOME", "EVENTS", "COMBATS"}}
	for _, run := range runs {
		outcome := run.Outcome
		if outcome == "" {
			outcome = "unfinished"
		}
		rows = append(rows, []string{
			run.ID, run.Label, run.StartedAt, outcome,
			strconv.Itoa(run.Events), strconv.Itoa(run.Combats),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for column, cell := range row {
			widths[column] = max(widths[column], lipgloss.Width(cell))
		}
	}
	for index, row := range rows {
		var builder strings.Builder
		for column, cell := range row {
			if column > 0 {
				builder.WriteString("  ")
			}
			builder.WriteString(cell)
			builder.WriteString(strings.Repeat(" ", widths[column]-lipgloss.Width(cell)))
		}
		line := strings.TrimRight(builder.String(), " ")
		if index == 0 {
			line = heading.Render(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
