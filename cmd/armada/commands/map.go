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

	"github.com/bureau-foundation/armada/cmd/armada/cli"
	"github.com/bureau-foundation/armada/lib/grid"
)

func mapCommand() *cli.Command {
	return &cli.Command{
		Name:    "map",
		Summary: "Inspect charts",
		Subcommands: []*cli.Command{
			{
				Name:    "check",
				Summary: "Load a chart and print its size, digest and cells",
				Usage:   "armada map check FILE",
				Description: `Load a chart the way every ship and captain does and print it.

The digest is what "armada ship --map-digest" compares against; the
captain passes it to each ship so all of them sail the same chart.`,
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					if len(args) != 1 {
						return errors.New("usage: armada map check FILE")
					}
					chart, err := grid.Load(args[0])
					if err != nil {
						return err
					}
					return describeChart(os.Stdout, chart)
				},
			},
		},
	}
}

func describeChart(w io.Writer, chart *grid.Grid) error {
	fmt.Fprintf(w, "size:   %dx%d\n", chart.Width(), chart.Height())
	fmt.Fprintf(w, "digest: %s\n\n", chart.Digest())
	return chart.Render(w)
}
