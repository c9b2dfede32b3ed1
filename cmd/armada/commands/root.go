// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/armada/cmd/armada/cli"
	"github.com/bureau-foundation/armada/lib/version"
)

// Root returns the armada command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "armada",
		Description: `Armada: a fleet of ships sailing a shared chart.

Ships move on orders from their captain or at random, collect gold on
islands and food in ports, and fight when they share a cell. Ursula
referees every combat and pays rewards out of a finite treasury.`,
		Subcommands: []*cli.Command{
			ursulaCommand(),
			captainCommand(),
			shipCommand(),
			simCommand(),
			reportCommand(),
			journalCommand(),
			mapCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Fprintf(os.Stdout, "armada %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Start the arbiter, then a captain in another terminal",
				Command:     "armada ursula --bus /tmp/armada.bus",
			},
			{
				Command: "armada captain --map map.txt --ships ships.txt --bus /tmp/armada.bus",
			},
			{
				Description: "Run everything in one process with random fleets",
				Command:     "armada sim --map map.txt --ships ships.txt --random",
			},
		},
	}
}
