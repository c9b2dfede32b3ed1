// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Armada runs the fleet simulation: the ursula arbiter, captains and
// their ships, or all three together with "armada sim".
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/armada/cmd/armada/commands"
)

func main() {
	if err := run(); err != nil {
		// Ships exit with their gold and ursula with 1 on bankruptcy;
		// both have already reported, so no "error:" line.
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(context.Background(), os.Args[1:])
}
