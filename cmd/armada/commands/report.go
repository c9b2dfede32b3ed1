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
	"github.com/bureau-foundation/armada/lib/codec"
	"github.com/bureau-foundation/armada/lib/ursula"
)

type reportParams struct {
	Diag bool `flag:"diag" desc:"print the snapshot in CBOR diagnostic notation instead of a table"`
}

func reportCommand() *cli.Command {
	var params reportParams

	return &cli.Command{
		Name:    "report",
		Summary: "Print a snapshot written by ursula",
		Usage:   "armada report [--diag] FILE",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return errors.New("usage: armada report [--diag] FILE")
			}
			return printReport(os.Stdout, args[0], params.Diag)
		},
	}
}

func printReport(w io.Writer, path string, diag bool) error {
	snapshot, err := ursula.ReadSnapshot(path)
	if err != nil {
		return err
	}
	if !diag {
		return snapshot.Report(w)
	}

	encoded, err := codec.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	text, err := codec.Diagnose(encoded)
	if err != nil {
		return fmt.Errorf("diagnosing snapshot: %w", err)
	}
	_, err = fmt.Fprintln(w, text)
	return err
}
