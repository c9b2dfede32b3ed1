// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the armada command tree.
//
// Each role of the simulation is a subcommand. "ursula", "captain" and
// "ship" run one role per process and talk over a named pipe and UNIX
// signals; the captain launches its ships by re-executing the armada
// binary with "ship". "sim" runs every role inside one process over
// in-memory pipes and channels. "report", "map check" and "version"
// are offline helpers.
package commands
