// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework behind the armada binary.
//
// A [Command] has a name, help text, an optional parameter struct whose
// tagged fields become pflag flags (see [BindFlags]), nested
// subcommands and a Run function. [Command.Execute] routes arguments
// down the tree, parses flags, builds the command's logger from
// --log-level and calls Run. Unknown commands and flags get a
// "did you mean" suggestion when one is within edit distance 3.
package cli
