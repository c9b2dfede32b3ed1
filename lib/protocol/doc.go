// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines every line-oriented text format spoken
// between fleet units:
//
//   - directives the captain writes to a ship's command channel
//     (up, down, left, right, exit) and the OK/NOK confirmations and
//     status lines a ship writes back on its response channel;
//   - events ships and captains write to ursula's broadcast bus,
//     "pid,TYPE[,x,y,food,gold]";
//   - fleet manifest entries, "id (x,y) speed".
//
// All formats are one record per line. Parsers are lenient about
// surrounding whitespace and directive case, and strict about field
// counts and integer syntax.
package protocol
