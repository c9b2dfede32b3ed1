// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package grid loads the sea chart every fleet unit sails on.
//
// A chart is a plain text file, one row per line, one terrain symbol
// per character:
//
//	.  open water
//	#  rock (never navigable)
//	P  port (docking restores food)
//	I  island (landing yields gold)
//
// A ship occupying a cell is drawn over the terrain without losing it:
// S over water, H over a port, B over an island. ClearOccupied
// restores the original symbol.
//
// Every unit (captain and each ship) loads its own Grid from the same
// file. Nothing is shared between units, so Grid has no locking. The
// Digest of the raw file lets the captain hand a fingerprint to every
// ship it spawns, and a ship refuses to start on a chart whose digest
// differs.
package grid
