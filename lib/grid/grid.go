// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

var (
	// ErrNotFound wraps the error returned when the chart file cannot
	// be opened.
	ErrNotFound = errors.New("chart not found")

	// ErrRaggedRows is returned when two non-empty rows differ in
	// length.
	ErrRaggedRows = errors.New("chart rows must all have the same length")

	// ErrEmpty is returned for a chart without a single non-empty row.
	ErrEmpty = errors.New("chart has no rows")
)

// Grid is a rectangular chart. Terrain is fixed after Load; only the
// occupancy overlay changes.
type Grid struct {
	cells  [][]Terrain
	width  int
	height int
	digest [32]byte
}

// Load reads the chart at path.
func Load(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	grid, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loading chart %s: %w", path, err)
	}
	grid.digest = blake3.Sum256(data)
	return grid, nil
}

// Parse reads a chart from r. Blank lines are skipped. The digest of a
// parsed Grid covers only what Load read from disk, so Parse leaves it
// zero.
func Parse(r io.Reader) (*Grid, error) {
	grid := &Grid{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(line) == 0 {
			continue
		}
		if grid.height == 0 {
			grid.width = len(line)
		} else if len(line) != grid.width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrRaggedRows, grid.height, len(line), grid.width)
		}
		row := make([]Terrain, len(line))
		for x, symbol := range line {
			row[x] = Terrain(symbol)
		}
		grid.cells = append(grid.cells, row)
		grid.height++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading chart: %w", err)
	}
	if grid.height == 0 {
		return nil, ErrEmpty
	}
	return grid, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Digest returns the hex BLAKE3 fingerprint of the chart file, or ""
// for a Grid built by Parse.
func (g *Grid) Digest() string {
	if g.digest == [32]byte{} {
		return ""
	}
	return hex.EncodeToString(g.digest[:])
}

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// CanSail reports whether (x, y) is inside the chart and not rock.
// Occupied cells are navigable: collisions are for the arbiter.
func (g *Grid) CanSail(x, y int) bool {
	return g.inBounds(x, y) && g.cells[y][x] != Rock
}

// CellType returns the terrain at (x, y), including any overlay. The
// second result is false outside the chart.
func (g *Grid) CellType(x, y int) (Terrain, bool) {
	if !g.inBounds(x, y) {
		return 0, false
	}
	return g.cells[y][x], true
}

// MarkOccupied draws a ship at (x, y). Marking an occupied cell again
// changes nothing. Returns false outside the chart.
func (g *Grid) MarkOccupied(x, y int) bool {
	if !g.inBounds(x, y) {
		return false
	}
	g.cells[y][x] = g.cells[y][x].Occupied()
	return true
}

// ClearOccupied removes a ship from (x, y), restoring the terrain
// underneath. Outside the chart it does nothing.
func (g *Grid) ClearOccupied(x, y int) {
	if !g.inBounds(x, y) {
		return
	}
	g.cells[y][x] = g.cells[y][x].Underlying()
}

// Render writes the chart, overlays included, one row per line.
func (g *Grid) Render(w io.Writer) error {
	for _, row := range g.cells {
		line := make([]byte, 0, len(row)+1)
		for _, cell := range row {
			line = append(line, byte(cell))
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy, overlays included. Units that
// share a process each sail on their own clone.
func (g *Grid) Clone() *Grid {
	clone := &Grid{width: g.width, height: g.height, digest: g.digest}
	clone.cells = make([][]Terrain, len(g.cells))
	for i, row := range g.cells {
		clone.cells[i] = append([]Terrain(nil), row...)
	}
	return clone
}
