// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const chart = `.....
.#P..
..I..
`

func parseChart(t *testing.T, text string) *Grid {
	t.Helper()
	g, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func TestParseDimensions(t *testing.T) {
	t.Parallel()

	g := parseChart(t, "\n"+chart+"\n")
	if g.Width() != 5 || g.Height() != 3 {
		t.Fatalf("dimensions = %dx%d, want 5x3", g.Width(), g.Height())
	}
}

func TestParseRejectsRaggedRows(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("....\n...\n"))
	if !errors.Is(err, ErrRaggedRows) {
		t.Fatalf("Parse error = %v, want ErrRaggedRows", err)
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("\n\n"))
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("Parse error = %v, want ErrEmpty", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load error = %v, want ErrNotFound", err)
	}
}

func TestLoadDigestMatchesContent(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	first := filepath.Join(directory, "a.txt")
	second := filepath.Join(directory, "b.txt")
	other := filepath.Join(directory, "c.txt")
	for path, text := range map[string]string{first: chart, second: chart, other: chart + "..P..\n"} {
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	a, err := Load(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(second)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Load(other)
	if err != nil {
		t.Fatal(err)
	}

	if a.Digest() == "" || len(a.Digest()) != 64 {
		t.Fatalf("Digest() = %q, want 64 hex characters", a.Digest())
	}
	if a.Digest() != b.Digest() {
		t.Errorf("identical charts produced different digests")
	}
	if a.Digest() == c.Digest() {
		t.Errorf("different charts produced the same digest")
	}
}

func TestCanSail(t *testing.T) {
	t.Parallel()

	g := parseChart(t, chart)
	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"water", 0, 0, true},
		{"rock", 1, 1, false},
		{"port", 2, 1, true},
		{"island", 2, 2, true},
		{"left of chart", -1, 0, false},
		{"below chart", 0, 3, false},
		{"right of chart", 5, 0, false},
	}
	for _, test := range tests {
		if got := g.CanSail(test.x, test.y); got != test.want {
			t.Errorf("%s: CanSail(%d,%d) = %v, want %v", test.name, test.x, test.y, got, test.want)
		}
	}
}

func TestOccupancyOverlayRestoresTerrain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		x, y     int
		terrain  Terrain
		occupied Terrain
	}{
		{"water", 0, 0, Water, ShipOnWater},
		{"port", 2, 1, Port, ShipOnPort},
		{"island", 2, 2, Island, ShipOnIsland},
	}
	for _, test := range tests {
		g := parseChart(t, chart)

		if !g.MarkOccupied(test.x, test.y) {
			t.Fatalf("%s: MarkOccupied returned false", test.name)
		}
		if !g.MarkOccupied(test.x, test.y) {
			t.Fatalf("%s: second MarkOccupied returned false", test.name)
		}
		cell, ok := g.CellType(test.x, test.y)
		if !ok || cell != test.occupied {
			t.Errorf("%s: occupied cell = %q, want %q", test.name, cell, test.occupied)
		}
		if cell.Underlying() != test.terrain {
			t.Errorf("%s: Underlying() = %q, want %q", test.name, cell.Underlying(), test.terrain)
		}

		g.ClearOccupied(test.x, test.y)
		cell, _ = g.CellType(test.x, test.y)
		if cell != test.terrain {
			t.Errorf("%s: cleared cell = %q, want %q", test.name, cell, test.terrain)
		}
	}
}

func TestOccupancyOutsideChart(t *testing.T) {
	t.Parallel()

	g := parseChart(t, chart)
	if g.MarkOccupied(9, 9) {
		t.Error("MarkOccupied outside the chart returned true")
	}
	g.ClearOccupied(-1, -1)
	if _, ok := g.CellType(9, 9); ok {
		t.Error("CellType outside the chart reported ok")
	}
}

func TestRockIsNeverOverlaid(t *testing.T) {
	t.Parallel()

	g := parseChart(t, chart)
	g.MarkOccupied(1, 1)
	if cell, _ := g.CellType(1, 1); cell != Rock {
		t.Errorf("rock cell after MarkOccupied = %q, want '#'", cell)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	g := parseChart(t, chart)
	g.MarkOccupied(0, 0)
	var out strings.Builder
	if err := g.Render(&out); err != nil {
		t.Fatal(err)
	}
	if want := "S....\n.#P..\n..I..\n"; out.String() != want {
		t.Errorf("Render() = %q, want %q", out.String(), want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	original := parseChart(t, chart)
	clone := original.Clone()
	clone.MarkOccupied(2, 1)

	if cell, _ := original.CellType(2, 1); cell != Port {
		t.Errorf("original cell after marking clone = %q, want 'P'", cell)
	}
	if cell, _ := clone.CellType(2, 1); cell != ShipOnPort {
		t.Errorf("clone cell = %q, want 'H'", cell)
	}
	if clone.Digest() != original.Digest() {
		t.Error("clone digest differs from original")
	}
}
