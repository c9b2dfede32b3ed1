// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"strings"
	"testing"
)

func TestParseManifestLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want ManifestEntry
	}{
		{"1 (0,0) 2", ManifestEntry{ID: 1, X: 0, Y: 0, Speed: 2}},
		{"12 (3, 4) 1", ManifestEntry{ID: 12, X: 3, Y: 4, Speed: 1}},
		{"  5   ( 6 , 7 )   3  ", ManifestEntry{ID: 5, X: 6, Y: 7, Speed: 3}},
	}
	for _, test := range tests {
		got, err := ParseManifestLine(test.line)
		if err != nil {
			t.Errorf("ParseManifestLine(%q): %v", test.line, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseManifestLine(%q) = %+v, want %+v", test.line, got, test.want)
		}
	}
}

func TestParseManifestLineRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, line := range []string{
		"1 0,0 2",
		"1 (0,0)",
		"ship (0,0) 2",
		"1 (0,0) 0",
		"1 (0,0) 2 extra",
	} {
		if _, err := ParseManifestLine(line); err == nil {
			t.Errorf("ParseManifestLine(%q) succeeded, want error", line)
		}
	}
}

func TestReadManifestSkipsCommentsAndMalformed(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"# fleet",
		"1 (0,0) 1",
		"",
		"garbage",
		"2 (2,0) 3",
	}, "\n")

	entries, err := ReadManifest(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != 1 || entries[0].Line != 2 {
		t.Errorf("entries[0] = %+v, want id 1 on line 2", entries[0])
	}
	if entries[1].ID != 2 || entries[1].Speed != 3 || entries[1].Line != 5 {
		t.Errorf("entries[1] = %+v, want id 2 speed 3 on line 5", entries[1])
	}
}
