// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ManifestEntry is one ship to launch.
type ManifestEntry struct {
	// ID is the operator-facing ship number used in captain commands.
	ID int

	// X and Y are the starting cell.
	X, Y int

	// Speed is the autonomous tick period in seconds.
	Speed int

	// Line is the 1-based manifest line number, for diagnostics.
	Line int
}

// ParseManifestLine parses "id (x,y) speed". Spaces inside the
// parentheses are tolerated.
func ParseManifestLine(line string) (ManifestEntry, error) {
	var entry ManifestEntry
	normalized := strings.Join(strings.Fields(line), " ")
	normalized = strings.NewReplacer("( ", "(", " )", ")", " ,", ",", ", ", ",").Replace(normalized)

	var trailing string
	count, _ := fmt.Sscanf(normalized, "%d (%d,%d) %d %s", &entry.ID, &entry.X, &entry.Y, &entry.Speed, &trailing)
	if count != 4 {
		return ManifestEntry{}, fmt.Errorf("manifest line %q: want \"id (x,y) speed\"", strings.TrimSpace(line))
	}
	if entry.Speed <= 0 {
		return ManifestEntry{}, fmt.Errorf("manifest line %q: speed must be positive", strings.TrimSpace(line))
	}
	return entry, nil
}

// ReadManifest parses every entry in r. Blank lines and lines starting
// with '#' are ignored; malformed lines are logged and skipped.
func ReadManifest(r io.Reader, logger *slog.Logger) ([]ManifestEntry, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var entries []ManifestEntry
	scanner := bufio.NewScanner(r)
	number := 0
	for scanner.Scan() {
		number++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := ParseManifestLine(line)
		if err != nil {
			logger.Warn("skipping manifest line", "line", number, "error", err)
			continue
		}
		entry.Line = number
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return entries, nil
}
