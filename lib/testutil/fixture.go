// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to name inside a fresh temporary directory
// and returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}

// WriteChart writes a map file whose rows are the given strings.
//
//	path := testutil.WriteChart(t, "..P", ".#.", "I..")
func WriteChart(t testing.TB, rows ...string) string {
	t.Helper()
	return WriteFile(t, "map.txt", strings.Join(rows, "\n")+"\n")
}
