// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ursula

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	arbiter, _ := newArbiter(t, 0, 0)
	if err := arbiter.Run(context.Background(), lines(
		"40,INIT_CAPT",
		"2,INIT,1,1,100,0",
		"1,INIT,1,0,100,30",
		"1,MOVE,1,1,95,30",
	)); err != nil {
		t.Fatal(err)
	}

	taken := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	snapshot := arbiter.Snapshot(OutcomeInterrupted, taken)
	path := filepath.Join(t.TempDir(), "ursula.snapshot")
	if err := WriteSnapshot(path, snapshot); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	loaded, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if !loaded.TakenAt.Equal(taken) {
		t.Errorf("TakenAt = %v, want %v", loaded.TakenAt, taken)
	}
	if loaded.Outcome != OutcomeInterrupted || loaded.Treasury != snapshot.Treasury {
		t.Errorf("loaded %+v", loaded)
	}
	if len(loaded.Ships) != 2 || loaded.Ships[0].PID != 1 || loaded.Ships[1].PID != 2 {
		t.Errorf("ships = %+v, want pids 1 and 2 in order", loaded.Ships)
	}
	if len(loaded.Combats) != 1 || loaded.Combats[0].Winner != 1 {
		t.Errorf("combats = %+v, want one won by pid 1", loaded.Combats)
	}

	var report strings.Builder
	if err := loaded.Report(&report); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"outcome:  interrupted", "combats:  1", "CAPTAINS", "40  active"} {
		if !strings.Contains(report.String(), want) {
			t.Errorf("report missing %q:\n%s", want, report.String())
		}
	}
}
