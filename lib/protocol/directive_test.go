// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "testing"

func TestParseDirective(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want Directive
	}{
		{"up", Directive{Direction: Up}},
		{"DOWN\n", Directive{Direction: Down}},
		{"  Left ", Directive{Direction: Left}},
		{"right", Directive{Direction: Right}},
		{"exit", Directive{Exit: true}},
		{"EXIT", Directive{Exit: true}},
	}
	for _, test := range tests {
		got, err := ParseDirective(test.line)
		if err != nil {
			t.Errorf("ParseDirective(%q): %v", test.line, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseDirective(%q) = %+v, want %+v", test.line, got, test.want)
		}
	}
}

func TestParseDirectiveRejectsUnknown(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"", "north", "up up", "status"} {
		if _, err := ParseDirective(line); err == nil {
			t.Errorf("ParseDirective(%q) succeeded, want error", line)
		}
	}
}

func TestDirectionApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		direction Direction
		wantX     int
		wantY     int
	}{
		{Up, 5, 4},
		{Down, 5, 6},
		{Left, 4, 5},
		{Right, 6, 5},
	}
	for _, test := range tests {
		x, y := test.direction.Apply(5, 5)
		if x != test.wantX || y != test.wantY {
			t.Errorf("%s.Apply(5,5) = (%d,%d), want (%d,%d)", test.direction, x, y, test.wantX, test.wantY)
		}
	}
}

func TestStatusLine(t *testing.T) {
	t.Parallel()

	status := Status{PID: 812, X: 3, Y: 1, Food: 90, Gold: 20}
	want := "PID 812, Location: (3,1), Food: 90, Gold: 20"
	if got := status.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if !IsStatusLine(want) {
		t.Errorf("IsStatusLine(%q) = false", want)
	}
	if IsStatusLine(ReplyOK) {
		t.Errorf("IsStatusLine(%q) = true", ReplyOK)
	}

	parsed, err := ParseStatus(want + "\n")
	if err != nil {
		t.Fatalf("ParseStatus: %v", err)
	}
	if parsed != status {
		t.Errorf("ParseStatus = %+v, want %+v", parsed, status)
	}
}

func TestParseStatusRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := ParseStatus("PID x, Location"); err == nil {
		t.Error("ParseStatus succeeded on garbage")
	}
}

func TestAbortLine(t *testing.T) {
	t.Parallel()

	line := AbortLine("chart digest mismatch:\n  want abc")
	if line != "ABORT: chart digest mismatch: want abc" {
		t.Fatalf("AbortLine = %q", line)
	}
	reason, ok := ParseAbort(line + "\n")
	if !ok || reason != "chart digest mismatch: want abc" {
		t.Errorf("ParseAbort = %q, %v", reason, ok)
	}
	if _, ok := ParseAbort(ReplyNOK); ok {
		t.Errorf("ParseAbort(%q) matched", ReplyNOK)
	}
	if IsStatusLine(line) || IsMoveReply(line) {
		t.Errorf("abort line %q taken for another reply", line)
	}
}
