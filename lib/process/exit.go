// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
	"syscall"
)

// Fatal writes "error: err" to stderr and exits with code 1.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// MaxExitCode is the largest gold figure an exit status can carry.
const MaxExitCode = 255

// ExitCodeForGold returns the exit status a ship uses to report gold.
// Values above MaxExitCode saturate; negative values report zero.
func ExitCodeForGold(gold int) int {
	return max(0, min(gold, MaxExitCode))
}

// ExitStatus is how a ship ended, as seen by whoever reaped it.
type ExitStatus struct {
	// Gold is the reported score. For a process ship it is the exit
	// code, so anything at MaxExitCode may have been more; Saturated
	// marks that case.
	Gold      int
	Saturated bool

	// Abnormal is set when the ship did not exit normally: it was
	// killed by a signal or could not be waited for. Gold is zero.
	Abnormal bool

	// Reason describes an abnormal end.
	Reason string
}

// String renders the gold column of the final score table.
func (s ExitStatus) String() string {
	switch {
	case s.Abnormal:
		return "abnormal (" + s.Reason + ")"
	case s.Saturated:
		return fmt.Sprintf("%d+", s.Gold)
	default:
		return fmt.Sprintf("%d", s.Gold)
	}
}

// DecodeExit interprets the result of (*os.Process).Wait for a ship.
// waitErr is the error returned by Wait, if any.
func DecodeExit(state *os.ProcessState, waitErr error) ExitStatus {
	if state == nil {
		reason := "not reaped"
		if waitErr != nil {
			reason = waitErr.Error()
		}
		return ExitStatus{Abnormal: true, Reason: reason}
	}
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return ExitStatus{Abnormal: true, Reason: "killed by " + status.Signal().String()}
	}
	code := state.ExitCode()
	if code < 0 {
		return ExitStatus{Abnormal: true, Reason: state.String()}
	}
	return ExitStatus{Gold: code, Saturated: code >= MaxExitCode}
}
