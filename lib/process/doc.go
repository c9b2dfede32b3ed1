// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds entrypoint and child-process helpers.
//
// [Fatal] is the pre-logger error exit used by main. [ExitCodeForGold]
// maps a ship's final gold onto its exit status, and [DecodeExit]
// turns a reaped child's *os.ProcessState back into a gold figure or
// an abnormal-termination report.
package process
