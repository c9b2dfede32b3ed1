// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the armada binary.
//
// [Commit], [Dirty], [BuildTime] and [Version] can be injected with
// -ldflags -X. When they are not, [Info] falls back to the VCS stamp
// the Go toolchain embeds in the binary, so development builds still
// identify their commit.
package version
