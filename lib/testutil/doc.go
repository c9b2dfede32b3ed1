// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by armada's tests.
//
// [RequireReceive], [RequireSend], [RequireClosed] and
// [RequireNoReceive] wrap the select-with-timeout pattern so tests
// never hang on a lost message. They are the only place tests wait on
// the wall clock; everything else runs on [clock.FakeClock].
//
// [WriteFile] and [WriteChart] drop fixtures into a per-test temporary
// directory.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
