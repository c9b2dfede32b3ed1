// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is armada's binary encoding for on-disk state.
//
// Values are encoded as CBOR with Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items, so the same value always produces the same
// bytes. Types meant only for this format carry `cbor` struct tags.
//
// [WriteFile] wraps the CBOR bytes in a zstd frame and replaces the
// destination atomically (temporary file, fsync, rename), so a reader
// never sees a half-written snapshot. [ReadFile] reverses both steps.
//
//	err := codec.WriteFile("/var/lib/armada/ursula.snapshot", snapshot)
//	err = codec.ReadFile("/var/lib/armada/ursula.snapshot", &snapshot)
package codec
