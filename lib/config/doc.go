// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML configuration shared by the armada
// commands.
//
// Configuration comes from a single file named by the ARMADA_CONFIG
// environment variable (via [Load]) or a --config flag (via [LoadFile]).
// There is no discovery and no search path. Values absent from the file
// keep the [Default] value, and command-line flags override both.
//
// Path fields support ${VAR} and ${VAR:-default} expansion after
// loading. ${ARMADA_ROOT} refers to paths.root.
package config
