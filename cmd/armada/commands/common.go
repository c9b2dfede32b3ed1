// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/bureau-foundation/armada/lib/config"
	"github.com/bureau-foundation/armada/lib/protocol"
)

// loadConfig reads the config named by --config, else ARMADA_CONFIG,
// else starts from the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
		cfg.ExpandPaths()
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// validated applies flag overrides through apply, then validates.
func validated(cfg *config.Config, apply func(*config.Config)) (*config.Config, error) {
	apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// firstSet returns override when it is non-zero, else fallback.
func firstSet[V comparable](override, fallback V) V {
	var zero V
	if override != zero {
		return override
	}
	return fallback
}

// picker returns a uniform index picker safe for concurrent use. A
// zero seed draws from the global generator.
func picker(seed uint64) func(n int) int {
	if seed == 0 {
		return rand.IntN
	}
	var mu sync.Mutex
	source := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return source.IntN(n)
	}
}

func readManifest(path string, logger *slog.Logger) ([]protocol.ManifestEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer file.Close()

	entries, err := protocol.ReadManifest(file, logger)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("manifest %s lists no ships", path)
	}
	return entries, nil
}
