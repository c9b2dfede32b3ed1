// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/armada/lib/version.Commit=$(git rev-parse --short HEAD)"
var (
	Commit    = ""
	Dirty     = ""
	BuildTime = ""
	Version   = "0.1.0-dev"
)

// stamp is the resolved build identity.
type stamp struct {
	commit string
	dirty  bool
	time   string
}

func resolve(info *debug.BuildInfo, haveInfo bool) stamp {
	result := stamp{commit: Commit, dirty: Dirty == "true", time: BuildTime}
	if haveInfo {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if result.commit == "" && len(setting.Value) >= 7 {
					result.commit = setting.Value[:7]
				}
			case "vcs.modified":
				if Dirty == "" {
					result.dirty = setting.Value == "true"
				}
			case "vcs.time":
				if result.time == "" {
					result.time = setting.Value
				}
			}
		}
	}
	if result.commit == "" {
		result.commit = "unknown"
	}
	if result.time == "" {
		result.time = "unknown"
	}
	return result
}

func format(s stamp) string {
	dirty := ""
	if s.dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, s.commit, dirty, s.time)
}

// Info returns the one-line version string printed by "armada version".
func Info() string {
	info, ok := debug.ReadBuildInfo()
	return format(resolve(info, ok))
}

// Full adds the Go toolchain and platform to Info.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
