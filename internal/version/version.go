// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "strings"

// Set via ldflags:
//
//	-X github.com/olegiv/evops/internal/version.Version=v1.2.3
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info contains build-time version information.
type Info struct {
	Version   string `json:"version"`              // e.g. "v1.2.3"
	GitCommit string `json:"git_commit,omitempty"` // short hash
	BuildTime string `json:"build_time,omitempty"` // RFC3339
}

// Current returns the version information linked into the binary.
func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}
}

// String formats the info as "v1.2.3 (abc1234, 2025-01-30T12:00:00Z)",
// leaving out unknown parts.
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = "dev"
	}
	var extra []string
	if i.GitCommit != "" {
		extra = append(extra, i.GitCommit)
	}
	if i.BuildTime != "" {
		extra = append(extra, i.BuildTime)
	}
	if len(extra) == 0 {
		return v
	}
	return v + " (" + strings.Join(extra, ", ") + ")"
}
