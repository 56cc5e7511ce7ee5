// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Product is the name reported in version strings and the User-Agent.
const Product = "ocms-localazy"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// OrDev returns the version, or "dev" for builds without ldflags.
func (i Info) OrDev() string {
	if i.Version == "" {
		return "dev"
	}
	return i.Version
}

// UserAgent returns the User-Agent sent to the Localazy API.
func (i Info) UserAgent() string {
	return Product + "/" + i.OrDev()
}

func (i Info) String() string {
	s := fmt.Sprintf("%s %s", Product, i.OrDev())
	if i.GitCommit != "" {
		s += " (" + i.GitCommit + ")"
	}
	if i.BuildTime != "" {
		s += " built " + i.BuildTime
	}
	return s
}
