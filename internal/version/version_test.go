// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"zero value", Info{}, "ocms-localazy dev"},
		{"version only", Info{Version: "v1.0.0"}, "ocms-localazy v1.0.0"},
		{
			"full",
			Info{Version: "v1.0.0", GitCommit: "abc1234", BuildTime: "2025-01-30T12:00:00Z"},
			"ocms-localazy v1.0.0 (abc1234) built 2025-01-30T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfo_UserAgent(t *testing.T) {
	if got := (Info{}).UserAgent(); got != "ocms-localazy/dev" {
		t.Errorf("UserAgent() = %q, want %q", got, "ocms-localazy/dev")
	}
	if got := (Info{Version: "v2.1.0"}).UserAgent(); got != "ocms-localazy/v2.1.0" {
		t.Errorf("UserAgent() = %q, want %q", got, "ocms-localazy/v2.1.0")
	}
}
