// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package langmap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// langmap tests cannot use testutil: it depends on store, which imports langmap.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const customMappings = `[
	{"directusCode":"zh-Hans","localazyCode":"zh-CN#Hans","description":"Simplified Chinese"},
	{"directusCode":"sr-Latn","localazyCode":"sr_Latn_RS"},
	{"directusCode":"","localazyCode":"ignored"}
]`

func TestMapper_CustomMappingsRoundTrip(t *testing.T) {
	m := New(customMappings, discardLogger())

	pairs := map[string]string{
		"zh-Hans": "zh-CN#Hans",
		"sr-Latn": "sr_Latn_RS",
	}
	for source, remote := range pairs {
		assert.Equal(t, remote, m.ToRemote(source))
		assert.Equal(t, source, m.ToSource(remote))
		assert.True(t, m.HasCustomMapping(source))
		assert.True(t, m.HasCustomMapping(remote))
	}

	assert.False(t, m.HasCustomMapping("ignored"))
	assert.Len(t, m.Mappings(), 2)
}

func TestMapper_DefaultHeuristic(t *testing.T) {
	m := New("[]", discardLogger())

	assert.Equal(t, "en_US", m.ToRemote("en-US"))
	assert.Equal(t, "en-US", m.ToSource("en_US"))
	assert.Equal(t, "zh_Hans-CN", m.ToRemote("zh-Hans-CN"))
	assert.Equal(t, "pt-BR_x", m.ToSource("pt_BR_x"))
	assert.Equal(t, "de", m.ToRemote("de"))

	for _, code := range []string{"en", "en-US", "pt-BR", "es-419", "fr"} {
		assert.Equal(t, code, m.ToSource(m.ToRemote(code)), "round trip of %q", code)
	}
	assert.False(t, m.HasCustomMapping("en-US"))
}

func TestMapper_MalformedJSONFailsOpen(t *testing.T) {
	for _, in := range []string{"{", "not json", `{"directusCode":"a"}`, ""} {
		m := New(in, discardLogger())
		require.NotNil(t, m)
		assert.Empty(t, m.Mappings())
		assert.Equal(t, "en_GB", m.ToRemote("en-GB"))
	}
}

func TestMapper_KeepsNonEmptyCodesVerbatim(t *testing.T) {
	m := New(`[{"directusCode":" ","localazyCode":"blank"},{"directusCode":"de ","localazyCode":"de_AT"}]`, nil)

	assert.Len(t, m.Mappings(), 2)
	assert.Equal(t, "blank", m.ToRemote(" "))
	assert.Equal(t, "de_AT", m.ToRemote("de "))
	assert.Equal(t, "de", m.ToRemote("de"), "lookups are exact, not trimmed")
}

func TestMapper_NilLogger(t *testing.T) {
	m := New("broken", nil)
	assert.Equal(t, "pt_BR", m.ToRemote("pt-BR"))
}

func TestMapper_Lookups(t *testing.T) {
	m := New(customMappings, nil)

	remote, ok := m.RemoteMapping("zh-Hans")
	assert.True(t, ok)
	assert.Equal(t, "zh-CN#Hans", remote)

	source, ok := m.SourceMapping("sr_Latn_RS")
	assert.True(t, ok)
	assert.Equal(t, "sr-Latn", source)

	_, ok = m.RemoteMapping("en")
	assert.False(t, ok)
}
