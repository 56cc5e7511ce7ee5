// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	dst := Entry{
		"a":    Entry{"x": "1", "y": "2"},
		"list": []any{"one"},
		"keep": "kept",
	}
	src := Entry{
		"a":     Entry{"y": "changed", "z": "3"},
		"list":  []any{"two", "three"},
		"new":   []any{"fresh"},
		"plain": "value",
	}

	got := Merge(dst, src)

	assert.Equal(t, Entry{
		"a":     Entry{"x": "1", "y": "changed", "z": "3"},
		"list":  []any{"one", "two", "three"},
		"new":   []any{"fresh"},
		"keep":  "kept",
		"plain": "value",
	}, got)

	// The merged result does not alias the source.
	src["a"].(Entry)["z"] = "mutated"
	src["new"].([]any)[0] = "mutated"
	assert.Equal(t, "3", got["a"].(Entry)["z"])
	assert.Equal(t, "fresh", got["new"].([]any)[0])
}

func TestMerge_NilDestination(t *testing.T) {
	got := Merge(nil, Entry{"k": "v"})
	assert.Equal(t, Entry{"k": "v"}, got)
}

func TestCountValues(t *testing.T) {
	e := Entry{
		"a": Entry{"title": "x", "@title": map[string]any{"limit": 3}, "body": "y"},
		"b": "z",
	}
	assert.Equal(t, 3, CountValues(e))
}

func TestItemID(t *testing.T) {
	assert.Equal(t, "12", ItemID(12.0))
	assert.Equal(t, "abc", ItemID("abc"))
	assert.Equal(t, "7", ItemID(7))
	assert.Equal(t, "9", ItemID(int64(9)))
	assert.Equal(t, "3", ItemID(json.Number("3")))
	assert.Equal(t, "", ItemID(nil))
}
