// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoChunks(t *testing.T) {
	e := Entry{
		"articles": Entry{
			"1": Entry{"translations": Entry{
				"title":  "A",
				"@title": map[string]any{"limit": 10},
				"body":   "B",
			}},
			"2": Entry{"translations": Entry{"title": "C"}},
		},
		"pages": Entry{"9": Entry{"translations": Entry{"heading": "D"}}},
	}

	chunks := SplitIntoChunks(e, 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, 2, CountValues(chunks[0]))
	assert.Equal(t, 2, CountValues(chunks[1]))

	// First chunk holds article 1: body then title with its metadata.
	first := chunks[0]["articles"].(Entry)["1"].(Entry)["translations"].(Entry)
	assert.Equal(t, "A", first["title"])
	assert.Equal(t, map[string]any{"limit": 10}, first["@title"])

	merged := Entry{}
	for _, c := range chunks {
		Merge(merged, c)
	}
	assert.Equal(t, e, merged)
}

func TestSplitIntoChunks_Edges(t *testing.T) {
	assert.Nil(t, SplitIntoChunks(Entry{}, 10))

	e := Entry{"a": "1", "b": "2", "c": "3"}
	assert.Len(t, SplitIntoChunks(e, 0), 1)
	assert.Len(t, SplitIntoChunks(e, 1), 3)
	assert.Len(t, SplitIntoChunks(e, 100), 1)

	orphan := Entry{"@lonely": map[string]any{"comment": "x"}}
	chunks := SplitIntoChunks(orphan, 5)
	require.Len(t, chunks, 1)
	assert.Equal(t, orphan, chunks[0])
}
