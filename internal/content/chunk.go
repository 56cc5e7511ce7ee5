// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"sort"
)

type leaf struct {
	path  []string
	value any
}

// SplitIntoChunks splits e into documents carrying at most size value keys
// each. A value key always travels with its metadata sibling. Keys are
// distributed in sorted path order. A size below 1 yields a single chunk.
func SplitIntoChunks(e Entry, size int) []Entry {
	var groups [][]leaf
	collectLeaves(e, nil, &groups)
	if len(groups) == 0 {
		return nil
	}
	if size < 1 {
		size = len(groups)
	}

	var chunks []Entry
	for start := 0; start < len(groups); start += size {
		end := min(start+size, len(groups))
		chunk := Entry{}
		for _, g := range groups[start:end] {
			for _, l := range g {
				setPath(chunk, l.path, l.value)
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func collectLeaves(e Entry, prefix []string, groups *[][]leaf) {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := e[k]
		path := append(prefix[:len(prefix):len(prefix)], k)

		if IsMetaKey(k) {
			// Attached to its value key when that exists.
			if _, ok := e[k[len(MetaPrefix):]]; ok {
				continue
			}
			*groups = append(*groups, []leaf{{path: path, value: v}})
			continue
		}

		if m, ok := v.(map[string]any); ok {
			collectLeaves(m, path, groups)
			continue
		}

		group := []leaf{{path: path, value: v}}
		if meta, ok := e[MetaPrefix+k]; ok {
			metaPath := append(prefix[:len(prefix):len(prefix)], MetaPrefix+k)
			group = append(group, leaf{path: metaPath, value: meta})
		}
		*groups = append(*groups, group)
	}
}

func setPath(e Entry, path []string, value any) {
	for _, k := range path[:len(path)-1] {
		next, ok := e[k].(map[string]any)
		if !ok {
			next = Entry{}
			e[k] = next
		}
		e = next
	}
	e[path[len(path)-1]] = value
}
