// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import "github.com/pdiddy/research-digest/pkg/types"

// merge flattens per-source results in source order, keeping the first
// record for each ID. A later duplicate only fills quality signals the
// kept record lacks. It returns the merged papers and the number of
// duplicates folded in.
func merge(perSource [][]types.Paper) ([]types.Paper, int) {
	index := make(map[string]int)
	var merged []types.Paper
	dups := 0

	for _, papers := range perSource {
		for _, p := range papers {
			if p.ID == "" {
				continue
			}
			if i, ok := index[p.ID]; ok {
				fillSignals(&merged[i], p)
				dups++
				continue
			}
			index[p.ID] = len(merged)
			merged = append(merged, p)
		}
	}
	return merged, dups
}

func fillSignals(dst *types.Paper, src types.Paper) {
	if len(dst.AuthorHIndices) == 0 && len(src.AuthorHIndices) > 0 {
		dst.AuthorHIndices = append([]int(nil), src.AuthorHIndices...)
	}
	if dst.Upvotes == nil && src.Upvotes != nil {
		v := *src.Upvotes
		dst.Upvotes = &v
	}
}
