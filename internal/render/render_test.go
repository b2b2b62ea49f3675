// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

func sampleDigest() *types.Digest {
	up := 42
	q := 8.7
	plain := 6.0
	return &types.Digest{
		Date:               "2024-01-15",
		Categories:         []string{"cs.AI", "cs.LG"},
		Interests:          "agents & <planning>",
		TotalPapersFetched: 12,
		Papers: []types.Paper{
			{
				ID:              "2401.00001",
				Title:           "Planning with <Tools>",
				Authors:         []string{"Ada Lovelace", "Alan Turing"},
				Link:            "https://arxiv.org/abs/2401.00001",
				RelevanceScore:  8.5,
				RelevanceReason: "Directly about agent planning.",
				AuthorHIndices:  []int{12, 40},
				Upvotes:         &up,
				QualityScore:    &q,
			},
			{
				ID:              "2401.00002",
				Title:           "Second Paper",
				Authors:         []string{"Grace Hopper"},
				Link:            "https://arxiv.org/abs/2401.00002",
				RelevanceScore:  6,
				RelevanceReason: "Tangential.",
				QualityScore:    &plain,
			},
		},
	}
}

func TestRenderText(t *testing.T) {
	start := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
	text, _, err := Render(sampleDigest(), start, start.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Contains(t, text, "Research Digest: 2024-01-15")
	assert.Contains(t, text, "Window: 2024-01-14 00:00 UTC to 2024-01-15 00:00 UTC")
	assert.Contains(t, text, "Categories: cs.AI, cs.LG")
	assert.Contains(t, text, "1. Planning with <Tools>")
	assert.Contains(t, text, "Relevance: 8.5/10  Quality: 8.70  Upvotes: 42  Max h-index: 40")
	assert.Contains(t, text, "2. Second Paper")
	// Blending without signals leaves the score unchanged, so no quality line.
	assert.Contains(t, text, "Relevance: 6.0/10\n")
	assert.NotContains(t, text, "Quality: 6.00")
	assert.Less(t, strings.Index(text, "1. Planning"), strings.Index(text, "2. Second"))
}

func TestRenderHTMLEscapes(t *testing.T) {
	start := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
	_, html, err := Render(sampleDigest(), start, start.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Contains(t, html, "Planning with &lt;Tools&gt;")
	assert.Contains(t, html, `href="https://arxiv.org/abs/2401.00001"`)
	assert.Contains(t, html, "agents &amp; &lt;planning&gt;")
	assert.Contains(t, html, "Upvotes: 42")
	assert.NotContains(t, html, "<Tools>")
}

func TestRenderEmptyDigest(t *testing.T) {
	text, html, err := Render(&types.Digest{Date: "2024-01-15"}, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Contains(t, text, "showing 0")
	assert.Contains(t, html, "<ol>")
}
