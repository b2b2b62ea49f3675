// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import "github.com/pdiddy/research-digest/pkg/types"

// Blend sets QualityScore on every paper in place. Normalization maxima
// default to the largest h-index and upvote count in the batch, or 100
// when no paper reports the signal, and are floored at 1.
func Blend(papers []types.Paper, opts Options) {
	if len(papers) == 0 {
		return
	}

	w := DefaultWeights
	if opts.Weights != nil {
		w = *opts.Weights
	}

	maxH := detectMaxHIndex(papers)
	if opts.MaxHIndex != nil {
		maxH = *opts.MaxHIndex
	}
	maxUp := detectMaxUpvotes(papers)
	if opts.MaxUpvotes != nil {
		maxUp = *opts.MaxUpvotes
	}
	maxH = max(maxH, 1.0)
	maxUp = max(maxUp, 1.0)

	for i := range papers {
		p := &papers[i]
		q := Score(p.RelevanceScore, p.AuthorHIndices, p.Upvotes, maxH, maxUp, w)
		p.QualityScore = &q
	}
}

func detectMaxHIndex(papers []types.Paper) float64 {
	found := false
	best := 0
	for _, p := range papers {
		for _, h := range p.AuthorHIndices {
			if !found || h > best {
				best, found = h, true
			}
		}
	}
	if !found {
		return defaultMax
	}
	return float64(best)
}

func detectMaxUpvotes(papers []types.Paper) float64 {
	best := 0
	for _, p := range papers {
		if p.Upvotes != nil && *p.Upvotes > best {
			best = *p.Upvotes
		}
	}
	if best == 0 {
		return defaultMax
	}
	return float64(best)
}
