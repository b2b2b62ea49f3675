// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

func intp(v int) *int { return &v }
func floatp(v float64) *float64 { return &v }

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		rel   float64
		h     []int
		up    *int
		maxH  float64
		maxUp float64
		want  float64
	}{
		{"no signals", 8, nil, nil, 100, 100, 8},
		{"zero upvotes ignored", 8, nil, intp(0), 100, 100, 8},
		{"h-index half", 10, []int{40, 60}, nil, 100, 100, 10 * 1.05},
		{"upvotes capped at max", 10, nil, intp(500), 100, 100, 10 * 1.1},
		{"both full", 5, []int{100}, intp(100), 100, 100, 5 * 1.2},
		{"h-index over max capped", 5, []int{300}, nil, 100, 100, 5 * 1.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.rel, tt.h, tt.up, tt.maxH, tt.maxUp, DefaultWeights)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestBlendAutoDetectsMaxima(t *testing.T) {
	papers := []types.Paper{
		{ID: "a", RelevanceScore: 8, AuthorHIndices: []int{10, 30}},
		{ID: "b", RelevanceScore: 8, AuthorHIndices: []int{40}},
		{ID: "c", RelevanceScore: 8, Upvotes: intp(50)},
		{ID: "d", RelevanceScore: 8, Upvotes: intp(25)},
		{ID: "e", RelevanceScore: 8},
	}
	Blend(papers, Options{})

	for _, p := range papers {
		require.NotNil(t, p.QualityScore, p.ID)
	}
	// max h = 40, a averages 20 -> factor 0.5.
	assert.InDelta(t, 8*1.05, *papers[0].QualityScore, 1e-9)
	assert.InDelta(t, 8*1.1, *papers[1].QualityScore, 1e-9)
	// max upvotes = 50.
	assert.InDelta(t, 8*1.1, *papers[2].QualityScore, 1e-9)
	assert.InDelta(t, 8*1.05, *papers[3].QualityScore, 1e-9)
	assert.Equal(t, 8.0, *papers[4].QualityScore, "no signals means quality equals relevance")
}

func TestBlendExplicitMaxima(t *testing.T) {
	papers := []types.Paper{{RelevanceScore: 10, AuthorHIndices: []int{50}, Upvotes: intp(10)}}
	Blend(papers, Options{MaxHIndex: floatp(200), MaxUpvotes: floatp(20)})
	assert.InDelta(t, 10*(1+0.1*0.25+0.1*0.5), *papers[0].QualityScore, 1e-9)
}

func TestBlendFloorsMaximaAtOne(t *testing.T) {
	papers := []types.Paper{{RelevanceScore: 4, AuthorHIndices: []int{0}}}
	Blend(papers, Options{})
	assert.Equal(t, 4.0, *papers[0].QualityScore)

	papers = []types.Paper{{RelevanceScore: 4, Upvotes: intp(3)}}
	Blend(papers, Options{MaxUpvotes: floatp(0)})
	assert.InDelta(t, 4*1.1, *papers[0].QualityScore, 1e-9)
}

func TestBlendCustomWeights(t *testing.T) {
	papers := []types.Paper{{RelevanceScore: 10, Upvotes: intp(10)}}
	Blend(papers, Options{Weights: &Weights{Upvotes: 0.35}})
	assert.InDelta(t, 13.5, *papers[0].QualityScore, 1e-9)
}

func TestBlendEmpty(t *testing.T) {
	assert.NotPanics(t, func() { Blend(nil, Options{}) })
}

func TestBlendStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		papers := make([]types.Paper, 1+rng.IntN(8))
		for i := range papers {
			p := &papers[i]
			p.RelevanceScore = 1 + rng.Float64()*14
			for range rng.IntN(4) {
				p.AuthorHIndices = append(p.AuthorHIndices, rng.IntN(150))
			}
			if rng.IntN(2) == 0 {
				p.Upvotes = intp(rng.IntN(300))
			}
		}
		Blend(papers, Options{})

		for _, p := range papers {
			require.NotNil(t, p.QualityScore)
			q := *p.QualityScore
			assert.GreaterOrEqual(t, q, p.RelevanceScore)
			assert.LessOrEqual(t, q, p.RelevanceScore*1.2+1e-9)
		}
	}
}
