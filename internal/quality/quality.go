// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality blends LLM relevance with objective quality signals:
// author h-index and community upvotes.
//
//	quality = relevance * (1 + HIndex*hFactor + Upvotes*upFactor)
//
// where each factor is the paper's signal normalized against the batch
// maximum and capped at 1.
package quality

// Weights are the blend coefficients. Their sum is the maximum boost.
type Weights struct {
	HIndex  float64
	Upvotes float64
}

// DefaultWeights caps the total boost at 20%.
var DefaultWeights = Weights{HIndex: 0.1, Upvotes: 0.1}

// defaultMax normalizes a signal when no paper in the batch reports it.
const defaultMax = 100.0

// Options override batch auto-detection. Nil fields are detected.
type Options struct {
	MaxHIndex  *float64
	MaxUpvotes *float64
	Weights    *Weights
}

// Score computes the blended score of one paper from its relevance score,
// h-indices, and upvotes. A paper with neither signal scores exactly its
// relevance.
func Score(relevance float64, hIndices []int, upvotes *int, maxH, maxUp float64, w Weights) float64 {
	var hFactor, upFactor float64
	if len(hIndices) > 0 && maxH > 0 {
		sum := 0
		for _, h := range hIndices {
			sum += h
		}
		avg := float64(sum) / float64(len(hIndices))
		hFactor = min(avg/maxH, 1.0)
	}
	if upvotes != nil && *upvotes > 0 && maxUp > 0 {
		upFactor = min(float64(*upvotes)/maxUp, 1.0)
	}
	return relevance * (1 + w.HIndex*hFactor + w.Upvotes*upFactor)
}
