// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Source names used in Paper.Source and in the enabled-sources list.
const (
	SourceArxiv           = "arxiv"
	SourceArxivListing    = "arxiv_listing"
	SourceSemanticScholar = "semantic_scholar"
	SourceHuggingFace     = "huggingface"
)

// Paper is one candidate paper as it flows through the digest pipeline.
// Sources fill the metadata; the ranker and quality blender fill the scores.
type Paper struct {
	// ID is source-qualified: the arXiv ID without version suffix when one
	// is known, otherwise "s2:<paperId>" for Semantic Scholar records.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with newlines collapsed.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract with newlines collapsed.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Categories holds subject tags (e.g. "cs.AI", or "huggingface").
	Categories []string `json:"categories" yaml:"categories"`

	// Published is the publication timestamp. The zero value means unknown.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the last-revision timestamp, zero when the source omits it.
	Updated time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`

	// Link is the canonical landing page for the paper.
	Link string `json:"link" yaml:"link"`

	// Source identifies the adapter that produced the record.
	Source string `json:"source" yaml:"source"`

	// RelevanceScore is the LLM relevance score in [1, 10], possibly
	// multiplied by the priority-author boost.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// RelevanceReason is the one-sentence justification from the LLM.
	RelevanceReason string `json:"relevance_reason" yaml:"relevance_reason"`

	// AuthorHIndices holds h-indices for the authors that report one.
	// Nil when the source has no author metrics.
	AuthorHIndices []int `json:"author_h_indices,omitempty" yaml:"author_h_indices,omitempty"`

	// Upvotes is the community upvote count. Nil when unknown.
	Upvotes *int `json:"upvotes,omitempty" yaml:"upvotes,omitempty"`

	// QualityScore is the final blended score. Nil until blending runs.
	QualityScore *float64 `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
}

// HasQualitySignals reports whether the paper carries any h-index or
// upvote data.
func (p Paper) HasQualitySignals() bool {
	return len(p.AuthorHIndices) > 0 || (p.Upvotes != nil && *p.Upvotes > 0)
}

// EffectiveScore returns the quality score when set, else the relevance score.
func (p Paper) EffectiveScore() float64 {
	if p.QualityScore != nil {
		return *p.QualityScore
	}
	return p.RelevanceScore
}
