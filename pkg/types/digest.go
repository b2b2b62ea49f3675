// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// DateLayout is the format of Digest.Date and the storage file stem.
const DateLayout = "2006-01-02"

// Digest is the ranked output of one generation run.
type Digest struct {
	// Date is the generation date (YYYY-MM-DD) and the storage identity.
	Date string `json:"date" yaml:"date"`

	// GeneratedAt is the instant the digest was assembled.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Categories []string `json:"categories" yaml:"categories"`
	Interests  string   `json:"interests" yaml:"interests"`

	// TotalPapersFetched counts papers that survived dedup and the
	// seen-paper filter, before ranking.
	TotalPapersFetched int `json:"total_papers_fetched" yaml:"total_papers_fetched"`

	// Papers holds at most TopN papers in final order.
	Papers []Paper `json:"papers" yaml:"papers"`
}

// DateFilter restricts papers by publication time. The accepted range is
// [After, Before), so consecutive windows never both drop a boundary paper.
// Papers with an unknown publication time always pass.
type DateFilter struct {
	// DaysBack keeps papers published within the last N days (0 disables).
	DaysBack int `json:"days_back,omitempty" yaml:"days_back,omitempty"`

	// After keeps papers published at or after this instant.
	After time.Time `json:"published_after,omitempty" yaml:"published_after,omitempty"`

	// Before keeps papers published strictly before this instant.
	Before time.Time `json:"published_before,omitempty" yaml:"published_before,omitempty"`
}

// Allows reports whether a paper published at t passes the filter,
// evaluated at now.
func (f *DateFilter) Allows(t, now time.Time) bool {
	if f == nil || t.IsZero() {
		return true
	}
	if f.DaysBack > 0 && t.Before(now.AddDate(0, 0, -f.DaysBack)) {
		return false
	}
	if !f.After.IsZero() && t.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && !t.Before(f.Before) {
		return false
	}
	return true
}

// Earliest returns the lower bound implied by the filter, zero when open.
func (f *DateFilter) Earliest(now time.Time) time.Time {
	if f == nil {
		return time.Time{}
	}
	var lo time.Time
	if f.DaysBack > 0 {
		lo = now.AddDate(0, 0, -f.DaysBack)
	}
	if f.After.After(lo) {
		lo = f.After
	}
	return lo
}

// LLMConfig selects and authenticates the relevance-scoring model.
type LLMConfig struct {
	// Provider is one of "anthropic", "openai", "google".
	Provider string `json:"provider" yaml:"provider"`

	APIKey string `json:"-" yaml:"-"`

	// Model overrides the provider's default model when non-empty.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
}

// Defaults applied by DigestConfig.Normalize.
const (
	DefaultMaxPapers   = 50
	DefaultTopN        = 10
	DefaultAuthorBoost = 1.5
	DefaultLLMProvider = "anthropic"
)

// DigestConfig parameterizes one generation run.
type DigestConfig struct {
	// Categories are arXiv-style subject tags (e.g. "cs.AI").
	Categories []string `json:"categories" yaml:"categories"`

	// Interests is the free-text research description the LLM scores against.
	Interests string `json:"interests" yaml:"interests"`

	// MaxPapers is the per-source fetch cap.
	MaxPapers int `json:"max_papers" yaml:"max_papers"`

	// TopN is the digest size.
	TopN int `json:"top_n" yaml:"top_n"`

	DateFilter *DateFilter `json:"date_filter,omitempty" yaml:"date_filter,omitempty"`

	// ExcludeSeen drops papers already recorded in seen-paper memory.
	ExcludeSeen bool `json:"exclude_seen" yaml:"exclude_seen"`

	// DeferSeen leaves the digest's papers out of seen-paper memory until
	// the caller records them, e.g. after the digest has been emailed.
	DeferSeen bool `json:"-" yaml:"-"`

	// PriorityAuthors are matched case-insensitively as substrings of each
	// author name.
	PriorityAuthors []string `json:"priority_authors,omitempty" yaml:"priority_authors,omitempty"`

	// AuthorBoost multiplies the relevance score of priority-author papers.
	AuthorBoost float64 `json:"author_boost" yaml:"author_boost"`

	// Sources lists enabled adapters in priority order.
	Sources []string `json:"sources" yaml:"sources"`

	LLM LLMConfig `json:"llm" yaml:"llm"`

	SemanticScholarAPIKey string `json:"-" yaml:"-"`
}

// Normalize fills zero-valued fields with defaults. ExcludeSeen is left
// alone because false is a meaningful setting.
func (c *DigestConfig) Normalize() {
	if c.MaxPapers <= 0 {
		c.MaxPapers = DefaultMaxPapers
	}
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}
	if c.AuthorBoost <= 0 {
		c.AuthorBoost = DefaultAuthorBoost
	}
	if len(c.Sources) == 0 {
		c.Sources = []string{SourceArxiv}
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultLLMProvider
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
}
