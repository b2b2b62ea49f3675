// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// huggingFaceAPIBase is the Daily Papers endpoint. Declared as a var so
// tests can substitute an httptest server.
var huggingFaceAPIBase = "https://huggingface.co/api/daily_papers"

const (
	huggingFaceMaxLimit  = 50
	huggingFacePaperBase = "https://huggingface.co/papers/"
)

// HuggingFaceSource reads the HuggingFace Daily Papers feed. It ignores
// categories and is the only source reporting community upvotes.
type HuggingFaceSource struct {
	adapter
	now func() time.Time
}

// Name returns the source identifier.
func (s *HuggingFaceSource) Name() string { return types.SourceHuggingFace }

// Fetch returns today's featured papers, filtered by q.DateFilter.
func (s *HuggingFaceSource) Fetch(ctx context.Context, q Query) []types.Paper {
	papers, err := s.fetch(ctx, q)
	if err != nil {
		return s.fail(s.Name(), err)
	}
	s.log.Info("fetched", "count", len(papers))
	return papers
}

func (s *HuggingFaceSource) fetch(ctx context.Context, q Query) ([]types.Paper, error) {
	url := fmt.Sprintf("%s?limit=%d", huggingFaceAPIBase, capLimit(q.Limit, huggingFaceMaxLimit, huggingFaceMaxLimit))
	req, err := s.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var items []huggingFaceItem
	if err := httputil.DecodeJSON(ctx, s.client, req, "HuggingFace API", &items); err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(items))
	for _, item := range items {
		if p, ok := item.paper(); ok {
			papers = append(papers, p)
		}
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return FilterByDate(papers, q.DateFilter, now()), nil
}

func (item huggingFaceItem) paper() (types.Paper, bool) {
	id := stripVersion(item.Paper.ID)
	if id == "" {
		return types.Paper{}, false
	}
	title := item.Title
	if title == "" {
		title = item.Paper.Title
	}
	abstract := item.Summary
	if abstract == "" {
		abstract = item.Paper.Summary
	}

	p := types.Paper{
		ID:         id,
		Title:      collapse(title),
		Abstract:   collapse(abstract),
		Categories: []string{types.SourceHuggingFace},
		Published:  parseTime(item.PublishedAt),
		Link:       huggingFacePaperBase + id,
		Source:     types.SourceHuggingFace,
		Upvotes:    item.Paper.Upvotes,
	}
	p.Updated = p.Published
	for _, a := range item.Paper.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	return p, true
}

// HuggingFace Daily Papers JSON structures.
type huggingFaceItem struct {
	Title       string           `json:"title"`
	Summary     string           `json:"summary"`
	PublishedAt string           `json:"publishedAt"`
	Paper       huggingFacePaper `json:"paper"`
}

type huggingFacePaper struct {
	ID      string              `json:"id"`
	Title   string              `json:"title"`
	Summary string              `json:"summary"`
	Upvotes *int                `json:"upvotes"`
	Authors []huggingFaceAuthor `json:"authors"`
}

type huggingFaceAuthor struct {
	Name string `json:"name"`
}
