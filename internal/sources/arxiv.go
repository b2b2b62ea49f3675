// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivAbsBase prefixes canonical abstract links.
const arxivAbsBase = "https://arxiv.org/abs/"

// ArxivSource queries the arXiv Atom API for the newest submissions in
// the requested categories.
type ArxivSource struct {
	adapter
	now func() time.Time
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return types.SourceArxiv }

// Fetch returns the newest papers in q.Categories, filtered by q.DateFilter.
func (s *ArxivSource) Fetch(ctx context.Context, q Query) []types.Paper {
	papers, err := s.fetch(ctx, q)
	if err != nil {
		return s.fail(s.Name(), err)
	}
	s.log.Info("fetched", "count", len(papers))
	return papers
}

func (s *ArxivSource) fetch(ctx context.Context, q Query) ([]types.Paper, error) {
	search := buildCategoryQuery(q.Categories)
	if search == "" {
		return nil, fmt.Errorf("no categories")
	}

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, search, capLimit(q.Limit, types.DefaultMaxPapers, 0))

	req, err := s.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus("arXiv API", resp); err != nil {
		return nil, err
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if p, ok := entry.paper(); ok {
			papers = append(papers, p)
		}
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return FilterByDate(papers, q.DateFilter, now()), nil
}

// buildCategoryQuery joins categories as "cat:A+OR+cat:B".
func buildCategoryQuery(categories []string) string {
	var parts []string
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, "cat:"+c)
		}
	}
	return strings.Join(parts, "+OR+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Updated    string          `xml:"updated"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

func (e arxivEntry) paper() (types.Paper, bool) {
	id := extractArxivID(e.ID)
	if id == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:        id,
		Title:     collapse(e.Title),
		Abstract:  collapse(e.Summary),
		Link:      arxivAbsBase + id,
		Source:    types.SourceArxiv,
		Published: parseTime(e.Published),
		Updated:   parseTime(e.Updated),
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, c := range e.Categories {
		if c.Term != "" {
			p.Categories = append(p.Categories, c.Term)
		}
	}
	return p, true
}

// parseTime accepts RFC 3339 timestamps and bare dates. Anything else
// yields the zero time, which date filters treat as unknown.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, types.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// extractArxivID pulls the arXiv ID from an abstract URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" becomes "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return stripVersion(idURL[idx+len(prefix):])
}

// stripVersion removes a trailing "vN" revision suffix.
func stripVersion(id string) string {
	id = strings.TrimSpace(id)
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			return id[:vIdx]
		}
	}
	return id
}
