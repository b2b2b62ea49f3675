// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/research-digest/pkg/types"
)

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v2</id>
    <title>Sparse   Attention
      for Long Contexts</title>
    <summary>We study
sparse attention.</summary>
    <published>2024-01-10T12:00:00Z</published>
    <updated>2024-01-11T12:00:00Z</updated>
    <author><name>Ada Lovelace</name></author>
    <author><name> Alan Turing </name></author>
    <category term="cs.AI"/>
    <category term="cs.LG"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00002v1</id>
    <title>Older Paper</title>
    <summary>Old.</summary>
    <published>2024-01-01T00:00:00Z</published>
  </entry>
  <entry>
    <id>not-an-abs-url</id>
    <title>Broken</title>
  </entry>
</feed>`

func newTestAdapter(ts *httptest.Server) adapter {
	return adapter{client: ts.Client(), userAgent: "test-agent", log: discardLogger()}
}

// --- Query building ---

func TestBuildCategoryQuery(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"single", []string{"cs.AI"}, "cat:cs.AI"},
		{"multiple", []string{"cs.AI", "cs.LG"}, "cat:cs.AI+OR+cat:cs.LG"},
		{"blank entries dropped", []string{" cs.AI ", ""}, "cat:cs.AI"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildCategoryQuery(tt.in); got != tt.want {
				t.Errorf("buildCategoryQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"/abs/hep-th/9901001v3", "hep-th/9901001"},
		{"https://example.com/other", ""},
	}
	for _, tt := range tests {
		if got := extractArxivID(tt.in); got != tt.want {
			t.Errorf("extractArxivID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Fetch ---

func TestArxivFetch(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, arxivFeedXML)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	s := &ArxivSource{adapter: newTestAdapter(ts)}
	papers := s.Fetch(context.Background(), Query{Categories: []string{"cs.AI", "cs.LG"}, Limit: 25})

	if got := captured.URL.RawQuery; got != "search_query=cat:cs.AI+OR+cat:cs.LG&start=0&max_results=25&sortBy=submittedDate&sortOrder=descending" {
		t.Errorf("raw query = %q", got)
	}
	if ua := captured.Header.Get("User-Agent"); ua != "test-agent" {
		t.Errorf("User-Agent = %q", ua)
	}
	if len(papers) != 2 {
		t.Fatalf("got %d papers, want 2", len(papers))
	}

	p := papers[0]
	if p.ID != "2401.00001" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.Title != "Sparse Attention for Long Contexts" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Abstract != "We study sparse attention." {
		t.Errorf("Abstract = %q", p.Abstract)
	}
	if p.Link != "https://arxiv.org/abs/2401.00001" {
		t.Errorf("Link = %q", p.Link)
	}
	if len(p.Authors) != 2 || p.Authors[1] != "Alan Turing" {
		t.Errorf("Authors = %v", p.Authors)
	}
	if len(p.Categories) != 2 || p.Categories[0] != "cs.AI" {
		t.Errorf("Categories = %v", p.Categories)
	}
	if p.Source != types.SourceArxiv {
		t.Errorf("Source = %q", p.Source)
	}
	if !p.Published.Equal(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Published = %v", p.Published)
	}
}

func TestArxivFetchAppliesDateFilter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, arxivFeedXML)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	s := &ArxivSource{adapter: newTestAdapter(ts)}
	papers := s.Fetch(context.Background(), Query{
		Categories: []string{"cs.AI"},
		DateFilter: &types.DateFilter{After: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
	})
	if len(papers) != 1 || papers[0].ID != "2401.00001" {
		t.Fatalf("got %+v, want only 2401.00001", papers)
	}
}

func TestArxivFetchErrorsYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed xml", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "<feed><entry>") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			old := arxivAPIBase
			arxivAPIBase = ts.URL
			defer func() { arxivAPIBase = old }()

			s := &ArxivSource{adapter: newTestAdapter(ts)}
			if papers := s.Fetch(context.Background(), Query{Categories: []string{"cs.AI"}}); len(papers) != 0 {
				t.Errorf("got %d papers, want 0", len(papers))
			}
		})
	}
}

func TestArxivFetchNoCategories(t *testing.T) {
	s := &ArxivSource{adapter: adapter{client: http.DefaultClient, log: discardLogger()}}
	if papers := s.Fetch(context.Background(), Query{}); papers != nil {
		t.Errorf("got %v, want nil", papers)
	}
}
