// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const (
	semanticFields         = "paperId,externalIds,title,abstract,authors,authors.hIndex,year,publicationDate,fieldsOfStudy"
	semanticFieldsOfStudy  = "Computer Science"
	semanticMaxLimit       = 100
	semanticPaperLinkBase  = "https://www.semanticscholar.org/paper/"
	semanticFallbackPrefix = "s2:"
)

// SemanticScholarSource searches Semantic Scholar with the research
// interests as the query. It is the only source reporting author h-indices.
type SemanticScholarSource struct {
	adapter
	APIKey string
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return types.SourceSemanticScholar }

// Fetch searches for q.Interests in Computer Science papers.
func (s *SemanticScholarSource) Fetch(ctx context.Context, q Query) []types.Paper {
	papers, err := s.fetch(ctx, q)
	if err != nil {
		return s.fail(s.Name(), err)
	}
	s.log.Info("fetched", "count", len(papers))
	return papers
}

func (s *SemanticScholarSource) fetch(ctx context.Context, q Query) ([]types.Paper, error) {
	query := collapse(q.Interests)
	if query == "" {
		return nil, fmt.Errorf("empty interests")
	}

	params := url.Values{
		"query":         {query},
		"limit":         {strconv.Itoa(capLimit(q.Limit, types.DefaultMaxPapers, semanticMaxLimit))},
		"fields":        {semanticFields},
		"fieldsOfStudy": {semanticFieldsOfStudy},
	}
	if yr := buildYearRange(q.DateFilter, time.Now()); yr != "" {
		params.Set("year", yr)
	}

	req, err := s.newRequest(ctx, semanticAPIBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	var sr semanticResponse
	if err := httputil.DecodeJSON(ctx, s.client, req, "Semantic Scholar API", &sr); err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(sr.Data))
	for _, item := range sr.Data {
		papers = append(papers, item.paper())
	}
	return papers, nil
}

func (item semanticPaper) paper() types.Paper {
	p := types.Paper{
		ID:         item.ExternalIDs.ArXiv,
		Title:      collapse(item.Title),
		Abstract:   collapse(item.Abstract),
		Categories: item.FieldsOfStudy,
		Link:       semanticPaperLinkBase + item.PaperID,
		Source:     types.SourceSemanticScholar,
	}
	if p.ID == "" {
		p.ID = semanticFallbackPrefix + item.PaperID
	} else {
		p.ID = stripVersion(p.ID)
	}
	if len(p.Categories) == 0 {
		p.Categories = []string{types.SourceSemanticScholar}
	}

	switch {
	case item.PublicationDate != "":
		p.Published = parseTime(item.PublicationDate)
	case item.Year > 0:
		p.Published = time.Date(item.Year, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	p.Updated = p.Published

	for _, a := range item.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
		if a.HIndex != nil {
			p.AuthorHIndices = append(p.AuthorHIndices, *a.HIndex)
		}
	}
	return p
}

// buildYearRange turns the filter bounds into a Semantic Scholar year
// filter (e.g. "2023-2024", "2024-"). Filtering to the exact instant is
// not possible because many records only carry a year.
func buildYearRange(f *types.DateFilter, now time.Time) string {
	if f == nil {
		return ""
	}
	from := f.Earliest(now)
	to := f.Before
	switch {
	case !from.IsZero() && !to.IsZero():
		return fmt.Sprintf("%d-%d", from.Year(), to.Year())
	case !from.IsZero():
		return fmt.Sprintf("%d-", from.Year())
	case !to.IsZero():
		return fmt.Sprintf("-%d", to.Year())
	default:
		return ""
	}
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Abstract        string              `json:"abstract"`
	Year            int                 `json:"year"`
	PublicationDate string              `json:"publicationDate"`
	FieldsOfStudy   []string            `json:"fieldsOfStudy"`
	Authors         []semanticAuthor    `json:"authors"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
	HIndex   *int   `json:"hIndex"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
