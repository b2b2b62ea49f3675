// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// arxivListingBase is the arXiv site root used for category listing pages.
var arxivListingBase = "https://arxiv.org"

const defaultListingPageSize = 200

var listingDateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// ArxivListingSource scrapes the HTML "new submissions" listing for each
// category. It covers the same papers as ArxivSource without the API's
// query throttling, at the cost of no author metrics.
type ArxivListingSource struct {
	adapter
	PageSize int
	now      func() time.Time
}

// Name returns the source identifier.
func (s *ArxivListingSource) Name() string { return types.SourceArxivListing }

// Fetch walks the listing pages for each category until q.Limit papers
// are collected or a page comes back short.
func (s *ArxivListingSource) Fetch(ctx context.Context, q Query) []types.Paper {
	if len(q.Categories) == 0 {
		return s.fail(s.Name(), fmt.Errorf("no categories"))
	}
	limit := capLimit(q.Limit, types.DefaultMaxPapers, 0)
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = defaultListingPageSize
	}

	var papers []types.Paper
	seen := make(map[string]struct{})
	for _, cat := range q.Categories {
		for skip := 0; len(papers) < limit; skip += pageSize {
			doc, err := s.fetchDocument(ctx, listingURL(cat, skip, pageSize))
			if err != nil {
				return s.fail(s.Name(), fmt.Errorf("category %s: %w", cat, err))
			}
			page := parseListing(doc, cat)
			for _, p := range page {
				if _, ok := seen[p.ID]; ok || len(papers) >= limit {
					continue
				}
				seen[p.ID] = struct{}{}
				papers = append(papers, p)
			}
			if len(page) < pageSize {
				break
			}
		}
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	papers = FilterByDate(papers, q.DateFilter, now())
	s.log.Info("fetched", "count", len(papers))
	return papers
}

func (s *ArxivListingSource) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := s.newRequest(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus("arXiv listing", resp); err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	return doc, nil
}

func listingURL(category string, skip, show int) string {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("show", strconv.Itoa(show))
	return fmt.Sprintf("%s/list/%s/new?%s", arxivListingBase, url.PathEscape(category), q.Encode())
}

// parseListing reads the dl > dt/dd pairs of a listing page.
func parseListing(doc *goquery.Document, category string) []types.Paper {
	var papers []types.Paper
	doc.Find("dl > dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.Next()
		link := dt.Find(`a[href*="/abs/"]`).First()
		href, _ := link.Attr("href")
		id := extractArxivID(href)
		if id == "" {
			return
		}

		title := strings.TrimPrefix(strings.TrimSpace(dd.Find(".list-title").First().Text()), "Title:")
		abstract := strings.TrimPrefix(strings.TrimSpace(dd.Find("p.mathjax").First().Text()), "Abstract:")

		p := types.Paper{
			ID:         id,
			Title:      collapse(title),
			Abstract:   collapse(abstract),
			Categories: []string{category},
			Link:       arxivAbsBase + id,
			Source:     types.SourceArxivListing,
		}
		dd.Find(".list-authors a").Each(func(_ int, a *goquery.Selection) {
			if name := collapse(a.Text()); name != "" {
				p.Authors = append(p.Authors, name)
			}
		})
		if m := listingDateExpr.FindString(dd.Find(".list-dateline, .list-date").First().Text()); m != "" {
			if t, err := time.Parse("2 Jan 2006", m); err == nil {
				p.Published = t
			}
		}
		papers = append(papers, p)
	})
	return papers
}
