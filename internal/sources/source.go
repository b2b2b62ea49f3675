// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources fetches candidate papers from arXiv, Semantic Scholar, and
// HuggingFace Daily Papers and normalizes them into types.Paper records.
//
// Adapters never fail: transport and parse errors are logged and counted,
// and the adapter contributes no papers for that run.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/research-digest/internal/metrics"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Source fetches papers from one upstream. Each adapter implements this
// interface; the generator treats them as interchangeable strategies.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) []types.Paper
}

// Query holds the per-run fetch parameters.
type Query struct {
	Categories []string
	Interests  string

	// Limit caps the number of records requested from the upstream.
	Limit int

	DateFilter *types.DateFilter
}

// Options carries the shared dependencies adapters are built with.
type Options struct {
	Client                *http.Client
	UserAgent             string
	SemanticScholarAPIKey string
	Logger                *slog.Logger
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) userAgent() string {
	if o.UserAgent != "" {
		return o.UserAgent
	}
	return "research-digest/0.1"
}

// New builds the adapter registered under name.
func New(name string, opts Options) (Source, error) {
	base := adapter{client: opts.client(), userAgent: opts.userAgent(), log: opts.logger().With("source", name)}
	switch name {
	case types.SourceArxiv:
		return &ArxivSource{adapter: base}, nil
	case types.SourceArxivListing:
		return &ArxivListingSource{adapter: base, PageSize: defaultListingPageSize}, nil
	case types.SourceSemanticScholar:
		return &SemanticScholarSource{adapter: base, APIKey: opts.SemanticScholarAPIKey}, nil
	case types.SourceHuggingFace:
		return &HuggingFaceSource{adapter: base}, nil
	default:
		return nil, fmt.Errorf("unknown source %q", name)
	}
}

// NewAll builds adapters for names in order.
func NewAll(names []string, opts Options) ([]Source, error) {
	out := make([]Source, 0, len(names))
	for _, n := range names {
		s, err := New(strings.TrimSpace(n), opts)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Known reports whether name is a registered source.
func Known(name string) bool {
	switch name {
	case types.SourceArxiv, types.SourceArxivListing, types.SourceSemanticScholar, types.SourceHuggingFace:
		return true
	}
	return false
}

// FetchAll fans the query out to every source concurrently. The result
// slice is indexed like srcs so callers can merge in declaration order.
func FetchAll(ctx context.Context, srcs []Source, q Query) [][]types.Paper {
	results := make([][]types.Paper, len(srcs))
	var wg sync.WaitGroup
	for i, s := range srcs {
		wg.Add(1)
		go func(i int, s Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("source panicked", "source", s.Name(), "panic", r)
					results[i] = nil
				}
			}()
			papers := s.Fetch(ctx, q)
			metrics.PapersFetched.WithLabelValues(s.Name()).Add(float64(len(papers)))
			results[i] = papers
		}(i, s)
	}
	wg.Wait()
	return results
}

// FilterByDate keeps papers the filter allows, evaluated at now.
func FilterByDate(papers []types.Paper, f *types.DateFilter, now time.Time) []types.Paper {
	if f == nil {
		return papers
	}
	kept := papers[:0]
	for _, p := range papers {
		if f.Allows(p.Published, now) {
			kept = append(kept, p)
		}
	}
	return kept
}

// adapter holds what every HTTP-backed source shares.
type adapter struct {
	client    *http.Client
	userAgent string
	log       *slog.Logger
}

// fail logs and counts a fetch failure. Adapters return nil after calling it.
func (a adapter) fail(name string, err error) []types.Paper {
	a.log.Warn("fetch failed", "error", err)
	metrics.SourceErrors.WithLabelValues(name).Inc()
	return nil
}

func (a adapter) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	return req, nil
}

// collapse replaces newlines and runs of whitespace with single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func capLimit(n, def, max int) int {
	if n <= 0 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
