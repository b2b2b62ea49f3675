// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body><dl>
<dt><a href="/abs/2401.00010" title="Abstract">arXiv:2401.00010</a></dt>
<dd>
  <div class="list-title mathjax"><span class="descriptor">Title:</span> Listing
    Paper One</div>
  <div class="list-authors"><a href="/a/one">Ada Lovelace</a>, <a href="/a/two">Alan Turing</a></div>
  <div class="list-dateline">Submitted 12 Jan 2024</div>
  <p class="mathjax">Abstract: First abstract.</p>
</dd>
<dt><a href="/abs/2401.00011v2" title="Abstract">arXiv:2401.00011</a></dt>
<dd>
  <div class="list-title mathjax">Title: Listing Paper Two</div>
  <div class="list-authors"><a href="/a/three">Grace Hopper</a></div>
  <p class="mathjax">Second abstract.</p>
</dd>
</dl></body></html>`

func TestArxivListingFetch(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path+"?"+r.URL.RawQuery)
		fmt.Fprint(w, listingPage)
	}))
	defer ts.Close()

	old := arxivListingBase
	arxivListingBase = ts.URL
	defer func() { arxivListingBase = old }()

	s := &ArxivListingSource{adapter: newTestAdapter(ts), PageSize: 200}
	papers := s.Fetch(context.Background(), Query{Categories: []string{"cs.AI"}, Limit: 10})

	require.Equal(t, []string{"/list/cs.AI/new?show=200&skip=0"}, paths)
	require.Len(t, papers, 2)

	first := papers[0]
	assert.Equal(t, "2401.00010", first.ID)
	assert.Equal(t, "Listing Paper One", first.Title)
	assert.Equal(t, "First abstract.", first.Abstract)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, first.Authors)
	assert.Equal(t, []string{"cs.AI"}, first.Categories)
	assert.Equal(t, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), first.Published)

	assert.Equal(t, "2401.00011", papers[1].ID)
	assert.True(t, papers[1].Published.IsZero())
}

func TestArxivListingRespectsLimitAndPaginates(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, listingPage)
	}))
	defer ts.Close()

	old := arxivListingBase
	arxivListingBase = ts.URL
	defer func() { arxivListingBase = old }()

	// A full page (2 of 2) asks for the next one until the limit is met.
	s := &ArxivListingSource{adapter: newTestAdapter(ts), PageSize: 2}
	papers := s.Fetch(context.Background(), Query{Categories: []string{"cs.AI"}, Limit: 1})
	assert.Len(t, papers, 1)
	assert.Equal(t, 1, calls)
}

func TestArxivListingServerErrorYieldsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	old := arxivListingBase
	arxivListingBase = ts.URL
	defer func() { arxivListingBase = old }()

	s := &ArxivListingSource{adapter: newTestAdapter(ts)}
	assert.Empty(t, s.Fetch(context.Background(), Query{Categories: []string{"cs.AI"}}))
}
