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

	"github.com/pdiddy/research-digest/pkg/types"
)

const huggingFaceBody = `[
 {"title":"Vision\nTransformers","summary":"HF summary.","publishedAt":"2024-01-14T08:30:00.000Z",
  "paper":{"id":"2401.00003","upvotes":57,"authors":[{"name":"Grace Hopper"},{"name":""}]}},
 {"title":"No Upvotes","summary":"S","publishedAt":"garbage","paper":{"id":"2401.00004","authors":[]}},
 {"title":"No ID","paper":{}}
]`

func TestHuggingFaceFetch(t *testing.T) {
	var captured *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, huggingFaceBody)
	}))
	defer ts.Close()

	old := huggingFaceAPIBase
	huggingFaceAPIBase = ts.URL
	defer func() { huggingFaceAPIBase = old }()

	s := &HuggingFaceSource{adapter: newTestAdapter(ts)}
	papers := s.Fetch(context.Background(), Query{Limit: 200})

	require.NotNil(t, captured)
	assert.Equal(t, "50", captured.URL.Query().Get("limit"), "limit is capped at 50")
	require.Len(t, papers, 2)

	p := papers[0]
	assert.Equal(t, "2401.00003", p.ID)
	assert.Equal(t, "Vision Transformers", p.Title)
	assert.Equal(t, []string{"Grace Hopper"}, p.Authors)
	assert.Equal(t, []string{"huggingface"}, p.Categories)
	assert.Equal(t, "https://huggingface.co/papers/2401.00003", p.Link)
	require.NotNil(t, p.Upvotes)
	assert.Equal(t, 57, *p.Upvotes)
	assert.Equal(t, time.Date(2024, 1, 14, 8, 30, 0, 0, time.UTC), p.Published.UTC())

	assert.Nil(t, papers[1].Upvotes)
	assert.True(t, papers[1].Published.IsZero(), "unparseable date is unknown")
}

func TestHuggingFaceDateFilterKeepsUnknownDates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, huggingFaceBody)
	}))
	defer ts.Close()

	old := huggingFaceAPIBase
	huggingFaceAPIBase = ts.URL
	defer func() { huggingFaceAPIBase = old }()

	s := &HuggingFaceSource{adapter: newTestAdapter(ts)}
	papers := s.Fetch(context.Background(), Query{
		DateFilter: &types.DateFilter{After: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	})
	require.Len(t, papers, 1)
	assert.Equal(t, "2401.00004", papers[0].ID)
}

func TestHuggingFaceErrorYieldsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"not":"a list"}`)
	}))
	defer ts.Close()

	old := huggingFaceAPIBase
	huggingFaceAPIBase = ts.URL
	defer func() { huggingFaceAPIBase = old }()

	s := &HuggingFaceSource{adapter: newTestAdapter(ts)}
	assert.Empty(t, s.Fetch(context.Background(), Query{}))
}
