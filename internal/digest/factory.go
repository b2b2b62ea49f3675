// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"log/slog"
	"net/http"

	"github.com/pdiddy/research-digest/internal/llm"
	"github.com/pdiddy/research-digest/internal/rank"
	"github.com/pdiddy/research-digest/internal/sources"
	"github.com/pdiddy/research-digest/pkg/types"
)

// HTTPSources returns a SourceFactory building live adapters.
func HTTPSources(opts sources.Options) SourceFactory {
	return func(cfg types.DigestConfig) ([]sources.Source, error) {
		o := opts
		if cfg.SemanticScholarAPIKey != "" {
			o.SemanticScholarAPIKey = cfg.SemanticScholarAPIKey
		}
		return sources.NewAll(cfg.Sources, o)
	}
}

// LLMRanker returns a RankerFactory that scores with the provider in
// cfg.LLM.
func LLMRanker(rc types.RankerConfig, client *http.Client, logger *slog.Logger) RankerFactory {
	return func(cfg types.DigestConfig) (PaperRanker, error) {
		c, err := llm.New(cfg.LLM, client)
		if err != nil {
			return nil, err
		}
		return rank.New(c, rc, logger), nil
	}
}
