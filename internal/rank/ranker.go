// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores papers for relevance to a research-interest description
// with one LLM call per paper, in bounded concurrent batches.
package rank

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-digest/internal/llm"
	"github.com/pdiddy/research-digest/internal/metrics"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Defaults for a zero-valued Ranker.
const (
	DefaultBatchSize   = 5
	DefaultBatchDelay  = time.Second
	DefaultCallTimeout = 30 * time.Second

	// FallbackScore and FallbackReason are assigned when a reply cannot be parsed.
	FallbackScore  = 5.0
	FallbackReason = "Unable to rank"
)

// Score is the outcome of scoring one paper. Fallback is set when the
// model replied but the reply was unusable.
type Score struct {
	Value    float64
	Reason   string
	Fallback bool
}

// Ranker scores papers with an LLM.
type Ranker struct {
	LLM llm.Completer

	// BatchSize bounds concurrent calls; BatchDelay separates batches.
	// A negative BatchDelay disables the pause.
	BatchSize   int
	BatchDelay  time.Duration
	CallTimeout time.Duration

	Logger *slog.Logger
}

// New returns a Ranker with the settings from cfg, filling defaults.
func New(c llm.Completer, cfg types.RankerConfig, logger *slog.Logger) *Ranker {
	return &Ranker{
		LLM:         c,
		BatchSize:   cfg.BatchSize,
		BatchDelay:  cfg.BatchDelay,
		CallTimeout: cfg.CallTimeout,
		Logger:      logger,
	}
}

func (r *Ranker) batchSize() int {
	if r.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return r.BatchSize
}

func (r *Ranker) batchDelay() time.Duration {
	switch {
	case r.BatchDelay < 0:
		return 0
	case r.BatchDelay == 0:
		return DefaultBatchDelay
	}
	return r.BatchDelay
}

func (r *Ranker) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// RankPaper scores one paper. A completion error is returned as-is; an
// unparseable reply yields a fallback Score and no error.
func (r *Ranker) RankPaper(ctx context.Context, p types.Paper, interests string) (Score, error) {
	prompt, err := renderPrompt(interests, p.Title, p.Abstract)
	if err != nil {
		return Score{}, fmt.Errorf("rendering prompt: %w", err)
	}

	timeout := r.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	reply, err := r.LLM.Complete(callCtx, prompt)
	metrics.RankDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RankCalls.WithLabelValues("error").Inc()
		return Score{}, fmt.Errorf("scoring %s: %w", p.ID, err)
	}

	value, reason, ok := ParseScore(reply)
	if !ok {
		metrics.RankCalls.WithLabelValues("fallback").Inc()
		r.logger().Warn("unparseable ranking reply", "paper", p.ID, "reply", truncateRunes(reply, 200))
		return Score{Value: FallbackScore, Reason: FallbackReason, Fallback: true}, nil
	}
	metrics.RankCalls.WithLabelValues("ok").Inc()
	return Score{Value: value, Reason: reason}, nil
}

// RankPapers scores every paper and returns the successfully scored ones,
// sorted by relevance descending. Ties keep input order. Papers whose
// call failed are dropped. Cancelling ctx stops further batches.
func (r *Ranker) RankPapers(ctx context.Context, papers []types.Paper, interests string) []types.Paper {
	size := r.batchSize()
	scored := make([]*types.Paper, len(papers))

	for start := 0; start < len(papers); start += size {
		if start > 0 {
			if err := sleep(ctx, r.batchDelay()); err != nil {
				r.logger().Warn("ranking cancelled", "ranked", start, "total", len(papers))
				break
			}
		}
		end := min(start+size, len(papers))

		var g errgroup.Group
		g.SetLimit(size)
		for i := start; i < end; i++ {
			g.Go(func() error {
				defer func() {
					if rec := recover(); rec != nil {
						r.logger().Error("ranking task panicked", "paper", papers[i].ID, "panic", rec)
					}
				}()
				s, err := r.RankPaper(ctx, papers[i], interests)
				if err != nil {
					r.logger().Error("ranking failed", "paper", papers[i].ID, "error", err)
					return nil
				}
				p := papers[i]
				p.RelevanceScore = s.Value
				p.RelevanceReason = s.Reason
				scored[i] = &p
				return nil
			})
		}
		g.Wait()
	}

	ranked := make([]types.Paper, 0, len(papers))
	for _, p := range scored {
		if p != nil {
			ranked = append(ranked, *p)
		}
	}
	SortByRelevance(ranked)
	return ranked
}

// SortByRelevance stable-sorts papers by relevance score descending.
func SortByRelevance(papers []types.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].RelevanceScore > papers[j].RelevanceScore
	})
}

// ApplyAuthorBoost multiplies the relevance score of every paper with an
// author containing one of authors (case-insensitive) by factor. Each
// paper is boosted at most once. It returns the number of boosted papers.
func ApplyAuthorBoost(papers []types.Paper, authors []string, factor float64) int {
	var needles []string
	for _, a := range authors {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			needles = append(needles, a)
		}
	}
	if len(needles) == 0 {
		return 0
	}

	boosted := 0
	for i := range papers {
		if hasPriorityAuthor(papers[i].Authors, needles) {
			papers[i].RelevanceScore *= factor
			boosted++
		}
	}
	return boosted
}

func hasPriorityAuthor(names, needles []string) bool {
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return true
			}
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
