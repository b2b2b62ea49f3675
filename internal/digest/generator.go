// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest orchestrates one digest run: fetch from the enabled
// sources, merge, drop seen papers, rank with the LLM, boost priority
// authors, blend quality signals, keep the top N, and persist.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-digest/internal/memory"
	"github.com/pdiddy/research-digest/internal/metrics"
	"github.com/pdiddy/research-digest/internal/quality"
	"github.com/pdiddy/research-digest/internal/rank"
	"github.com/pdiddy/research-digest/internal/sources"
	"github.com/pdiddy/research-digest/internal/storage"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Status is the outcome of a Generate call.
type Status string

const (
	StatusCompleted         Status = "completed"
	StatusError             Status = "error"
	StatusAlreadyGenerating Status = "already_generating"
)

// Business outcomes reported as StatusError. They mean "nothing to do",
// not a fault.
var (
	ErrNoPapers       = errors.New("no papers fetched from any source")
	ErrNoUnseenPapers = errors.New("no unseen papers after filtering")
)

// IsEmpty reports whether err is one of the "nothing to do" outcomes.
func IsEmpty(err error) bool {
	return errors.Is(err, ErrNoPapers) || errors.Is(err, ErrNoUnseenPapers)
}

// Result is returned by Generate.
type Result struct {
	Status Status        `json:"status"`
	Digest *types.Digest `json:"digest,omitempty"`
	Errors []string      `json:"errors,omitempty"`

	// Cause is the error behind StatusError.
	Cause error `json:"-"`
}

// State is a snapshot of generator progress.
type State struct {
	IsGenerating bool      `json:"is_generating"`
	LastDigest   time.Time `json:"last_digest,omitempty"`
	Errors       []string  `json:"errors"`
}

// PaperRanker scores and orders papers by relevance.
type PaperRanker interface {
	RankPapers(ctx context.Context, papers []types.Paper, interests string) []types.Paper
}

// SourceFactory builds the adapters for the enabled source names.
type SourceFactory func(cfg types.DigestConfig) ([]sources.Source, error)

// RankerFactory builds the ranker for the configured LLM.
type RankerFactory func(cfg types.DigestConfig) (PaperRanker, error)

// Deps wires a Generator. Memory and Storage are optional.
type Deps struct {
	Sources SourceFactory
	Ranker  RankerFactory
	Memory  *memory.Memory
	Storage *storage.Store
	Logger  *slog.Logger

	// OnComplete runs after a digest is persisted.
	OnComplete func(ctx context.Context, d *types.Digest)

	// Now defaults to time.Now.
	Now func() time.Time
}

// Generator runs digest generation. At most one run is in flight per
// Generator; concurrent callers get StatusAlreadyGenerating.
type Generator struct {
	deps       Deps
	generating atomic.Bool

	mu         sync.Mutex
	lastDigest time.Time
	errs       []string
}

// NewGenerator returns a Generator using deps.
func NewGenerator(deps Deps) *Generator {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Generator{deps: deps}
}

// State returns a snapshot of the generator state.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{
		IsGenerating: g.generating.Load(),
		LastDigest:   g.lastDigest,
		Errors:       append([]string{}, g.errs...),
	}
}

// IsGenerating reports whether a run is in flight.
func (g *Generator) IsGenerating() bool { return g.generating.Load() }

// Generate runs the pipeline once for cfg.
func (g *Generator) Generate(ctx context.Context, cfg types.DigestConfig) (res Result) {
	if !g.generating.CompareAndSwap(false, true) {
		return Result{Status: StatusAlreadyGenerating}
	}
	defer g.generating.Store(false)

	g.mu.Lock()
	g.errs = nil
	g.mu.Unlock()

	runID := uuid.NewString()
	log := g.deps.Logger.With("run_id", runID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res = g.fail(log, fmt.Errorf("generation panicked: %v", r))
		}
		metrics.Generations.WithLabelValues(string(res.Status)).Inc()
		metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	}()

	d, err := g.run(ctx, cfg, log)
	if err != nil {
		return g.fail(log, err)
	}
	return Result{Status: StatusCompleted, Digest: d}
}

func (g *Generator) fail(log *slog.Logger, err error) Result {
	if IsEmpty(err) {
		log.Info("nothing to digest", "reason", err)
	} else {
		log.Error("generation failed", "error", err)
	}
	g.mu.Lock()
	g.errs = append(g.errs, err.Error())
	errs := append([]string{}, g.errs...)
	g.mu.Unlock()
	return Result{Status: StatusError, Errors: errs, Cause: err}
}

func (g *Generator) run(ctx context.Context, cfg types.DigestConfig, log *slog.Logger) (*types.Digest, error) {
	cfg.Normalize()

	srcs, err := g.deps.Sources(cfg)
	if err != nil {
		return nil, fmt.Errorf("building sources: %w", err)
	}
	ranker, err := g.deps.Ranker(cfg)
	if err != nil {
		return nil, fmt.Errorf("building ranker: %w", err)
	}

	log.Info("fetching papers", "sources", cfg.Sources, "categories", cfg.Categories, "max_papers", cfg.MaxPapers)
	perSource := sources.FetchAll(ctx, srcs, sources.Query{
		Categories: cfg.Categories,
		Interests:  cfg.Interests,
		Limit:      cfg.MaxPapers,
		DateFilter: cfg.DateFilter,
	})
	papers, dups := merge(perSource)
	if len(papers) == 0 {
		return nil, ErrNoPapers
	}
	log.Info("merged papers", "count", len(papers), "duplicates", dups)

	if g.deps.Memory != nil && cfg.ExcludeSeen {
		papers = g.filterSeen(papers)
		if len(papers) == 0 {
			return nil, ErrNoUnseenPapers
		}
	}
	total := len(papers)

	order := make(map[string]int, len(papers))
	for i, p := range papers {
		order[p.ID] = i
	}

	ranked := ranker.RankPapers(ctx, papers, cfg.Interests)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	log.Info("ranked papers", "ranked", len(ranked), "dropped", total-len(ranked))

	if n := rank.ApplyAuthorBoost(ranked, cfg.PriorityAuthors, cfg.AuthorBoost); n > 0 {
		log.Info("boosted priority authors", "papers", n, "factor", cfg.AuthorBoost)
		rank.SortByRelevance(ranked)
	}

	quality.Blend(ranked, quality.Options{})
	sort.SliceStable(ranked, func(i, j int) bool {
		qi, qj := ranked[i].EffectiveScore(), ranked[j].EffectiveScore()
		if qi != qj {
			return qi > qj
		}
		return order[ranked[i].ID] < order[ranked[j].ID]
	})

	if len(ranked) > cfg.TopN {
		ranked = ranked[:cfg.TopN]
	}

	now := g.deps.Now()
	d := &types.Digest{
		Date:               now.Format(types.DateLayout),
		GeneratedAt:        now,
		Categories:         cfg.Categories,
		Interests:          cfg.Interests,
		TotalPapersFetched: total,
		Papers:             ranked,
	}

	if g.deps.Storage != nil {
		if _, err := g.deps.Storage.Save(d); err != nil {
			return nil, fmt.Errorf("saving digest: %w", err)
		}
	}
	if !cfg.DeferSeen {
		if err := g.RecordSeen(d); err != nil {
			return nil, err
		}
	}

	g.mu.Lock()
	g.lastDigest = now
	g.mu.Unlock()

	metrics.DigestPapers.Set(float64(len(d.Papers)))
	log.Info("digest complete", "date", d.Date, "papers", len(d.Papers), "fetched", total)

	if g.deps.OnComplete != nil {
		g.deps.OnComplete(ctx, d)
	}
	return d, nil
}

// RecordSeen adds d's papers to seen-paper memory. Generate calls it
// unless the config sets DeferSeen, in which case the caller records the
// digest once it has been delivered.
func (g *Generator) RecordSeen(d *types.Digest) error {
	if g.deps.Memory == nil || d == nil || len(d.Papers) == 0 {
		return nil
	}
	ids := make([]string, len(d.Papers))
	for i, p := range d.Papers {
		ids[i] = p.ID
	}
	if err := g.deps.Memory.RecordMany(ids); err != nil {
		return fmt.Errorf("recording seen papers: %w", err)
	}
	return nil
}

func (g *Generator) filterSeen(papers []types.Paper) []types.Paper {
	ids := make([]string, len(papers))
	for i, p := range papers {
		ids[i] = p.ID
	}
	unseen := g.deps.Memory.FilterUnseen(ids)

	kept := papers[:0]
	for _, p := range papers {
		if _, ok := unseen[p.ID]; ok {
			kept = append(kept, p)
		}
	}
	return kept
}
