// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package send runs one idempotent digest email: compute the window and
// its identity, skip when already sent, generate, render, deliver, and
// mark the identity as sent.
package send

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/internal/email"
	"github.com/pdiddy/research-digest/internal/metrics"
	"github.com/pdiddy/research-digest/internal/render"
	"github.com/pdiddy/research-digest/internal/state"
	"github.com/pdiddy/research-digest/internal/storage"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Outcome is the result of a successful run.
type Outcome string

const (
	// OutcomeSkipped means the identity was already marked sent.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeEmpty means no papers survived; the identity is marked sent.
	OutcomeEmpty Outcome = "empty"
	// OutcomeSent means the email was delivered and marked.
	OutcomeSent Outcome = "sent"
)

// Defaults applied when the configuration leaves a field empty.
const (
	DefaultSubject = "Daily Research Digest - {date}"
	DefaultFrom    = "noreply@example.com"
	DefaultWindow  = 24 * time.Hour
)

// Generator produces a digest for a configuration.
type Generator interface {
	Generate(ctx context.Context, cfg types.DigestConfig) digest.Result
	RecordSeen(d *types.Digest) error
}

// Pipeline wires one send run.
type Pipeline struct {
	Config    types.EmailDigestConfig
	Generator Generator
	State     state.Backend
	Provider  email.Provider
	Logger    *slog.Logger
}

// Subject expands "{date}" in tmpl.
func Subject(tmpl string, date time.Time) string {
	return strings.ReplaceAll(tmpl, "{date}", date.Format(types.DateLayout))
}

// Run executes the pipeline at now. A returned error is fatal for the
// caller; every Outcome is a success.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (Outcome, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := p.Config
	if cfg.SubjectTemplate == "" {
		cfg.SubjectTemplate = DefaultSubject
	}
	if cfg.From == "" {
		cfg.From = DefaultFrom
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Error("invalid timezone", "error", err)
			return "", fmt.Errorf("unknown timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	start, end := ComputeWindow(now, loc, cfg.Window)
	id := state.ComputeDigestID(start, end, cfg.Recipients, cfg.SubjectTemplate)
	log := logger.With(
		"digest_id", id,
		"window_start", start.Format(time.RFC3339),
		"window_end", end.Format(time.RFC3339),
		"recipient_count", len(cfg.Recipients),
	)
	log.Info("starting digest send")

	sent, err := p.State.AlreadySent(ctx, id)
	if err != nil {
		log.Error("state backend error", "error", err)
		metrics.Sends.WithLabelValues("error").Inc()
		return "", fmt.Errorf("checking sent state: %w", err)
	}
	if sent {
		log.Info("digest already sent, skipping")
		metrics.Sends.WithLabelValues(string(OutcomeSkipped)).Inc()
		return OutcomeSkipped, nil
	}

	dc := cfg.Digest
	dc.DateFilter = &types.DateFilter{After: start, Before: end}
	// Papers count as seen only once the email is out, so a failed send
	// retries with the same digest.
	dc.DeferSeen = true
	res := p.Generator.Generate(ctx, dc)

	if isEmpty(res) {
		log.Info("no papers in digest, skipping send", "paper_count", 0)
		if err := p.State.MarkSent(ctx, id); err != nil {
			log.Error("failed to mark digest sent", "error", err)
			metrics.Sends.WithLabelValues("error").Inc()
			return "", fmt.Errorf("marking empty digest sent: %w", err)
		}
		metrics.Sends.WithLabelValues(string(OutcomeEmpty)).Inc()
		return OutcomeEmpty, nil
	}
	if res.Status != digest.StatusCompleted {
		err := generationError(res)
		log.Error("failed to generate digest", "error", err)
		metrics.Sends.WithLabelValues("error").Inc()
		return "", err
	}

	d := res.Digest
	if cfg.SaveDir != "" {
		if path, err := storage.New(cfg.SaveDir).Save(d); err != nil {
			log.Warn("failed to save digest copy", "error", err)
		} else {
			log.Info("saved digest", "path", path)
		}
	}

	text, html, err := render.Render(d, start, end)
	if err != nil {
		log.Error("failed to render digest", "error", err)
		metrics.Sends.WithLabelValues("error").Inc()
		return "", err
	}

	msg := email.Message{
		From:    cfg.From,
		To:      cfg.Recipients,
		Subject: Subject(cfg.SubjectTemplate, now.In(loc)),
		Text:    text,
		HTML:    html,
	}
	provider := p.Provider.Name()
	if err := p.Provider.Send(ctx, msg); err != nil {
		log.Error("failed to send email", "error", err, "provider", provider)
		metrics.Sends.WithLabelValues("error").Inc()
		return "", fmt.Errorf("sending digest: %w", err)
	}

	if err := p.Generator.RecordSeen(d); err != nil {
		log.Warn("failed to record seen papers", "error", err)
	}

	// Delivery succeeded; a failure here means the next run may resend.
	if err := p.State.MarkSent(ctx, id); err != nil {
		log.Error("failed to mark digest sent", "error", err, "provider", provider)
		metrics.Sends.WithLabelValues("error").Inc()
		return "", fmt.Errorf("marking digest sent: %w", err)
	}

	log.Info("digest sent successfully", "paper_count", len(d.Papers), "provider", provider)
	metrics.Sends.WithLabelValues(string(OutcomeSent)).Inc()
	return OutcomeSent, nil
}

// isEmpty reports a "nothing to send" generation: a business empty
// result or a completed digest without papers.
func isEmpty(res digest.Result) bool {
	switch res.Status {
	case digest.StatusCompleted:
		return res.Digest == nil || len(res.Digest.Papers) == 0
	case digest.StatusError:
		return digest.IsEmpty(res.Cause)
	}
	return false
}

func generationError(res digest.Result) error {
	switch {
	case res.Status == digest.StatusAlreadyGenerating:
		return fmt.Errorf("digest generation already in progress")
	case res.Cause != nil:
		return fmt.Errorf("digest generation failed: %w", res.Cause)
	case len(res.Errors) > 0:
		return fmt.Errorf("digest generation failed: %s", strings.Join(res.Errors, "; "))
	default:
		return fmt.Errorf("unexpected digest status: %s", res.Status)
	}
}
