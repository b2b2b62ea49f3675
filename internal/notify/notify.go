// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify publishes completed-digest events to NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pdiddy/research-digest/internal/metrics"
	"github.com/pdiddy/research-digest/pkg/types"
)

// DefaultSubject is used when the configuration has none.
const DefaultSubject = "research.digest.completed"

// EventDigestCompleted is the Type of every published event.
const EventDigestCompleted = "digest_completed"

// Publisher is the subset of *nats.Conn used here.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event is the JSON payload published for each completed digest.
type Event struct {
	Type       string        `json:"type"`
	Timestamp  time.Time     `json:"timestamp"`
	Source     string        `json:"source"`
	PaperCount int           `json:"paper_count"`
	Digest     *types.Digest `json:"digest"`
}

// Notifier publishes digest events. Publish failures are logged and
// counted but never fail the caller.
type Notifier struct {
	pub     Publisher
	subject string
	log     *slog.Logger
	closeFn func()
}

// New returns a Notifier publishing to subject through pub.
func New(pub Publisher, subject string, logger *slog.Logger) *Notifier {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{pub: pub, subject: subject, log: logger}
}

// Connect dials cfg.NATSURL. It returns nil, nil when no URL is configured.
func Connect(cfg types.NotifyConfig, logger *slog.Logger) (*Notifier, error) {
	if cfg.NATSURL == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("research-digest"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS connection lost", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n := New(nc, cfg.Subject, logger)
	n.closeFn = func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	logger.Info("publishing digest notifications", "subject", n.subject)
	return n, nil
}

// Close drains the underlying connection when Connect created it.
func (n *Notifier) Close() {
	if n != nil && n.closeFn != nil {
		n.closeFn()
	}
}

// DigestCompleted publishes d. Its signature matches the generator's
// completion hook.
func (n *Notifier) DigestCompleted(_ context.Context, d *types.Digest) {
	if n == nil || d == nil {
		return
	}
	data, err := json.Marshal(Event{
		Type:       EventDigestCompleted,
		Timestamp:  time.Now().UTC(),
		Source:     "research-digest",
		PaperCount: len(d.Papers),
		Digest:     d,
	})
	if err == nil {
		err = n.pub.Publish(n.subject, data)
	}
	if err != nil {
		n.log.Warn("failed to publish digest notification", "subject", n.subject, "error", err)
		metrics.NotificationsPublished.WithLabelValues("error").Inc()
		return
	}
	metrics.NotificationsPublished.WithLabelValues("ok").Inc()
}
