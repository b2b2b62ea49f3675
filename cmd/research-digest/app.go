// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/internal/logging"
	"github.com/pdiddy/research-digest/internal/memory"
	"github.com/pdiddy/research-digest/internal/notify"
	"github.com/pdiddy/research-digest/internal/sources"
	"github.com/pdiddy/research-digest/internal/storage"
)

// app holds the components shared by the generate, send, schedule, and
// serve commands.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	store    *storage.Store
	gen      *digest.Generator
	notifier *notify.Notifier
}

// newApp wires a Generator from cfg. Close releases the NATS connection.
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	notifier, err := notify.Connect(cfg.Notify, logger)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.HTTP.Timeout}
	store := storage.New(cfg.Paths.StorageDir)
	deps := digest.Deps{
		Sources: digest.HTTPSources(sources.Options{
			Client:    client,
			UserAgent: cfg.HTTP.UserAgent,
			Logger:    logger,
		}),
		Ranker:  digest.LLMRanker(cfg.Ranker, client, logger),
		Memory:  memory.Open(cfg.Paths.MemoryPath),
		Storage: store,
		Logger:  logger,
	}
	if notifier != nil {
		deps.OnComplete = notifier.DigestCompleted
	}

	return &app{
		cfg:      cfg,
		log:      logger,
		store:    store,
		gen:      digest.NewGenerator(deps),
		notifier: notifier,
	}, nil
}

func (a *app) Close() {
	a.notifier.Close()
}

// newLogger builds the process logger. fallbackFormat replaces the
// configured format unless the user chose one explicitly.
func newLogger(cfg *config.Config, fallbackFormat string) *slog.Logger {
	level, format := viper.GetString(config.KeyLogLevel), viper.GetString(config.KeyLogFormat)
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}
	if fallbackFormat != "" && !logFormatChosen() {
		format = fallbackFormat
	}
	logger := logging.New(os.Stderr, level, format)
	slog.SetDefault(logger)
	return logger
}

func logFormatChosen() bool {
	if rootCmd.PersistentFlags().Changed("log-format") {
		return true
	}
	if _, ok := os.LookupEnv("DIGEST_LOG_FORMAT"); ok {
		return true
	}
	return viper.InConfig(config.KeyLogFormat)
}
