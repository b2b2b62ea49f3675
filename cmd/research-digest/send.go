// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/email"
	"github.com/pdiddy/research-digest/internal/send"
	"github.com/pdiddy/research-digest/internal/state"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Email the digest for the current window, at most once",
	Long: `Send generates the digest for the current time window and emails it to
the configured recipients. Each window, recipient list, and subject template
yields one digest ID; an ID that was already sent is skipped, so re-running
send (for example from cron) never delivers a digest twice.

Exit status is 0 when the digest was sent, skipped, or empty, and 1 on any
error.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadEmail(viper.GetViper())
		logger := newLogger(cfg, "json")
		if err != nil {
			logger.Error("invalid configuration", "error", err)
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		a, err := newApp(cfg, logger)
		if err != nil {
			logger.Error("failed to start", "error", err)
			return err
		}
		defer a.Close()

		_, err = runSend(cmd.Context(), a, dryRun)
		return err
	},
}

// runSend executes one pass of the send pipeline.
func runSend(ctx context.Context, a *app, dryRun bool) (send.Outcome, error) {
	backend, err := state.Open(a.cfg.Email.State)
	if err != nil {
		a.log.Error("failed to open state backend", "error", err)
		return "", err
	}
	defer state.Close(backend)

	var provider email.Provider = email.NewSMTPProvider(a.cfg.Email.SMTP)
	if dryRun {
		provider = &email.DryRunProvider{Logger: a.log}
	}

	p := &send.Pipeline{
		Config:    a.cfg.Email,
		Generator: a.gen,
		State:     backend,
		Provider:  provider,
		Logger:    a.log,
	}
	outcome, err := p.Run(ctx, time.Now())
	if err != nil {
		return "", fmt.Errorf("send failed: %w", err)
	}
	a.log.Info("send finished", slog.String("outcome", string(outcome)))
	return outcome, nil
}

func init() {
	sendCmd.Flags().Bool("dry-run", false, "log the email instead of sending it")
	rootCmd.AddCommand(sendCmd)
}
