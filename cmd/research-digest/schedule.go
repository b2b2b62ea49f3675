// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/metrics"
	"github.com/pdiddy/research-digest/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run send on a cron schedule until interrupted",
	Long: `Schedule runs the send pipeline at every activation of the schedule
(DIGEST_SCHEDULE, default "0 6 * * *") in the digest timezone. A run that
fails is logged and the daemon keeps going; SIGINT or SIGTERM stops it after
the in-flight run finishes.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadEmail(viper.GetViper())
		logger := newLogger(cfg, "json")
		if err != nil {
			logger.Error("invalid configuration", "error", err)
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		sched, err := scheduler.New(cfg.Scheduler, func(ctx context.Context) {
			// Errors are already logged with the digest attributes.
			_, _ = runSend(ctx, a, dryRun)
		}, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if metricsAddr != "" {
			srv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 10 * time.Second}
			go func() {
				logger.Info("serving metrics", "addr", metricsAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server failed", "error", err)
				}
			}()
			defer srv.Close()
		}

		return sched.Run(ctx)
	},
}

func init() {
	scheduleCmd.Flags().Bool("dry-run", false, "log emails instead of sending them")
	scheduleCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.AddCommand(scheduleCmd)
}
