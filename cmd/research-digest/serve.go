// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored digests and on-demand generation over HTTP",
	Long: `Serve exposes the digest store, generator state, and Prometheus metrics.
POST /api/digests runs a generation with the configured defaults, optionally
overridden by a JSON body.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDigest(viper.GetViper())
		if err != nil {
			return err
		}
		logger := newLogger(cfg, "")
		addr, _ := cmd.Flags().GetString("addr")

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(a.gen, a.store, cfg.Digest, logger).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
