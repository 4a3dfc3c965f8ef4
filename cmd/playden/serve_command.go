package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"playden/internal/config"
	"playden/internal/daemon"
	"playden/internal/logging"
	"playden/internal/pipeline"
	"playden/internal/server"
	"playden/internal/services/ffmpeg"
	"playden/internal/store"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the upload and transcoding service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			pool := pipeline.NewPool(cfg, st, ffmpeg.FromConfig(cfg), logger)
			srv := server.New(cfg, st, pool, logger)

			d, err := daemon.New(cfg, st, pool, srv, logger)
			if err != nil {
				_ = st.Close()
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}
}
