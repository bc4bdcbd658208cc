package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stitcher/internal/config"
	"stitcher/internal/daemon"
	"stitcher/internal/deps"
	"stitcher/internal/logging"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the stitcher daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, found, err := config.Load(*configFlag)
			if err != nil {
				return err
			}

			logger, err := logging.NewForDaemon(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			if found {
				logger.Info("configuration loaded", logging.String("path", path))
			} else {
				logger.Info("no configuration file found, using defaults", logging.String("path", path))
			}

			for _, status := range deps.Missing(deps.CheckBinaries(deps.Required(cfg))) {
				logger.Warn("external dependency unavailable",
					logging.String("name", status.Name),
					logging.String("detail", status.Detail))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := daemon.Bootstrap(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				_ = d.Close()
			}()

			if err := d.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			d.Stop()
			if err := d.Wait(); err != nil {
				return fmt.Errorf("api server: %w", err)
			}
			return nil
		},
	}
}
