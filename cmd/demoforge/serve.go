package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"demoforge/internal/daemon"
	"demoforge/internal/logging"
	"demoforge/internal/preflight"
	"demoforge/internal/store"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the demo pipeline server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			failed := 0
			for _, check := range preflight.RunAll(runCtx, cfg, st) {
				if check.Passed {
					logger.Debug("preflight check passed",
						logging.String("check", check.Name),
						logging.String("detail", check.Detail))
					continue
				}
				failed++
				logger.Warn("preflight check failed",
					logging.String("check", check.Name),
					logging.String("detail", check.Detail))
			}
			for _, dep := range preflight.CheckSystemDeps(cfg) {
				if dep.Available {
					continue
				}
				failed++
				logger.Warn("dependency missing",
					logging.String("dependency", dep.Name),
					logging.String("detail", dep.Detail))
			}
			if failed > 0 {
				logger.Warn("continuing with failed preflight checks", logging.Int("failed", failed))
			}

			d, err := daemon.New(cfg, st, logger)
			if err != nil {
				st.Close()
				return err
			}
			defer d.Close()

			if err := d.Start(runCtx); err != nil {
				return err
			}

			<-runCtx.Done()
			return nil
		},
	}
}
