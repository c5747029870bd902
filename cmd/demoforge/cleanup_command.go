package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"demoforge/internal/cleanup"
	"demoforge/internal/daemon"
	"demoforge/internal/logging"
	"demoforge/internal/store"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired sessions and their stored media",
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
			defer st.Close()

			d, err := daemon.New(cfg, st, logger)
			if err != nil {
				return err
			}

			sweeper := cleanup.New(cfg, st, d.Orchestrator(), logger)
			removed := sweeper.Sweep(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired session(s)\n", removed)
			return nil
		},
	}
}
