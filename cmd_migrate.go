package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the properties table or indexes for the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		st := openStore(ctx, cfg, logger)
		defer st.close(ctx, logger)

		if err := st.properties.Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migration complete", zap.String("driver", cfg.StoreDriver))
		return nil
	},
}
