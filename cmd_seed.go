package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jaykurgat/Nyumba-Finder/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo Nairobi and Mombasa listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		st := openStore(ctx, cfg, logger)
		defer st.close(ctx, logger)

		ids, err := services.Seed(ctx, st.properties, services.SeedListings, logger)
		if err != nil {
			return fmt.Errorf("seeding failed after %d listings: %w", len(ids), err)
		}
		logger.Info("Seed complete", zap.Int("count", len(ids)))
		return nil
	},
}
