package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const defaultSeedTimeout = 30 * time.Second

func newSeedCmd(e *env) *cobra.Command {
	var (
		reset   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample portfolio items and products",
		Long: `Insert the sample portfolio items and products. With --reset, all portfolio
items, products and awards are removed first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			_, logger, storage, err := e.setup(ctx, true)
			if err != nil {
				return oops.Code("STORAGE_FAILED").Wrap(err)
			}
			defer storage.Close()
			defer func() { _ = logger.Sync() }()

			result, err := storage.Catalog.Seed(ctx, reset, logger)
			if err != nil {
				return oops.Code("SEED_FAILED").With("reset", reset).Wrap(err)
			}

			cmd.Printf("Seeded %d portfolio items and %d products\n", result.Portfolio, result.Products)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "clear portfolio items, products and awards before seeding")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultSeedTimeout, "timeout for database operations")
	return cmd
}
