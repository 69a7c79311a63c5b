package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"landslide-monitor/config"
	"landslide-monitor/database"
)

func dbCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the database schema and fixture data",
	}

	var opts database.SeedOptions
	seedFlags := func(c *cobra.Command) {
		c.Flags().IntVar(&opts.HistoryRecords, "history", 50, "Number of random history records")
		c.Flags().IntVar(&opts.HistoryHours, "hours", 72, "Spread history over the last N hours")
		c.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed, 0 for a random one")
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		RunE: rt.withDB(func(ctx context.Context, db *gorm.DB) error {
			return database.Migrate(ctx, db, rt.log)
		}),
	}
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert fixture sensors, history, reports and education",
		RunE: rt.withDB(func(ctx context.Context, db *gorm.DB) error {
			return database.Seed(ctx, db, rt.log, opts)
		}),
	}
	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop the monitoring tables",
		RunE: rt.withDB(func(ctx context.Context, db *gorm.DB) error {
			return database.Drop(ctx, db, rt.log)
		}),
	}
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Drop, migrate and seed",
		RunE: rt.withDB(func(ctx context.Context, db *gorm.DB) error {
			return database.Reset(ctx, db, rt.log, opts)
		}),
	}
	seedFlags(seed)
	seedFlags(reset)

	cmd.AddCommand(migrate, seed, drop, reset)
	return cmd
}

// withDB opens the database for the duration of fn.
func (rt *runtime) withDB(fn func(ctx context.Context, db *gorm.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := rt.openDatabase(ctx)
		if err != nil {
			return err
		}
		defer config.CloseDatabase(db)
		return fn(ctx, db)
	}
}
