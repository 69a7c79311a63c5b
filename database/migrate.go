package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"landslide-monitor/models"
)

// Migrate creates or updates every table, parents before children.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	tables := []any{
		&models.Education{},
		&models.Report{},
		&models.Sensor{},
		&models.SensorHistory{},
		&models.Moderator{},
	}
	for _, t := range tables {
		if err := db.WithContext(ctx).AutoMigrate(t); err != nil {
			return fmt.Errorf("migrate %T: %w", t, err)
		}
	}
	log.Info("database migrated", zap.Int("tables", len(tables)))
	return nil
}

// Drop removes the monitoring tables, children first. Moderator accounts are
// kept so a reset does not lock moderators out.
func Drop(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	tables := []any{
		&models.SensorHistory{},
		&models.Sensor{},
		&models.Report{},
		&models.Education{},
	}
	m := db.WithContext(ctx).Migrator()
	for _, t := range tables {
		if err := m.DropTable(t); err != nil {
			return fmt.Errorf("drop %T: %w", t, err)
		}
	}
	log.Info("database tables dropped", zap.Int("tables", len(tables)))
	return nil
}

// Reset drops, migrates and seeds the database.
func Reset(ctx context.Context, db *gorm.DB, log *zap.Logger, opts SeedOptions) error {
	if err := Drop(ctx, db, log); err != nil {
		return err
	}
	if err := Migrate(ctx, db, log); err != nil {
		return err
	}
	return Seed(ctx, db, log, opts)
}
