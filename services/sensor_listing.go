package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"landslide-monitor/models"
)

// SensorListing loads sensors together with their history. The fan-out
// implementation below can be swapped for a single join without touching
// SensorRegistry.
type SensorListing interface {
	ListWithHistory(ctx context.Context) ([]models.SensorWithHistory, error)
}

// FanOutListing reads the sensor table once and then each sensor's history
// concurrently, at most limit queries at a time.
type FanOutListing struct {
	db    *gorm.DB
	limit int
}

func NewFanOutListing(db *gorm.DB, limit int) *FanOutListing {
	return &FanOutListing{db: db, limit: limit}
}

func (l *FanOutListing) ListWithHistory(ctx context.Context) ([]models.SensorWithHistory, error) {
	var sensors []models.Sensor
	if err := l.db.WithContext(ctx).Order("last_update DESC").Order("id DESC").Find(&sensors).Error; err != nil {
		return nil, fmt.Errorf("query sensors: %w", err)
	}

	out := make([]models.SensorWithHistory, len(sensors))
	g, gctx := errgroup.WithContext(ctx)
	if l.limit > 0 {
		g.SetLimit(l.limit)
	}
	for i := range sensors {
		g.Go(func() error {
			history := []models.SensorHistory{}
			err := l.db.WithContext(gctx).
				Where("sensor_id = ?", sensors[i].ID).
				Order("recorded_at DESC").Order("id DESC").
				Find(&history).Error
			if err != nil {
				return fmt.Errorf("query history of sensor %d: %w", sensors[i].ID, err)
			}
			out[i] = models.SensorWithHistory{Sensor: sensors[i], History: history}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
