package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"landslide-monitor/database"
	"landslide-monitor/models"
	"landslide-monitor/utils"
)

// setupTestDB returns a migrated in-memory SQLite database. A single
// connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, zap.NewNop()))
	return db
}

func strPtr(s string) *string { return &s }

func createSensor(t *testing.T, db *gorm.DB, name string, temperature, moisture, movement float64) models.Sensor {
	t.Helper()
	s := models.Sensor{
		Name:        name,
		Location:    "Zone1",
		Latitude:    -7.7,
		Longitude:   112.4,
		Temperature: temperature,
		Moisture:    moisture,
		Movement:    movement,
		Status:      utils.Classify(temperature, moisture, movement),
		LastUpdate:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func createHistory(t *testing.T, db *gorm.DB, sensorID uint, at time.Time, temperature, moisture, movement float64) models.SensorHistory {
	t.Helper()
	h := models.SensorHistory{
		SensorID:    sensorID,
		RecordedAt:  at.UTC(),
		Temperature: temperature,
		Moisture:    moisture,
		Movement:    movement,
		Status:      utils.Classify(temperature, moisture, movement),
	}
	require.NoError(t, db.Create(&h).Error)
	return h
}

// recordingListener captures the change notifications it receives.
type recordingListener struct {
	mu       sync.Mutex
	saved    []models.Sensor
	deleted  []uint
	readings []models.SensorHistory
}

func (l *recordingListener) SensorSaved(s models.Sensor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saved = append(l.saved, s)
}

func (l *recordingListener) SensorDeleted(id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleted = append(l.deleted, id)
}

func (l *recordingListener) ReadingRecorded(_ models.Sensor, r models.SensorHistory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.readings = append(l.readings, r)
}
