package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"landslide-monitor/models"
	"landslide-monitor/utils"
)

// SeedOptions controls the generated history. A zero Seed picks a random one.
type SeedOptions struct {
	HistoryRecords int
	HistoryHours   int
	Seed           uint64
	Now            time.Time
}

func (o SeedOptions) withDefaults() SeedOptions {
	if o.HistoryRecords <= 0 {
		o.HistoryRecords = 50
	}
	if o.HistoryHours <= 0 {
		o.HistoryHours = 72
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	o.Now = o.Now.UTC()
	return o
}

var seedSensors = []models.Sensor{
	{Name: "Sensor-001", Location: "Bukit A - Zona Timur", Latitude: -7.736771, Longitude: 112.430257, Temperature: 28.5, Moisture: 65, Movement: 0.5},
	{Name: "Sensor-002", Location: "Bukit B - Zona Barat", Latitude: -7.737, Longitude: 112.431, Temperature: 32, Moisture: 45, Movement: 1.2},
	{Name: "Sensor-003", Location: "Bukit C - Zona Selatan", Latitude: -7.738, Longitude: 112.4305, Temperature: 24, Moisture: 55, Movement: 0.1},
	{Name: "Sensor-004", Location: "Bukit D - Zona Timur", Latitude: -7.7365, Longitude: 112.432, Temperature: 52, Moisture: 18, Movement: 6.5},
	{Name: "Sensor-005", Location: "Bukit E - Zona Utara", Latitude: -7.7375, Longitude: 112.4295, Temperature: 30, Moisture: 60, Movement: 0.8},
}

func seedReports() []models.Report {
	lat := []float64{-6.2, -6.21, -6.215}
	lon := []float64{106.816666, 106.82, 106.822}
	img := "https://picsum.photos/400"
	return []models.Report{
		{Name: "Budi Suwardo", Location: "Warehouse A", Description: "Temperature sensor not responding.", Latitude: &lat[0], Longitude: &lon[0], ImagePath: &img, Status: models.ReportPending},
		{Name: "John", Location: "Server Room", Description: "Sudden moisture increase detected.", Latitude: &lat[1], Longitude: &lon[1], ImagePath: &img, Status: models.ReportVerified},
		{Name: "Jane", Location: "Gate 3", Description: "Movement detected outside scheduled time.", Latitude: &lat[2], Longitude: &lon[2], ImagePath: &img, Status: models.ReportResolved},
	}
}

var seedEducation = []models.Education{
	{Title: "Introduction to Sensors", Description: "Basic overview of IoT sensors, their types and uses.", Topics: datatypes.JSONSlice[string]{"temperature", "moisture", "movement"}},
	{Title: "Advanced Data Analysis", Description: "Analyzing sensor data using statistical methods.", Topics: datatypes.JSONSlice[string]{"averages", "trends", "anomalies"}},
	{Title: "Alerts and Notifications", Description: "Implementing real-time alerts based on sensor thresholds.", Topics: datatypes.JSONSlice[string]{"thresholds", "status", "notifications"}},
}

// Seed fills the tables with fixture data in one transaction.
func Seed(ctx context.Context, db *gorm.DB, log *zap.Logger, opts SeedOptions) error {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed>>1|1))

	var history []models.SensorHistory
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		education := append([]models.Education(nil), seedEducation...)
		if err := tx.Create(&education).Error; err != nil {
			return fmt.Errorf("seed education: %w", err)
		}
		reports := seedReports()
		if err := tx.Create(&reports).Error; err != nil {
			return fmt.Errorf("seed reports: %w", err)
		}

		sensors := append([]models.Sensor(nil), seedSensors...)
		for i := range sensors {
			s := &sensors[i]
			s.Status = utils.Classify(s.Temperature, s.Moisture, s.Movement)
			s.LastUpdate = opts.Now
		}
		if err := tx.Create(&sensors).Error; err != nil {
			return fmt.Errorf("seed sensors: %w", err)
		}

		history = make([]models.SensorHistory, opts.HistoryRecords)
		for i := range history {
			h := &history[i]
			h.SensorID = sensors[rng.IntN(len(sensors))].ID
			h.RecordedAt = opts.Now.Add(-time.Duration(rng.IntN(opts.HistoryHours)) * time.Hour)
			h.Temperature = utils.Round2(rng.Float64()*40 + 15)
			h.Moisture = utils.Round2(rng.Float64()*80 + 10)
			h.Movement = utils.Round2(rng.Float64() * 8)
			h.Status = utils.Classify(h.Temperature, h.Moisture, h.Movement)
		}
		if err := tx.CreateInBatches(&history, 100).Error; err != nil {
			return fmt.Errorf("seed sensor history: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("database seeded",
		zap.Int("sensors", len(seedSensors)),
		zap.Int("history", len(history)),
		zap.Int("reports", 3),
		zap.Int("education", len(seedEducation)))
	return nil
}
