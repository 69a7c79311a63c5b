package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"landslide-monitor/models"
	"landslide-monitor/utils"
)

const (
	msgMissingSensorFields = "Missing required fields."
	msgLatitudeRange       = "Latitude must be a number between -90 and 90."
	msgLongitudeRange      = "Longitude must be a number between -180 and 180."
	msgSensorNotFound      = "Sensor not found."
)

// SensorRegistry manages sensors and keeps their status in line with their
// readings.
type SensorRegistry struct {
	db        *gorm.DB
	listing   SensorListing
	listeners Listeners
	now       func() time.Time
}

// NewSensorRegistry creates a registry on top of db. listing decides how the
// sensor list is joined with history.
func NewSensorRegistry(db *gorm.DB, listing SensorListing, listeners ...Listener) *SensorRegistry {
	return &SensorRegistry{
		db:        db,
		listing:   listing,
		listeners: listeners,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register validates and stores a new sensor. Missing readings default to
// 25 °C, 60 % and 0.
func (r *SensorRegistry) Register(ctx context.Context, p models.SensorPayload) (*models.Sensor, error) {
	if p.Name == nil || *p.Name == "" || p.Location == nil || *p.Location == "" ||
		!p.Latitude.Present || !p.Longitude.Present {
		return nil, validationError(msgMissingSensorFields)
	}
	lat, err := coordinate(p.Latitude, 90, msgLatitudeRange)
	if err != nil {
		return nil, err
	}
	lon, err := coordinate(p.Longitude, 180, msgLongitudeRange)
	if err != nil {
		return nil, err
	}

	sensor := models.Sensor{
		Name:       *p.Name,
		Location:   *p.Location,
		Latitude:   lat,
		Longitude:  lon,
		LastUpdate: r.now(),
	}
	sensor.Temperature, sensor.Moisture, sensor.Movement, sensor.Status = utils.ClassifyStored(
		p.Temperature.Or(utils.DefaultTemperature),
		p.Moisture.Or(utils.DefaultMoisture),
		p.Movement.Or(utils.DefaultMovement))

	if err := r.db.WithContext(ctx).Create(&sensor).Error; err != nil {
		return nil, persistenceError("create sensor", err)
	}
	r.listeners.SensorSaved(sensor)
	return &sensor, nil
}

// List returns every sensor, most recently updated first, with its history.
func (r *SensorRegistry) List(ctx context.Context) ([]models.SensorWithHistory, error) {
	sensors, err := r.listing.ListWithHistory(ctx)
	if err != nil {
		return nil, persistenceError("list sensors", err)
	}
	return sensors, nil
}

// Update merges the supplied fields over the stored sensor and re-derives its
// status. The read and the write share one transaction holding the row lock,
// so concurrent partial updates are applied one after the other.
func (r *SensorRegistry) Update(ctx context.Context, id uint, p models.SensorPayload) (*models.Sensor, error) {
	var lat, lon *float64
	if p.Latitude.Present {
		v, err := coordinate(p.Latitude, 90, msgLatitudeRange)
		if err != nil {
			return nil, err
		}
		lat = &v
	}
	if p.Longitude.Present {
		v, err := coordinate(p.Longitude, 180, msgLongitudeRange)
		if err != nil {
			return nil, err
		}
		lon = &v
	}
	for _, f := range []struct {
		n    models.Number
		name string
	}{
		{p.Temperature, "Temperature"},
		{p.Moisture, "Moisture"},
		{p.Movement, "Movement"},
	} {
		if f.n.Present && !f.n.Valid {
			return nil, validationError(f.name + " must be a number.")
		}
	}
	if (p.Name != nil && *p.Name == "") || (p.Location != nil && *p.Location == "") {
		return nil, validationError("Name and location cannot be empty.")
	}

	var updated models.Sensor
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Sensor
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundError(msgSensorNotFound)
			}
			return err
		}

		if p.Name != nil {
			current.Name = *p.Name
		}
		if p.Location != nil {
			current.Location = *p.Location
		}
		if lat != nil {
			current.Latitude = *lat
		}
		if lon != nil {
			current.Longitude = *lon
		}
		current.Temperature, current.Moisture, current.Movement, current.Status = utils.ClassifyStored(
			p.Temperature.Or(current.Temperature),
			p.Moisture.Or(current.Moisture),
			p.Movement.Or(current.Movement))
		current.LastUpdate = r.now()

		if err := tx.Omit(clause.Associations).Save(&current).Error; err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		if _, ok := AsError(err); ok {
			return nil, err
		}
		return nil, persistenceError("update sensor", err)
	}
	r.listeners.SensorSaved(updated)
	return &updated, nil
}

// Delete removes a sensor and its history as one unit.
func (r *SensorRegistry) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sensor_id = ?", id).Delete(&models.SensorHistory{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Sensor{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFoundError(msgSensorNotFound)
		}
		return nil
	})
	if err != nil {
		if _, ok := AsError(err); ok {
			return err
		}
		return persistenceError("delete sensor", err)
	}
	r.listeners.SensorDeleted(id)
	return nil
}

type overviewRow struct {
	TotalSensors   int64
	AvgTemperature sql.NullFloat64
	AvgMoisture    sql.NullFloat64
	CriticalAlerts sql.NullInt64
}

// Replay hands every stored sensor to the listeners, so derived state such
// as the status gauges is rebuilt after a restart.
func (r *SensorRegistry) Replay(ctx context.Context) error {
	var sensors []models.Sensor
	if err := r.db.WithContext(ctx).Order("id").Find(&sensors).Error; err != nil {
		return persistenceError("replay sensors", err)
	}
	for _, s := range sensors {
		r.listeners.SensorSaved(s)
	}
	return nil
}

// Overview aggregates the live sensor table.
func (r *SensorRegistry) Overview(ctx context.Context) (*models.SensorOverview, error) {
	var row overviewRow
	err := r.db.WithContext(ctx).Model(&models.Sensor{}).
		Select(`COUNT(*) AS total_sensors,
			AVG(temperature) AS avg_temperature,
			AVG(moisture) AS avg_moisture,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS critical_alerts`, models.StatusBahaya).
		Scan(&row).Error
	if err != nil {
		return nil, persistenceError("sensor overview", err)
	}
	return &models.SensorOverview{
		TotalSensors:   row.TotalSensors,
		AvgTemperature: decimal.NewFromFloat(row.AvgTemperature.Float64).StringFixed(1),
		AvgMoisture:    decimal.NewFromFloat(row.AvgMoisture.Float64).StringFixed(1),
		CriticalAlerts: row.CriticalAlerts.Int64,
	}, nil
}

// coordinate validates a latitude (limit 90) or longitude (limit 180).
// Bounds are inclusive.
func coordinate(n models.Number, limit float64, msg string) (float64, error) {
	if !n.Valid || n.Value < -limit || n.Value > limit {
		return 0, validationError(msg)
	}
	return n.Value, nil
}
