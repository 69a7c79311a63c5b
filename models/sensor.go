package models

import "time"

// Status is the risk level derived from a reading triple.
type Status string

const (
	StatusNormal Status = "Normal"
	StatusSiaga  Status = "Siaga"
	StatusBahaya Status = "Bahaya"
)

// Sensor is a monitoring device and its latest reading.
type Sensor struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null;index:idx_sensors_name"`
	Location    string    `json:"location" gorm:"size:255;not null;index:idx_sensors_location"`
	Latitude    float64   `json:"latitude" gorm:"type:decimal(10,8);not null;index:idx_sensors_coordinates,priority:1"`
	Longitude   float64   `json:"longitude" gorm:"type:decimal(11,8);not null;index:idx_sensors_coordinates,priority:2"`
	Temperature float64   `json:"temperature" gorm:"type:decimal(5,2);not null"`
	Moisture    float64   `json:"moisture" gorm:"type:decimal(5,2);not null"`
	Movement    float64   `json:"movement" gorm:"type:decimal(5,2);not null"`
	Status      Status    `json:"status" gorm:"size:16;not null;default:Normal;index:idx_sensors_status"`
	LastUpdate  time.Time `json:"lastUpdate" gorm:"index:idx_sensors_last_update"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SensorWithHistory is a sensor enriched with its readings, newest first.
type SensorWithHistory struct {
	Sensor
	History []SensorHistory `json:"history"`
}

// SensorHistory is an immutable snapshot of one reading.
type SensorHistory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SensorID    uint      `json:"sensor_id" gorm:"not null;index:idx_sensor_history_sensor_id;index:idx_sensor_history_sensor_recorded,priority:1"`
	RecordedAt  time.Time `json:"recorded_at" gorm:"not null;index:idx_sensor_history_recorded_at;index:idx_sensor_history_sensor_recorded,priority:2"`
	Temperature float64   `json:"temperature" gorm:"type:decimal(5,2);not null"`
	Moisture    float64   `json:"moisture" gorm:"type:decimal(5,2);not null"`
	Movement    float64   `json:"movement" gorm:"type:decimal(5,2);not null"`
	Status      Status    `json:"status" gorm:"size:16;not null;index:idx_sensor_history_status"`
	CreatedAt   time.Time `json:"created_at"`

	Sensor *Sensor `json:"-" gorm:"foreignKey:SensorID;constraint:OnDelete:CASCADE"`
}

func (SensorHistory) TableName() string {
	return "sensor_history"
}

// SensorPayload is the body accepted by sensor registration and update.
// Absent fields stay nil / not present so partial updates can merge.
type SensorPayload struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Latitude    Number  `json:"latitude"`
	Longitude   Number  `json:"longitude"`
	Temperature Number  `json:"temperature"`
	Moisture    Number  `json:"moisture"`
	Movement    Number  `json:"movement"`
}

// SensorOverview aggregates the live sensor table.
type SensorOverview struct {
	TotalSensors   int64  `json:"totalSensors"`
	AvgTemperature string `json:"avgTemperature"`
	AvgMoisture    string `json:"avgMoisture"`
	CriticalAlerts int64  `json:"criticalAlerts"`
}
