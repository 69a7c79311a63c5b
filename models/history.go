package models

// ReadingLog is the body of POST /api/sensor-history and of MQTT reading messages.
type ReadingLog struct {
	SensorID    Number  `json:"sensor_id"`
	RecordedAt  *string `json:"recorded_at"`
	Temperature Number  `json:"temperature"`
	Moisture    Number  `json:"moisture"`
	Movement    Number  `json:"movement"`
}

// DailySummary holds the per-date averages of all readings.
type DailySummary struct {
	Date           string  `json:"date"`
	AvgTemperature float64 `json:"avgTemperature"`
	AvgMoisture    float64 `json:"avgMoisture"`
	AvgMovement    float64 `json:"avgMovement"`
}

// SensorPerformance is the latest reading of a sensor with its score.
type SensorPerformance struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Moisture    float64 `json:"moisture"`
	Movement    float64 `json:"movement"`
	Score       float64 `json:"score"`
}

type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}

// TrendPoint is one row of a single-metric trend export.
type TrendPoint struct {
	Date     string  `json:"date"`
	AvgValue float64 `json:"avg_value"`
}
