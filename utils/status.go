package utils

import "landslide-monitor/models"

// Danger and alert thresholds. A reading is Bahaya when any danger bound is
// crossed, otherwise Siaga when any alert bound is crossed.
const (
	DangerTemperature = 50.0
	DangerMoisture    = 20.0
	DangerMovement    = 5.0

	AlertTemperature = 35.0
	AlertMoisture    = 40.0
	AlertMovement    = 2.0
)

// Default readings used when a sensor is registered without values or a
// reading cannot be parsed.
const (
	DefaultTemperature = 25.0
	DefaultMoisture    = 60.0
	DefaultMovement    = 0.0
)

// Classify maps a reading to its risk level. Bahaya conditions are checked
// first and win over Siaga conditions.
func Classify(temperature, moisture, movement float64) models.Status {
	if temperature >= DangerTemperature || moisture <= DangerMoisture || movement >= DangerMovement {
		return models.StatusBahaya
	}
	if temperature >= AlertTemperature || moisture <= AlertMoisture || movement >= AlertMovement {
		return models.StatusSiaga
	}
	return models.StatusNormal
}

// ClassifyStored rounds a reading to the two decimals the reading columns
// keep and classifies the rounded values, so the status always matches what
// is read back from the database.
func ClassifyStored(temperature, moisture, movement float64) (t, m, v float64, status models.Status) {
	t, m, v = Round2(temperature), Round2(moisture), Round2(movement)
	return t, m, v, Classify(t, m, v)
}

// TriggeredBy names the first reading that pushed a record to its status,
// used for alert messages. Normal readings return "".
func TriggeredBy(h models.SensorHistory) string {
	switch h.Status {
	case models.StatusBahaya:
		return firstOver(h, DangerTemperature, DangerMoisture, DangerMovement)
	case models.StatusSiaga:
		return firstOver(h, AlertTemperature, AlertMoisture, AlertMovement)
	}
	return ""
}

func firstOver(h models.SensorHistory, temperature, moisture, movement float64) string {
	if h.Temperature >= temperature {
		return "temperature"
	}
	if h.Moisture <= moisture {
		return "moisture"
	}
	if h.Movement >= movement {
		return "movement"
	}
	return ""
}

// PerformanceScore rates a sensor by its latest reading.
func PerformanceScore(movement float64, status models.Status) float64 {
	score := 100 - movement*10
	switch status {
	case models.StatusNormal:
		score += 20
	case models.StatusSiaga:
		score += 10
	}
	return score
}
