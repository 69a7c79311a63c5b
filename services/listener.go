package services

import "landslide-monitor/models"

// Listener observes committed changes. Implementations are called
// synchronously after the write and must not block.
type Listener interface {
	SensorSaved(s models.Sensor)
	SensorDeleted(id uint)
	ReadingRecorded(s models.Sensor, r models.SensorHistory)
}

// Listeners fans a change out to every listener.
type Listeners []Listener

func (ls Listeners) SensorSaved(s models.Sensor) {
	for _, l := range ls {
		l.SensorSaved(s)
	}
}

func (ls Listeners) SensorDeleted(id uint) {
	for _, l := range ls {
		l.SensorDeleted(id)
	}
}

func (ls Listeners) ReadingRecorded(s models.Sensor, r models.SensorHistory) {
	for _, l := range ls {
		l.ReadingRecorded(s, r)
	}
}
