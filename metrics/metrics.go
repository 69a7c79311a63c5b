// Package metrics exposes Prometheus metrics for the HTTP surface, reading
// ingestion and the live update hub.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"landslide-monitor/models"
)

// Metrics holds every collector of the service on its own registry.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	ReadingsTotal    *prometheus.CounterVec
	SensorStatus     *prometheus.GaugeVec
	MQTTMessages     *prometheus.CounterVec
	WebsocketClients prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by route, method and status code",
	}, []string{"route", "method", "code"})

	m.HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	m.ReadingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sensor_readings_total",
		Help: "Total number of readings appended to sensor history by derived status",
	}, []string{"status"})

	m.SensorStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sensor_status",
		Help: "Current status of each sensor (1 for the active status, 0 otherwise)",
	}, []string{"sensor_id", "status"})

	m.MQTTMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_messages_total",
		Help: "Total number of MQTT reading messages by outcome",
	}, []string{"outcome"})

	m.WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_clients",
		Help: "Number of connected live update clients",
	})

	for _, c := range []prometheus.Collector{
		m.HTTPRequests,
		m.HTTPDuration,
		m.ReadingsTotal,
		m.SensorStatus,
		m.MQTTMessages,
		m.WebsocketClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SensorSaved records the status of a created or updated sensor.
func (m *Metrics) SensorSaved(s models.Sensor) {
	m.setStatus(s.ID, s.Status)
}

// SensorDeleted drops the status series of a removed sensor.
func (m *Metrics) SensorDeleted(id uint) {
	m.SensorStatus.DeletePartialMatch(prometheus.Labels{"sensor_id": sensorLabel(id)})
}

// ReadingRecorded counts the reading and moves the sensor's status series.
func (m *Metrics) ReadingRecorded(s models.Sensor, r models.SensorHistory) {
	m.ReadingsTotal.WithLabelValues(string(r.Status)).Inc()
	m.setStatus(s.ID, s.Status)
}

func (m *Metrics) setStatus(id uint, status models.Status) {
	label := sensorLabel(id)
	for _, st := range []models.Status{models.StatusNormal, models.StatusSiaga, models.StatusBahaya} {
		v := 0.0
		if st == status {
			v = 1
		}
		m.SensorStatus.WithLabelValues(label, string(st)).Set(v)
	}
}

func sensorLabel(id uint) string {
	return fmt.Sprintf("%d", id)
}
