package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landslide-monitor/models"
)

func TestListenerUpdatesSeries(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	sensor := models.Sensor{ID: 7, Status: models.StatusSiaga}
	m.SensorSaved(sensor)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SensorStatus.WithLabelValues("7", "Siaga")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SensorStatus.WithLabelValues("7", "Normal")))

	sensor.Status = models.StatusBahaya
	m.ReadingRecorded(sensor, models.SensorHistory{SensorID: 7, Status: models.StatusBahaya})
	m.ReadingRecorded(sensor, models.SensorHistory{SensorID: 7, Status: models.StatusBahaya})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReadingsTotal.WithLabelValues("Bahaya")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SensorStatus.WithLabelValues("7", "Bahaya")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SensorStatus.WithLabelValues("7", "Siaga")))

	m.SensorDeleted(7)
	assert.Equal(t, 0, testutil.CollectAndCount(m.SensorStatus))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.MQTTMessages.WithLabelValues("stored").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `mqtt_messages_total{outcome="stored"} 1`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
