package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"landslide-monitor/database"
	"landslide-monitor/metrics"
	"landslide-monitor/services"
	"landslide-monitor/storage"
)

const testSecret = "controller-test-secret"

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	hub       *Hub
	uploadDir string
}

// setupEnv wires the full HTTP stack on an in-memory SQLite database.
func setupEnv(t *testing.T, authEnabled bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	log := zap.NewNop()
	require.NoError(t, database.Migrate(context.Background(), db, log))

	m, err := metrics.New()
	require.NoError(t, err)
	hub := NewHub(log, m)
	history := services.NewHistoryAggregator(db, time.UTC, 0, hub, m)
	uploadDir := t.TempDir()

	h := &Handlers{
		Sensors:    services.NewSensorRegistry(db, services.NewFanOutListing(db, 4), hub, m, history),
		History:    history,
		Reports:    services.NewReportIntake(db, storage.NewImageStore(uploadDir, 1<<20)),
		Education:  services.NewEducationCatalog(db),
		Moderators: services.NewModerators(db, testSecret, time.Hour),
		Hub:        hub,
		Log:        log,
		Ping:       sqlDB.PingContext,
	}
	router := NewRouter(h, RouterOptions{
		CORSOrigins: []string{"*"},
		AuthEnabled: authEnabled,
		JWTSecret:   testSecret,
		UploadDir:   uploadDir,
		MaxUploadMB: 1,
		Metrics:     m,
	})
	return &testEnv{router: router, db: db, hub: hub, uploadDir: uploadDir}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
