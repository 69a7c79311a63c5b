package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the variables Load reads so the host environment does not
// leak into a test. Viper ignores empty values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL",
		"MONITOR_SERVER_PORT", "MONITOR_DATABASE_DSN", "MONITOR_DATABASE_DRIVER",
		"MONITOR_AUTH_ENABLED", "MONITOR_AUTH_JWT_SECRET", "MONITOR_HISTORY_TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "sensors/+/readings", cfg.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, 30*time.Second, cfg.History.SummaryCacheTTL)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "host=db user=app dbname=landslide")
	t.Setenv("MONITOR_DATABASE_DRIVER", "postgres")
	t.Setenv("MONITOR_AUTH_ENABLED", "true")
	t.Setenv("MONITOR_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=app dbname=landslide", cfg.Database.ConnString())
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)

	t.Setenv("MONITOR_SERVER_PORT", "7070")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8181
  cors_origins: ["http://localhost:3000"]
database:
  driver: sqlite
  sqlite_path: /tmp/monitor.db
history:
  timezone: UTC
  summary_cache_ttl: 45s
  fanout_limit: 2
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/tmp/monitor.db", cfg.Database.ConnString())
	assert.Equal(t, 45*time.Second, cfg.History.SummaryCacheTTL)
	assert.Equal(t, 2, cfg.History.FanOutLimit)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	t.Setenv("MONITOR_DATABASE_DRIVER", "oracle")
	_, err := Load("")
	assert.ErrorContains(t, err, "unsupported database driver")

	t.Setenv("MONITOR_DATABASE_DRIVER", "")
	t.Setenv("MONITOR_AUTH_ENABLED", "true")
	_, err = Load("")
	assert.ErrorContains(t, err, "jwt_secret")

	t.Setenv("MONITOR_AUTH_ENABLED", "")
	t.Setenv("MONITOR_HISTORY_TIMEZONE", "Mars/Olympus_Mons")
	_, err = Load("")
	assert.ErrorContains(t, err, "history.timezone")
}

func TestConnString(t *testing.T) {
	mysqlCfg := DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "root", Password: "pw", Name: "landslide"}
	assert.Equal(t, "root:pw@tcp(db:3306)/landslide?charset=utf8mb4&parseTime=True&loc=UTC", mysqlCfg.ConnString())

	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "app", Password: "pw", Name: "landslide"}
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=landslide sslmode=disable", pg.ConnString())
}
