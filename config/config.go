package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all settings of the monitoring service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	History  HistoryConfig  `mapstructure:"history"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"` // gin mode: debug, release, test
	CORSOrigins []string `mapstructure:"cors_origins"`
	UploadDir   string   `mapstructure:"upload_dir"`
	MaxUploadMB int64    `mapstructure:"max_upload_mb"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql, postgres or sqlite
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type AuthConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type MQTTConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Topic    string `mapstructure:"topic"`
	QoS      byte   `mapstructure:"qos"`
}

type HistoryConfig struct {
	Timezone        string        `mapstructure:"timezone"`
	SummaryCacheTTL time.Duration `mapstructure:"summary_cache_ttl"`
	FanOutLimit     int           `mapstructure:"fanout_limit"`
}

// Location resolves the configured timezone used for date buckets.
func (h HistoryConfig) Location() (*time.Location, error) {
	if h.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(h.Timezone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.upload_dir", "uploads")
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "landslide")
	v.SetDefault("database.sqlite_path", "landslide.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.ping_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "landslide-monitor")
	v.SetDefault("mqtt.topic", "sensors/+/readings")
	v.SetDefault("mqtt.qos", 1)

	v.SetDefault("history.timezone", "UTC")
	v.SetDefault("history.summary_cache_ttl", 30*time.Second)
	v.SetDefault("history.fanout_limit", 8)
}

// Load reads .env (if present), then the optional YAML file at path, then
// MONITOR_* environment variables. PORT and DATABASE_URL are honoured for
// compatibility with the usual PaaS conventions.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "MONITOR_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.dsn", "MONITOR_DATABASE_DSN", "DATABASE_URL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when auth is enabled")
	}
	if _, err := c.History.Location(); err != nil {
		return fmt.Errorf("history.timezone: %w", err)
	}
	return nil
}
