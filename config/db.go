package config

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnString returns the connection string for the configured driver. An
// explicit dsn wins over the individual fields.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.User, d.Password, d.Name)
	case "sqlite":
		return d.SQLitePath
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	}
}

func (d DatabaseConfig) dialector() gorm.Dialector {
	switch d.Driver {
	case "postgres":
		return postgres.Open(d.ConnString())
	case "sqlite":
		return sqlite.Open(d.ConnString())
	default:
		return mysql.Open(d.ConnString())
	}
}

// GormLogger routes gorm's slow-query and error output through zap.
func GormLogger(log *zap.Logger) logger.Interface {
	return logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// OpenDatabase opens the connection pool shared by every component and waits
// for the database to answer. The caller owns the pool and must close it.
func OpenDatabase(ctx context.Context, cfg DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(cfg.dialector(), &gorm.Config{
		Logger:         GormLogger(log),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	deadline := time.Now().Add(cfg.PingTimeout)
	wait := time.Second
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		pingErr := sqlDB.PingContext(pingCtx)
		cancel()
		if pingErr == nil {
			break
		}
		if time.Now().After(deadline) {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("database ping timeout after %s: %w", cfg.PingTimeout, pingErr)
		}
		log.Warn("database not ready, retrying", zap.Duration("wait", wait), zap.Error(pingErr))
		select {
		case <-ctx.Done():
			_ = sqlDB.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > 30*time.Second {
			wait = 30 * time.Second
		}
	}

	log.Info("database connection pool ready",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open", cfg.MaxOpenConns),
		zap.Int("max_idle", cfg.MaxIdleConns),
		zap.Duration("max_lifetime", cfg.ConnMaxLifetime))
	return db, nil
}

// CloseDatabase releases the pool.
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
