package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"landslide-monitor/models"
)

// setupMockDB returns a MySQL flavoured gorm handle backed by sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestStorageFailuresBecomePersistenceErrors(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection refused")

	t.Run("list reports", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT").WillReturnError(cause)

		_, err := NewReportIntake(db, &fakeImages{}).List(ctx)
		require.ErrorIs(t, err, ErrPersistence)
		assert.ErrorIs(t, err, cause)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overview", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT").WillReturnError(cause)

		reg := NewSensorRegistry(db, NewFanOutListing(db, 1))
		_, err := reg.Overview(ctx)
		assert.ErrorIs(t, err, ErrPersistence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list sensors", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT").WillReturnError(cause)

		reg := NewSensorRegistry(db, NewFanOutListing(db, 1))
		_, err := reg.List(ctx)
		assert.ErrorIs(t, err, ErrPersistence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete education", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec("DELETE").WillReturnError(cause)

		err := NewEducationCatalog(db).Delete(ctx, 1)
		assert.ErrorIs(t, err, ErrPersistence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("summary", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT").WillReturnError(cause)

		_, err := NewHistoryAggregator(db, time.UTC, 0).Summary(ctx, "7d")
		assert.ErrorIs(t, err, ErrPersistence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay sensors", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("SELECT").WillReturnError(cause)

		err := NewSensorRegistry(db, NewFanOutListing(db, 1)).Replay(ctx)
		assert.ErrorIs(t, err, ErrPersistence)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestValidationHappensBeforeStorage(t *testing.T) {
	db, mock := setupMockDB(t)
	ctx := context.Background()

	reg := NewSensorRegistry(db, NewFanOutListing(db, 1))
	p := validPayload()
	p.Latitude = models.NewNumber(91)
	_, err := reg.Register(ctx, p)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewHistoryAggregator(db, time.UTC, 0).ExportTrend(ctx, "7d", "humidity", FormatCSV)
	assert.ErrorIs(t, err, ErrValidation)

	err = NewReportIntake(db, &fakeImages{}).UpdateStatus(ctx, 1, "closed")
	assert.ErrorIs(t, err, ErrValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
}
