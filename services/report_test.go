package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landslide-monitor/models"
	"landslide-monitor/storage"
)

type fakeImages struct {
	saved   []string
	removed []string
	err     error
}

func (f *fakeImages) Save(fh *multipart.FileHeader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := storage.URLPrefix + fh.Filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeImages) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func submission() models.ReportSubmission {
	return models.ReportSubmission{
		Name:        "Budi",
		Location:    "Bukit A",
		Description: "Crack in the slope",
	}
}

func TestSubmitForcesPending(t *testing.T) {
	db := setupTestDB(t)
	images := &fakeImages{}
	intake := NewReportIntake(db, images)

	sub := submission()
	sub.Latitude = models.NewNumber(-7.7)
	report, err := intake.Submit(context.Background(), sub, &multipart.FileHeader{Filename: "photo.jpg"})
	require.NoError(t, err)

	var stored models.Report
	require.NoError(t, db.First(&stored, report.ID).Error)
	assert.Equal(t, models.ReportPending, stored.Status)
	require.NotNil(t, stored.Latitude)
	assert.Equal(t, -7.7, *stored.Latitude)
	assert.Nil(t, stored.Longitude)
	require.NotNil(t, stored.ImagePath)
	assert.Equal(t, "/uploads/photo.jpg", *stored.ImagePath)
}

func TestSubmitValidation(t *testing.T) {
	db := setupTestDB(t)
	images := &fakeImages{}
	intake := NewReportIntake(db, images)
	ctx := context.Background()

	sub := submission()
	sub.Description = ""
	_, err := intake.Submit(ctx, sub, &multipart.FileHeader{Filename: "photo.jpg"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Missing required fields", err.Error())
	assert.Empty(t, images.saved)

	sub = submission()
	sub.Longitude = models.ParseNumber("east")
	_, err = intake.Submit(ctx, sub, nil)
	assert.ErrorIs(t, err, ErrValidation)

	images.err = storage.ErrUnsupportedType
	_, err = intake.Submit(ctx, submission(), &multipart.FileHeader{Filename: "notes.exe"})
	assert.ErrorIs(t, err, ErrValidation)

	images.err = errors.New("disk full")
	_, err = intake.Submit(ctx, submission(), &multipart.FileHeader{Filename: "photo.jpg"})
	assert.ErrorIs(t, err, ErrPersistence)

	reports, err := intake.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestUpdateReportStatus(t *testing.T) {
	db := setupTestDB(t)
	intake := NewReportIntake(db, &fakeImages{})
	ctx := context.Background()

	report, err := intake.Submit(ctx, submission(), nil)
	require.NoError(t, err)

	err = intake.UpdateStatus(ctx, report.ID, "closed")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Invalid status value", err.Error())

	var stored models.Report
	require.NoError(t, db.First(&stored, report.ID).Error)
	assert.Equal(t, models.ReportPending, stored.Status)

	require.NoError(t, intake.UpdateStatus(ctx, report.ID, models.ReportVerified))
	require.NoError(t, db.First(&stored, report.ID).Error)
	assert.Equal(t, models.ReportVerified, stored.Status)

	err = intake.UpdateStatus(ctx, report.ID+100, models.ReportResolved)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Report not found", err.Error())
}

func TestListReportsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	intake := NewReportIntake(db, &fakeImages{})
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, seed := range []struct {
		name   string
		offset time.Duration
	}{
		{"old", 0},
		{"new", 2 * time.Hour},
		{"middle", time.Hour},
	} {
		r := models.Report{
			Name:        seed.name,
			Location:    "L",
			Description: "D",
			Status:      models.ReportPending,
			CreatedAt:   base.Add(seed.offset),
		}
		require.NoError(t, db.Create(&r).Error)
	}

	reports, err := intake.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "new", reports[0].Name)
	assert.Equal(t, "middle", reports[1].Name)
	assert.Equal(t, "old", reports[2].Name)
}
