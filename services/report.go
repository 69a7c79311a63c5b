package services

import (
	"context"
	"errors"
	"mime/multipart"

	"gorm.io/gorm"

	"landslide-monitor/models"
	"landslide-monitor/storage"
)

// ImageSaver persists report images out of band and hands back the stored
// reference.
type ImageSaver interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(path string) error
}

// ReportIntake accepts citizen reports and moves them through
// pending, verified and resolved.
type ReportIntake struct {
	db     *gorm.DB
	images ImageSaver
}

func NewReportIntake(db *gorm.DB, images ImageSaver) *ReportIntake {
	return &ReportIntake{db: db, images: images}
}

// Submit stores a new pending report. image may be nil.
func (r *ReportIntake) Submit(ctx context.Context, sub models.ReportSubmission, image *multipart.FileHeader) (*models.Report, error) {
	if sub.Name == "" || sub.Location == "" || sub.Description == "" {
		return nil, validationError("Missing required fields")
	}
	report := models.Report{
		Name:        sub.Name,
		Location:    sub.Location,
		Description: sub.Description,
		Status:      models.ReportPending,
	}
	if sub.Latitude.Present {
		lat, err := coordinate(sub.Latitude, 90, msgLatitudeRange)
		if err != nil {
			return nil, err
		}
		report.Latitude = &lat
	}
	if sub.Longitude.Present {
		lon, err := coordinate(sub.Longitude, 180, msgLongitudeRange)
		if err != nil {
			return nil, err
		}
		report.Longitude = &lon
	}

	if image != nil {
		path, err := r.images.Save(image)
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return nil, validationError("Image is too large")
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, validationError("Unsupported image type")
		case err != nil:
			return nil, persistenceError("save report image", err)
		}
		report.ImagePath = &path
	}

	if err := r.db.WithContext(ctx).Create(&report).Error; err != nil {
		if report.ImagePath != nil {
			_ = r.images.Remove(*report.ImagePath)
		}
		return nil, persistenceError("create report", err)
	}
	return &report, nil
}

// UpdateStatus changes the workflow state of a report.
func (r *ReportIntake) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus) error {
	if !status.Valid() {
		return validationError("Invalid status value")
	}
	res := r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return persistenceError("update report status", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundError("Report not found")
	}
	return nil
}

// List returns every report, newest first.
func (r *ReportIntake) List(ctx context.Context) ([]models.Report, error) {
	reports := []models.Report{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&reports).Error; err != nil {
		return nil, persistenceError("list reports", err)
	}
	return reports, nil
}
