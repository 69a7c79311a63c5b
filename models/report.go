package models

import "time"

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportVerified ReportStatus = "verified"
	ReportResolved ReportStatus = "resolved"
)

// Valid reports whether s is one of the workflow states.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportVerified, ReportResolved:
		return true
	}
	return false
}

// Report is a citizen-submitted incident observation.
type Report struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"size:255;not null"`
	Location    string       `json:"location" gorm:"size:255;not null;index:idx_reports_location"`
	Latitude    *float64     `json:"latitude" gorm:"type:decimal(10,8);index:idx_reports_coordinates,priority:1"`
	Longitude   *float64     `json:"longitude" gorm:"type:decimal(11,8);index:idx_reports_coordinates,priority:2"`
	Description string       `json:"description" gorm:"type:text;not null"`
	ImagePath   *string      `json:"image_path" gorm:"size:500"`
	Status      ReportStatus `json:"status" gorm:"size:16;not null;default:pending;index:idx_reports_status"`
	CreatedAt   time.Time    `json:"created_at" gorm:"index:idx_reports_created_at"`
	UpdatedAt   time.Time    `json:"-"`
}

// ReportSubmission is the (JSON or multipart) body of POST /api/report/submit.
// Any status sent by the caller is ignored.
type ReportSubmission struct {
	Name        string `json:"name" form:"name"`
	Location    string `json:"location" form:"location"`
	Description string `json:"description" form:"description"`
	Latitude    Number `json:"latitude" form:"-"`
	Longitude   Number `json:"longitude" form:"-"`
}

type ReportStatusUpdate struct {
	Status ReportStatus `json:"status"`
}
