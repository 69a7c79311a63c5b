package models

import (
	"time"

	"gorm.io/datatypes"
)

// Education is an educational article shown to residents.
type Education struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	Title       string                      `json:"title" gorm:"size:255;not null;index:idx_education_title"`
	Description string                      `json:"description" gorm:"type:text;not null"`
	Topics      datatypes.JSONSlice[string] `json:"topics" gorm:"not null"`
	CreatedAt   time.Time                   `json:"createdAt" gorm:"index:idx_education_created_at"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (Education) TableName() string {
	return "education"
}

// EducationInput is the body of education create and update. Topics must be
// a JSON array of strings.
type EducationInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
}
