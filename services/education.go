package services

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"landslide-monitor/models"
)

const msgInvalidEducation = "Invalid input data"

type EducationCatalog struct {
	db *gorm.DB
}

func NewEducationCatalog(db *gorm.DB) *EducationCatalog {
	return &EducationCatalog{db: db}
}

func (c *EducationCatalog) List(ctx context.Context) ([]models.Education, error) {
	articles := []models.Education{}
	if err := c.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&articles).Error; err != nil {
		return nil, persistenceError("list education", err)
	}
	return articles, nil
}

func (c *EducationCatalog) Create(ctx context.Context, in models.EducationInput) (*models.Education, error) {
	if !validEducation(in) {
		return nil, validationError(msgInvalidEducation)
	}
	article := models.Education{
		Title:       in.Title,
		Description: in.Description,
		Topics:      datatypes.JSONSlice[string](in.Topics),
	}
	if err := c.db.WithContext(ctx).Create(&article).Error; err != nil {
		return nil, persistenceError("create education", err)
	}
	return &article, nil
}

// Update replaces all three fields of an article.
func (c *EducationCatalog) Update(ctx context.Context, id uint, in models.EducationInput) error {
	if !validEducation(in) {
		return validationError(msgInvalidEducation)
	}
	res := c.db.WithContext(ctx).Model(&models.Education{}).Where("id = ?", id).Updates(map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"topics":      datatypes.JSONSlice[string](in.Topics),
	})
	if res.Error != nil {
		return persistenceError("update education", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundError("Education not found")
	}
	return nil
}

// Delete removes an article. Deleting a missing id succeeds.
func (c *EducationCatalog) Delete(ctx context.Context, id uint) error {
	if err := c.db.WithContext(ctx).Delete(&models.Education{}, id).Error; err != nil {
		return persistenceError("delete education", err)
	}
	return nil
}

func validEducation(in models.EducationInput) bool {
	return in.Title != "" && in.Description != "" && in.Topics != nil
}
