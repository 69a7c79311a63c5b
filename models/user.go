package models

import "time"

// Moderator can verify reports and edit educational content when auth is on.
type Moderator struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:100;unique;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
