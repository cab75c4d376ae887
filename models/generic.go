package models

import (
	"time"

	"gorm.io/gorm"
)

// Generic is the base for all persistent models. It mirrors gorm.Model but
// exposes the ID and timestamps in JSON responses.
type Generic struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
