package models

import (
	"time"

	"github.com/google/uuid"
)

// Course is a catalog entry. Domain groups courses for plan access.
// Progress is the completion percentage shown on course cards (0-100).
type Course struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Slug         string    `gorm:"column:slug;not null;uniqueIndex"`
	Title        string    `gorm:"column:title;not null"`
	Description  string    `gorm:"column:description;not null"`
	Domain       string    `gorm:"column:domain;not null;index"`
	ThumbnailURL string    `gorm:"column:thumbnail_url;not null"`
	Progress     int       `gorm:"column:progress;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
