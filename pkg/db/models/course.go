package models

import (
	"time"

	"github.com/google/uuid"
)

// Course holds the catalog fields the engine reads: the title for redacted
// verification views and the short code used as a certificate number prefix.
type Course struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
