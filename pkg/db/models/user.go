package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the credentialed subject. Identity management lives elsewhere; the
// engine only needs a display name for redacted verification views.
type User struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string    `gorm:"type:text;not null;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
