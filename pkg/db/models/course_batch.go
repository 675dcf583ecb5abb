package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseBatch is a cohort of participants enrolled together in a course
// offering. Owned by the enrollment side; the engine reads it to resolve the
// course for bulk issuance and the label for verification views.
type CourseBatch struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null"`
	Label     string    `gorm:"column:label;not null"`
	StartsAt  *time.Time `gorm:"column:starts_at"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
