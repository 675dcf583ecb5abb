package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/lumenlearn/certifex-backend/pkg/db/types"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
)

// Certificate is a completion credential. The number and verification code
// are assigned once and never reused, even after revocation; uniqueness is
// enforced by the ux_certificates_certificate_number and
// ux_certificates_verification_code indexes. The ux_certificates_active_pair
// partial index guarantees at most one active certificate per
// (subject_user_id, course_id).
type Certificate struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CertificateNumber string                  `gorm:"column:certificate_number;not null;uniqueIndex:ux_certificates_certificate_number"`
	VerificationCode  string                  `gorm:"column:verification_code;not null;uniqueIndex:ux_certificates_verification_code"`
	SubjectUserID     uuid.UUID               `gorm:"column:subject_user_id;type:uuid;not null"`
	CourseID          uuid.UUID               `gorm:"column:course_id;type:uuid;not null"`
	BatchID           *uuid.UUID              `gorm:"column:batch_id;type:uuid"`
	Status            enums.CertificateStatus `gorm:"column:status;type:certificate_status;not null;default:'active'"`
	IssuedAt          time.Time               `gorm:"column:issued_at;not null"`
	CompletedAt       *time.Time              `gorm:"column:completed_at"`
	RevokedReason     *string                 `gorm:"column:revoked_reason"`
	RevokedAt         *time.Time              `gorm:"column:revoked_at"`
	Metadata          dbtypes.JSONMap         `gorm:"column:metadata;type:jsonb;not null;default:'{}'"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// IsActive reports whether the certificate is still valid for public lookup.
func (c *Certificate) IsActive() bool {
	return c.Status == enums.CertificateStatusActive
}
