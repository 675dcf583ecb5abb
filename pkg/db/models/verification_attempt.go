package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/certifex-backend/pkg/enums"
)

// VerificationAttempt is an append-only audit row recorded for every public
// verification call, hit or miss. Rows are never updated or deleted.
type VerificationAttempt struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CertificateID *uuid.UUID                `gorm:"column:certificate_id;type:uuid"`
	SubmittedCode string                    `gorm:"column:submitted_code;not null"`
	CallerContext string                    `gorm:"column:caller_context;not null"`
	Outcome       enums.VerificationOutcome `gorm:"column:outcome;type:verification_outcome;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
