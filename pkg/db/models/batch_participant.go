package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/certifex-backend/pkg/enums"
)

// BatchParticipant is an enrollment roster row, consumed read-only except for
// the certificate_issued flag, which the issuance service flips false→true
// exactly once after a successful bulk-issuance write.
type BatchParticipant struct {
	ID                 uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BatchID            uuid.UUID              `gorm:"column:batch_id;type:uuid;not null;uniqueIndex:ux_batch_participants_batch_user"`
	UserID             uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_batch_participants_batch_user"`
	CompletionStatus   enums.CompletionStatus `gorm:"column:completion_status;type:completion_status;not null;default:'enrolled'"`
	CompletedAt        *time.Time             `gorm:"column:completed_at"`
	CertificateIssued  bool                   `gorm:"column:certificate_issued;not null;default:false"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
