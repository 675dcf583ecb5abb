package certificates

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/certifex-backend/pkg/db/models"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
	pkgpagination "github.com/lumenlearn/certifex-backend/pkg/pagination"
)

// IssueInput holds everything required to issue a single certificate.
type IssueInput struct {
	SubjectUserID uuid.UUID
	CourseID      uuid.UUID
	BatchID       *uuid.UUID
	CompletedAt   *time.Time
	Metadata      map[string]any
}

// ListParams filters the operator certificate listing.
type ListParams struct {
	CourseID      *uuid.UUID
	BatchID       *uuid.UUID
	SubjectUserID *uuid.UUID
	Status        *enums.CertificateStatus
	pkgpagination.Params
}

type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

type ListItem struct {
	ID                uuid.UUID               `json:"id"`
	CertificateNumber string                  `json:"certificate_number"`
	VerificationCode  string                  `json:"verification_code"`
	SubjectUserID     uuid.UUID               `json:"subject_user_id"`
	CourseID          uuid.UUID               `json:"course_id"`
	BatchID           *uuid.UUID              `json:"batch_id"`
	Status            enums.CertificateStatus `json:"status"`
	IssuedAt          time.Time               `json:"issued_at"`
	CompletedAt       *time.Time              `json:"completed_at"`
	RevokedAt         *time.Time              `json:"revoked_at"`
	VerificationURL   string                  `json:"verification_url"`
	CreatedAt         time.Time               `json:"created_at"`
}

// Detail is the operator view of a certificate joined with its subject,
// course, and batch.
type Detail struct {
	ListItem
	SubjectName   string         `json:"subject_name"`
	SubjectEmail  string         `json:"subject_email"`
	CourseTitle   string         `json:"course_title"`
	CourseCode    string         `json:"course_code"`
	BatchLabel    *string        `json:"batch_label"`
	RevokedReason *string        `json:"revoked_reason"`
	Metadata      map[string]any `json:"metadata"`
}

// BulkIssueResult reports the outcome of a batch issuance run. Skips are data,
// not errors: every participant appears exactly once across the two slices.
type BulkIssueResult struct {
	BatchID uuid.UUID     `json:"batch_id"`
	Issued  []BulkIssued  `json:"issued"`
	Skipped []BulkSkipped `json:"skipped"`
}

type BulkIssued struct {
	UserID            uuid.UUID `json:"user_id"`
	CertificateID     uuid.UUID `json:"certificate_id"`
	CertificateNumber string    `json:"certificate_number"`
	VerificationCode  string    `json:"verification_code"`
	VerificationURL   string    `json:"verification_url"`
}

type BulkSkipped struct {
	UserID        uuid.UUID        `json:"user_id"`
	Reason        enums.SkipReason `json:"reason"`
	CertificateID *uuid.UUID       `json:"certificate_id,omitempty"`
}

type listQuery struct {
	courseID      *uuid.UUID
	batchID       *uuid.UUID
	subjectUserID *uuid.UUID
	status        *enums.CertificateStatus
	limit         int
	cursor        *pkgpagination.Cursor
}

func toListItem(m models.Certificate, verificationURL string) ListItem {
	return ListItem{
		ID:                m.ID,
		CertificateNumber: m.CertificateNumber,
		VerificationCode:  m.VerificationCode,
		SubjectUserID:     m.SubjectUserID,
		CourseID:          m.CourseID,
		BatchID:           m.BatchID,
		Status:            m.Status,
		IssuedAt:          m.IssuedAt,
		CompletedAt:       m.CompletedAt,
		RevokedAt:         m.RevokedAt,
		VerificationURL:   verificationURL,
		CreatedAt:         m.CreatedAt,
	}
}
