package verification

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/certifex-backend/pkg/enums"
	pkgpagination "github.com/lumenlearn/certifex-backend/pkg/pagination"
)

// VerifyInput is what the public endpoint accepts: the code as submitted and
// whatever caller context the transport layer captured (IP, user agent).
type VerifyInput struct {
	Code          string
	CallerContext string
}

// VerifyResult is the public answer. Revoked certificates are reported as
// not_found; the distinction is visible only in the audit trail.
type VerifyResult struct {
	Outcome     enums.VerificationOutcome `json:"outcome"`
	Certificate *PublicCertificate        `json:"certificate,omitempty"`
}

// PublicCertificate is the redacted view handed to anonymous verifiers. It
// deliberately omits the subject's email, internal ids, and metadata.
type PublicCertificate struct {
	CertificateNumber string     `json:"certificate_number"`
	VerificationCode  string     `json:"verification_code"`
	SubjectName       string     `json:"subject_name"`
	CourseTitle       string     `json:"course_title"`
	BatchLabel        *string    `json:"batch_label,omitempty"`
	IssuedAt          time.Time  `json:"issued_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	VerificationURL   string     `json:"verification_url"`
}

// AttemptListParams filters the admin audit listing.
type AttemptListParams struct {
	CertificateID *uuid.UUID
	Code          string
	Outcome       *enums.VerificationOutcome
	pkgpagination.Params
}

type AttemptListResult struct {
	Items  []AttemptItem `json:"items"`
	Cursor string        `json:"cursor"`
}

type AttemptItem struct {
	ID            uuid.UUID                 `json:"id"`
	CertificateID *uuid.UUID                `json:"certificate_id"`
	SubmittedCode string                    `json:"submitted_code"`
	CallerContext string                    `json:"caller_context"`
	Outcome       enums.VerificationOutcome `json:"outcome"`
	CreatedAt     time.Time                 `json:"created_at"`
}

type attemptQuery struct {
	certificateID *uuid.UUID
	code          string
	outcome       *enums.VerificationOutcome
	limit         int
	cursor        *pkgpagination.Cursor
}
