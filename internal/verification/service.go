package verification

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumenlearn/certifex-backend/pkg/db/models"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
	pkgerrors "github.com/lumenlearn/certifex-backend/pkg/errors"
	"github.com/lumenlearn/certifex-backend/pkg/logger"
	"github.com/lumenlearn/certifex-backend/pkg/metrics"
	pkgpagination "github.com/lumenlearn/certifex-backend/pkg/pagination"
)

type verificationRepository interface {
	FindByCode(ctx context.Context, code string) (*certificateRow, error)
	AppendAttempt(ctx context.Context, attempt *models.VerificationAttempt) error
	ListAttempts(ctx context.Context, opts attemptQuery) ([]models.VerificationAttempt, error)
}

// Service answers public verification requests and exposes the audit trail to
// admins.
type Service interface {
	Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error)
	ListAttempts(ctx context.Context, params AttemptListParams) (*AttemptListResult, error)
}

type service struct {
	repo          verificationRepository
	log           *logger.Logger
	metrics       *metrics.EngineMetrics
	publicBaseURL string
}

// NewService builds the verification service.
func NewService(repo verificationRepository, log *logger.Logger, m *metrics.EngineMetrics, publicBaseURL string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("verification repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if publicBaseURL == "" {
		return nil, fmt.Errorf("public base url required")
	}
	return &service{
		repo:          repo,
		log:           log,
		metrics:       m,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Verify resolves a submitted code to its redacted certificate view. Every
// call leaves exactly one audit row, hit or miss, before the result is
// returned. Blank and revoked codes both answer not_found publicly; for
// revoked ones the audit row still links the certificate so admins can see
// probing against dead codes.
func (s *service) Verify(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	outcome := enums.VerificationOutcomeNotFound
	var certificateID *uuid.UUID
	var result *VerifyResult

	if code == "" {
		// nothing to look up, but the probe is still audited
		result = &VerifyResult{Outcome: outcome}
	} else {
		row, err := s.repo.FindByCode(ctx, code)
		switch {
		case err == nil && row.IsActive():
			outcome = enums.VerificationOutcomeVerified
			certificateID = &row.ID
			result = &VerifyResult{
				Outcome: outcome,
				Certificate: &PublicCertificate{
					CertificateNumber: row.CertificateNumber,
					VerificationCode:  row.VerificationCode,
					SubjectName:       row.SubjectName,
					CourseTitle:       row.CourseTitle,
					BatchLabel:        row.BatchLabel,
					IssuedAt:          row.IssuedAt,
					CompletedAt:       row.CompletedAt,
					VerificationURL:   s.verificationURL(row.VerificationCode),
				},
			}
		case err == nil:
			// revoked: publicly indistinguishable from an unknown code
			certificateID = &row.ID
			result = &VerifyResult{Outcome: outcome}
		case errors.Is(err, gorm.ErrRecordNotFound):
			result = &VerifyResult{Outcome: outcome}
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup verification code")
		}
	}

	attempt := &models.VerificationAttempt{
		ID:            uuid.New(),
		CertificateID: certificateID,
		SubmittedCode: code,
		CallerContext: input.CallerContext,
		Outcome:       outcome,
	}
	if err := s.repo.AppendAttempt(ctx, attempt); err != nil {
		// the audit trail is part of the contract; a lookup without a
		// recorded attempt must not succeed
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record verification attempt")
	}

	s.metrics.IncVerification(outcome.String())
	s.log.Info(ctx, "verification attempt recorded")
	return result, nil
}

func (s *service) ListAttempts(ctx context.Context, params AttemptListParams) (*AttemptListResult, error) {
	if params.Outcome != nil && !params.Outcome.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid verification outcome")
	}

	limit := pkgpagination.ClampLimit(params.Limit)
	query := attemptQuery{
		certificateID: params.CertificateID,
		code:          strings.ToUpper(strings.TrimSpace(params.Code)),
		outcome:       params.Outcome,
		limit:         pkgpagination.FetchLimit(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.DecodeCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.ListAttempts(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list verification attempts")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		}.Encode()
		rows = rows[:limit]
	}

	items := make([]AttemptItem, len(rows))
	for i, row := range rows {
		items[i] = AttemptItem{
			ID:            row.ID,
			CertificateID: row.CertificateID,
			SubmittedCode: row.SubmittedCode,
			CallerContext: row.CallerContext,
			Outcome:       row.Outcome,
			CreatedAt:     row.CreatedAt,
		}
	}

	return &AttemptListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) verificationURL(code string) string {
	return fmt.Sprintf("%s/verify?code=%s", s.publicBaseURL, url.QueryEscape(code))
}
