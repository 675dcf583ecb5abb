package certificates

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/lumenlearn/certifex-backend/pkg/db/models"
	dbtypes "github.com/lumenlearn/certifex-backend/pkg/db/types"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
	pkgerrors "github.com/lumenlearn/certifex-backend/pkg/errors"
	"github.com/lumenlearn/certifex-backend/pkg/logger"
	"github.com/lumenlearn/certifex-backend/pkg/metrics"
	pkgpagination "github.com/lumenlearn/certifex-backend/pkg/pagination"
)

const collisionBackoff = 5 * time.Millisecond

type certificatesRepository interface {
	Create(ctx context.Context, cert *models.Certificate) (*models.Certificate, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*detailRow, error)
	List(ctx context.Context, opts listQuery) ([]models.Certificate, error)
	Revoke(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error)
}

type rosterRepository interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindCourse(ctx context.Context, id uuid.UUID) (*models.Course, error)
	FindBatch(ctx context.Context, id uuid.UUID) (*models.CourseBatch, error)
	ListParticipants(ctx context.Context, batchID uuid.UUID) ([]models.BatchParticipant, error)
	MarkCertificateIssued(ctx context.Context, batchID, userID uuid.UUID) (bool, error)
}

type codeGenerator interface {
	VerificationCode() (string, error)
	CertificateNumber(courseCode string, issuedAt time.Time) (string, error)
}

// Service exposes certificate issuance, revocation, and operator listing.
type Service interface {
	IssueCertificate(ctx context.Context, input IssueInput) (*Detail, error)
	IssueForBatch(ctx context.Context, batchID uuid.UUID) (*BulkIssueResult, error)
	RevokeCertificate(ctx context.Context, certificateID uuid.UUID, reason string) (*Detail, error)
	ListCertificates(ctx context.Context, params ListParams) (*ListResult, error)
	GetCertificate(ctx context.Context, certificateID uuid.UUID) (*Detail, error)
}

type service struct {
	repo             certificatesRepository
	roster           rosterRepository
	codegen          codeGenerator
	log              *logger.Logger
	metrics          *metrics.EngineMetrics
	publicBaseURL    string
	maxCodeAttempts  int
	batchConcurrency int
	now              func() time.Time
}

// ServiceParams configures the certificate service.
type ServiceParams struct {
	Repo             certificatesRepository
	Roster           rosterRepository
	Codegen          codeGenerator
	Logger           *logger.Logger
	Metrics          *metrics.EngineMetrics
	PublicBaseURL    string
	MaxCodeAttempts  int
	BatchConcurrency int
}

// NewService builds the certificate service backed by the provided
// repositories and code generator.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("certificate repository required")
	}
	if params.Roster == nil {
		return nil, fmt.Errorf("roster repository required")
	}
	if params.Codegen == nil {
		return nil, fmt.Errorf("code generator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.PublicBaseURL == "" {
		return nil, fmt.Errorf("public base url required")
	}
	if params.MaxCodeAttempts <= 0 {
		return nil, fmt.Errorf("max code attempts must be positive")
	}
	if params.BatchConcurrency <= 0 {
		return nil, fmt.Errorf("batch concurrency must be positive")
	}
	return &service{
		repo:             params.Repo,
		roster:           params.Roster,
		codegen:          params.Codegen,
		log:              params.Logger,
		metrics:          params.Metrics,
		publicBaseURL:    strings.TrimRight(params.PublicBaseURL, "/"),
		maxCodeAttempts:  params.MaxCodeAttempts,
		batchConcurrency: params.BatchConcurrency,
		now:              time.Now,
	}, nil
}

func (s *service) IssueCertificate(ctx context.Context, input IssueInput) (*Detail, error) {
	if input.SubjectUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject_user_id is required")
	}
	if input.CourseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course_id is required")
	}

	if _, err := s.roster.FindUser(ctx, input.SubjectUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subject user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup subject user")
	}

	course, err := s.roster.FindCourse(ctx, input.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup course")
	}

	if input.BatchID != nil {
		batch, err := s.roster.FindBatch(ctx, *input.BatchID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeUnknownBatch, "batch not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup batch")
		}
		if batch.CourseID != input.CourseID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch does not belong to course")
		}
	}

	cert, err := s.createWithCodes(ctx, course.Code, input)
	if err != nil {
		return nil, err
	}

	s.metrics.IncIssued("single")
	s.log.Info(s.log.WithCertificateID(ctx, cert.ID.String()), "certificate issued")
	return s.detail(ctx, cert.ID)
}

func (s *service) IssueForBatch(ctx context.Context, batchID uuid.UUID) (*BulkIssueResult, error) {
	if batchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch_id is required")
	}

	batch, err := s.roster.FindBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnknownBatch, "batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup batch")
	}

	course, err := s.roster.FindCourse(ctx, batch.CourseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup batch course")
	}

	participants, err := s.roster.ListParticipants(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list batch participants")
	}

	result := &BulkIssueResult{
		BatchID: batchID,
		Issued:  []BulkIssued{},
		Skipped: []BulkSkipped{},
	}

	var candidates []models.BatchParticipant
	for _, p := range participants {
		switch {
		case p.CompletionStatus != enums.CompletionStatusCompleted:
			result.Skipped = append(result.Skipped, BulkSkipped{UserID: p.UserID, Reason: enums.SkipReasonNotCompleted})
			s.metrics.IncSkipped(enums.SkipReasonNotCompleted.String())
		case p.CertificateIssued:
			result.Skipped = append(result.Skipped, BulkSkipped{UserID: p.UserID, Reason: enums.SkipReasonAlreadyIssued})
			s.metrics.IncSkipped(enums.SkipReasonAlreadyIssued.String())
		default:
			candidates = append(candidates, p)
		}
	}

	// Each candidate writes only its own slot, so the slice needs no lock and
	// the response order matches the roster regardless of scheduling.
	type slot struct {
		issued  *BulkIssued
		skipped *BulkSkipped
	}
	slots := make([]slot, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, p := range candidates {
		g.Go(func() error {
			input := IssueInput{
				SubjectUserID: p.UserID,
				CourseID:      batch.CourseID,
				BatchID:       &batch.ID,
				CompletedAt:   p.CompletedAt,
			}
			cert, err := s.createWithCodes(gctx, course.Code, input)
			switch {
			case err == nil:
				synced, syncErr := s.roster.MarkCertificateIssued(gctx, batch.ID, p.UserID)
				if syncErr != nil || !synced {
					s.log.Error(s.log.WithBatchID(gctx, batch.ID.String()), "participant flag left unsynced after issuance", syncErr)
					slots[i].skipped = &BulkSkipped{UserID: p.UserID, Reason: enums.SkipReasonFlagUnsynced, CertificateID: &cert.ID}
					s.metrics.IncSkipped(enums.SkipReasonFlagUnsynced.String())
					return nil
				}
				slots[i].issued = &BulkIssued{
					UserID:            p.UserID,
					CertificateID:     cert.ID,
					CertificateNumber: cert.CertificateNumber,
					VerificationCode:  cert.VerificationCode,
					VerificationURL:   s.verificationURL(cert.VerificationCode),
				}
				s.metrics.IncIssued("bulk")
			case pkgerrors.HasCode(err, pkgerrors.CodeAlreadyIssued):
				// A certificate exists but the roster flag lagged behind;
				// resync it so the next run skips cheaply.
				if _, syncErr := s.roster.MarkCertificateIssued(gctx, batch.ID, p.UserID); syncErr != nil {
					s.log.Error(gctx, "resync participant flag", syncErr)
				}
				slots[i].skipped = &BulkSkipped{UserID: p.UserID, Reason: enums.SkipReasonAlreadyIssued}
				s.metrics.IncSkipped(enums.SkipReasonAlreadyIssued.String())
			case pkgerrors.HasCode(err, pkgerrors.CodeGenerationExhausted):
				slots[i].skipped = &BulkSkipped{UserID: p.UserID, Reason: enums.SkipReasonGenerationExhausted}
				s.metrics.IncSkipped(enums.SkipReasonGenerationExhausted.String())
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue certificates for batch")
	}

	for _, sl := range slots {
		if sl.issued != nil {
			result.Issued = append(result.Issued, *sl.issued)
		}
		if sl.skipped != nil {
			result.Skipped = append(result.Skipped, *sl.skipped)
		}
	}

	s.log.Info(s.log.WithBatchID(ctx, batchID.String()), "bulk issuance completed")
	return result, nil
}

func (s *service) RevokeCertificate(ctx context.Context, certificateID uuid.UUID, reason string) (*Detail, error) {
	if certificateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "certificate id is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "revocation reason is required")
	}

	revoked, err := s.repo.Revoke(ctx, certificateID, reason, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke certificate")
	}
	if !revoked {
		if _, err := s.repo.FindByID(ctx, certificateID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup certificate")
		}
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyRevoked, "certificate already revoked")
	}

	s.metrics.IncRevoked()
	s.log.Info(s.log.WithCertificateID(ctx, certificateID.String()), "certificate revoked")
	return s.detail(ctx, certificateID)
}

func (s *service) ListCertificates(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid certificate status")
	}

	limit := pkgpagination.ClampLimit(params.Limit)
	query := listQuery{
		courseID:      params.CourseID,
		batchID:       params.BatchID,
		subjectUserID: params.SubjectUserID,
		status:        params.Status,
		limit:         pkgpagination.FetchLimit(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.DecodeCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list certificates")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		}.Encode()
		rows = rows[:limit]
	}

	items := make([]ListItem, len(rows))
	for i, row := range rows {
		items[i] = toListItem(row, s.verificationURL(row.VerificationCode))
	}

	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) GetCertificate(ctx context.Context, certificateID uuid.UUID) (*Detail, error) {
	if certificateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "certificate id is required")
	}
	return s.detail(ctx, certificateID)
}

// createWithCodes allocates codes and inserts the certificate, retrying on
// code index collisions up to the configured attempt budget. Uniqueness of the
// (subject, course) active pair is enforced by the insert itself, never by a
// prior read.
func (s *service) createWithCodes(ctx context.Context, courseCode string, input IssueInput) (*models.Certificate, error) {
	issuedAt := s.now().UTC()
	metadata := dbtypes.JSONMap(input.Metadata)
	if metadata == nil {
		metadata = dbtypes.JSONMap{}
	}

	attempts := 0
	var created *models.Certificate
	backoff := retry.WithMaxRetries(uint64(s.maxCodeAttempts-1), retry.NewConstant(collisionBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		code, err := s.codegen.VerificationCode()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate verification code")
		}
		number, err := s.codegen.CertificateNumber(courseCode, issuedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate certificate number")
		}

		cert := &models.Certificate{
			ID:                uuid.New(),
			CertificateNumber: number,
			VerificationCode:  code,
			SubjectUserID:     input.SubjectUserID,
			CourseID:          input.CourseID,
			BatchID:           input.BatchID,
			Status:            enums.CertificateStatusActive,
			IssuedAt:          issuedAt,
			CompletedAt:       input.CompletedAt,
			Metadata:          metadata,
		}
		row, err := s.repo.Create(ctx, cert)
		if err != nil {
			if errors.Is(err, errCodeCollision) {
				return retry.RetryableError(err)
			}
			return err
		}
		created = row
		return nil
	})
	s.metrics.ObserveCodeAttempts(attempts)
	if err != nil {
		if errors.Is(err, errCodeCollision) {
			return nil, pkgerrors.New(pkgerrors.CodeGenerationExhausted, "could not allocate a unique certificate code")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create certificate")
	}
	return created, nil
}

func (s *service) detail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	row, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "certificate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup certificate")
	}

	return &Detail{
		ListItem:      toListItem(row.Certificate, s.verificationURL(row.VerificationCode)),
		SubjectName:   row.SubjectName,
		SubjectEmail:  row.SubjectEmail,
		CourseTitle:   row.CourseTitle,
		CourseCode:    row.CourseCode,
		BatchLabel:    row.BatchLabel,
		RevokedReason: row.RevokedReason,
		Metadata:      map[string]any(row.Metadata),
	}, nil
}

func (s *service) verificationURL(code string) string {
	return fmt.Sprintf("%s/verify?code=%s", s.publicBaseURL, url.QueryEscape(code))
}
