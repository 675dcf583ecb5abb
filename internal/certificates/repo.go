package certificates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/lumenlearn/certifex-backend/pkg/db"
	"github.com/lumenlearn/certifex-backend/pkg/db/models"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
	pkgerrors "github.com/lumenlearn/certifex-backend/pkg/errors"
)

// errCodeCollision signals that an insert lost the race on the certificate
// number or verification code index. The service regenerates and retries.
var errCodeCollision = errors.New("certificate code collision")

// Repository exposes certificate persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a certificate repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a certificate row, translating constraint violations at the
// storage boundary: a hit on the active-pair index means the subject already
// holds a live certificate for the course, while a hit on either code index is
// a retryable collision.
func (r *Repository) Create(ctx context.Context, cert *models.Certificate) (*models.Certificate, error) {
	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		if pkgdb.IsUniqueViolation(err, "ux_certificates_active_pair", "certificates.subject_user_id") {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadyIssued, "subject already holds an active certificate for this course")
		}
		if pkgdb.IsUniqueViolation(err,
			"ux_certificates_certificate_number", "certificates.certificate_number",
			"ux_certificates_verification_code", "certificates.verification_code",
		) {
			return nil, errCodeCollision
		}
		return nil, err
	}
	return cert, nil
}

// FindByID loads a certificate by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.db.WithContext(ctx).First(&cert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// FindDetail loads a certificate joined with its subject, course, and batch.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*detailRow, error) {
	var row detailRow
	err := r.db.WithContext(ctx).
		Model(&models.Certificate{}).
		Select("certificates.*, users.display_name AS subject_name, users.email AS subject_email, courses.title AS course_title, courses.code AS course_code, course_batches.label AS batch_label").
		Joins("JOIN users ON users.id = certificates.subject_user_id").
		Joins("JOIN courses ON courses.id = certificates.course_id").
		Joins("LEFT JOIN course_batches ON course_batches.id = certificates.batch_id").
		Where("certificates.id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns certificates matching the filters using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Certificate, error) {
	query := r.db.WithContext(ctx).Model(&models.Certificate{})

	if opts.courseID != nil {
		query = query.Where("course_id = ?", *opts.courseID)
	}
	if opts.batchID != nil {
		query = query.Where("batch_id = ?", *opts.batchID)
	}
	if opts.subjectUserID != nil {
		query = query.Where("subject_user_id = ?", *opts.subjectUserID)
	}
	if opts.status != nil {
		query = query.Where("status = ?", *opts.status)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Certificate
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Revoke marks an active certificate as revoked. It reports whether a row was
// updated; zero rows means the certificate is missing or already revoked, which
// the caller disambiguates.
func (r *Repository) Revoke(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Certificate{}).
		Where("id = ? AND status = ?", id, enums.CertificateStatusActive).
		Updates(map[string]any{
			"status":         enums.CertificateStatusRevoked,
			"revoked_reason": reason,
			"revoked_at":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type detailRow struct {
	models.Certificate
	SubjectName  string  `gorm:"column:subject_name"`
	SubjectEmail string  `gorm:"column:subject_email"`
	CourseTitle  string  `gorm:"column:course_title"`
	CourseCode   string  `gorm:"column:course_code"`
	BatchLabel   *string `gorm:"column:batch_label"`
}
