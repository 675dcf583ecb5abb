package verification

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumenlearn/certifex-backend/pkg/db/models"
)

// Repository exposes verification lookups and the append-only audit trail.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a verification repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCode loads the certificate carrying the given verification code,
// joined with its subject, course, and batch. Status is not filtered here;
// the service decides what a revoked row means for the caller.
func (r *Repository) FindByCode(ctx context.Context, code string) (*certificateRow, error) {
	var row certificateRow
	err := r.db.WithContext(ctx).
		Model(&models.Certificate{}).
		Select("certificates.*, users.display_name AS subject_name, courses.title AS course_title, course_batches.label AS batch_label").
		Joins("JOIN users ON users.id = certificates.subject_user_id").
		Joins("JOIN courses ON courses.id = certificates.course_id").
		Joins("LEFT JOIN course_batches ON course_batches.id = certificates.batch_id").
		Where("certificates.verification_code = ?", code).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// AppendAttempt records one audit row. Attempts are never updated afterwards.
func (r *Repository) AppendAttempt(ctx context.Context, attempt *models.VerificationAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

// ListAttempts returns audit rows matching the filters using cursor pagination.
func (r *Repository) ListAttempts(ctx context.Context, opts attemptQuery) ([]models.VerificationAttempt, error) {
	query := r.db.WithContext(ctx).Model(&models.VerificationAttempt{})

	if opts.certificateID != nil {
		query = query.Where("certificate_id = ?", *opts.certificateID)
	}
	if opts.code != "" {
		query = query.Where("submitted_code = ?", opts.code)
	}
	if opts.outcome != nil {
		query = query.Where("outcome = ?", *opts.outcome)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.VerificationAttempt
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type certificateRow struct {
	models.Certificate
	SubjectName string  `gorm:"column:subject_name"`
	CourseTitle string  `gorm:"column:course_title"`
	BatchLabel  *string `gorm:"column:batch_label"`
}
