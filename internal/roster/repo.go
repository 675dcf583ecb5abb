package roster

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumenlearn/certifex-backend/pkg/db/models"
)

// Repository exposes course batch and participant persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a roster repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindUser loads a user by id.
func (r *Repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindCourse loads a course by id.
func (r *Repository) FindCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FindBatch loads a course batch by id.
func (r *Repository) FindBatch(ctx context.Context, id uuid.UUID) (*models.CourseBatch, error) {
	var batch models.CourseBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListParticipants returns every participant enrolled in the batch, ordered by
// enrollment time so bulk issuance runs are deterministic.
func (r *Repository) ListParticipants(ctx context.Context, batchID uuid.UUID) ([]models.BatchParticipant, error) {
	var rows []models.BatchParticipant
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindParticipant loads a single participant row scoped to a batch.
func (r *Repository) FindParticipant(ctx context.Context, batchID, userID uuid.UUID) (*models.BatchParticipant, error) {
	var row models.BatchParticipant
	err := r.db.WithContext(ctx).
		First(&row, "batch_id = ? AND user_id = ?", batchID, userID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkCertificateIssued flips the participant's certificate flag from false to
// true. It reports whether a row was updated so callers can detect a flag that
// was already set by a concurrent run.
func (r *Repository) MarkCertificateIssued(ctx context.Context, batchID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BatchParticipant{}).
		Where("batch_id = ? AND user_id = ? AND certificate_issued = ?", batchID, userID, false).
		Update("certificate_issued", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
