package roster

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lumenlearn/certifex-backend/pkg/db/models"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
)

func setupRosterTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	courses := `
CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  code TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	batches := `
CREATE TABLE IF NOT EXISTS course_batches (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL,
  label TEXT NOT NULL,
  starts_at DATETIME,
  ends_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	participants := `
CREATE TABLE IF NOT EXISTS batch_participants (
  id TEXT PRIMARY KEY,
  batch_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  completion_status TEXT NOT NULL DEFAULT 'enrolled',
  completed_at DATETIME,
  certificate_issued INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`

	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(courses).Error)
	require.NoError(t, db.Exec(batches).Error)
	require.NoError(t, db.Exec(participants).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_batch_participants_batch_user ON batch_participants (batch_id, user_id);`).Error)
	return db
}

func seedBatch(t *testing.T, db *gorm.DB) (*models.Course, *models.CourseBatch) {
	t.Helper()

	course := &models.Course{ID: uuid.New(), Title: "Distributed Systems", Code: "DS301"}
	require.NoError(t, db.Create(course).Error)
	batch := &models.CourseBatch{ID: uuid.New(), CourseID: course.ID, Label: "2026 Spring"}
	require.NoError(t, db.Create(batch).Error)
	return course, batch
}

func TestRepositoryBatchLookups(t *testing.T) {
	db := setupRosterTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	course, batch := seedBatch(t, db)

	found, err := repo.FindBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, found.CourseID)
	assert.Equal(t, "2026 Spring", found.Label)

	_, err = repo.FindBatch(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	foundCourse, err := repo.FindCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "DS301", foundCourse.Code)
}

func TestRepositoryListParticipantsOrdering(t *testing.T) {
	db := setupRosterTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, batch := seedBatch(t, db)

	base := time.Now().UTC()
	var wantOrder []uuid.UUID
	for i := 0; i < 3; i++ {
		p := &models.BatchParticipant{
			ID:               uuid.New(),
			BatchID:          batch.ID,
			UserID:           uuid.New(),
			CompletionStatus: enums.CompletionStatusEnrolled,
			CreatedAt:        base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Create(p).Error)
		wantOrder = append(wantOrder, p.UserID)
	}

	rows, err := repo.ListParticipants(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, wantOrder[i], row.UserID, "participants must come back in enrollment order")
	}
}

func TestRepositoryMarkCertificateIssued(t *testing.T) {
	db := setupRosterTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, batch := seedBatch(t, db)
	userID := uuid.New()
	p := &models.BatchParticipant{
		ID:               uuid.New(),
		BatchID:          batch.ID,
		UserID:           userID,
		CompletionStatus: enums.CompletionStatusCompleted,
	}
	require.NoError(t, db.Create(p).Error)

	updated, err := repo.MarkCertificateIssued(ctx, batch.ID, userID)
	require.NoError(t, err)
	assert.True(t, updated)

	again, err := repo.MarkCertificateIssued(ctx, batch.ID, userID)
	require.NoError(t, err)
	assert.False(t, again, "flag flip must be idempotent")

	missing, err := repo.MarkCertificateIssued(ctx, batch.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, missing)

	row, err := repo.FindParticipant(ctx, batch.ID, userID)
	require.NoError(t, err)
	assert.True(t, row.CertificateIssued)
}

func TestRepositoryDuplicateEnrollmentRejected(t *testing.T) {
	db := setupRosterTestDB(t)

	_, batch := seedBatch(t, db)
	userID := uuid.New()

	first := &models.BatchParticipant{ID: uuid.New(), BatchID: batch.ID, UserID: userID}
	require.NoError(t, db.Create(first).Error)

	dup := &models.BatchParticipant{ID: uuid.New(), BatchID: batch.ID, UserID: userID}
	assert.Error(t, db.Create(dup).Error)
}
