package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumenlearn/certifex-backend/api/responses"
	"github.com/lumenlearn/certifex-backend/api/validators"
	"github.com/lumenlearn/certifex-backend/pkg/db/models"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
	pkgerrors "github.com/lumenlearn/certifex-backend/pkg/errors"
	"github.com/lumenlearn/certifex-backend/pkg/logger"
)

type batchRoster interface {
	FindBatch(ctx context.Context, id uuid.UUID) (*models.CourseBatch, error)
	ListParticipants(ctx context.Context, batchID uuid.UUID) ([]models.BatchParticipant, error)
}

type batchParticipantsResponse struct {
	BatchID      uuid.UUID             `json:"batch_id"`
	Label        string                `json:"label"`
	CourseID     uuid.UUID             `json:"course_id"`
	Participants []participantResponse `json:"participants"`
}

type participantResponse struct {
	UserID            uuid.UUID              `json:"user_id"`
	CompletionStatus  enums.CompletionStatus `json:"completion_status"`
	CompletedAt       *time.Time             `json:"completed_at"`
	CertificateIssued bool                   `json:"certificate_issued"`
	EnrolledAt        time.Time              `json:"enrolled_at"`
}

// BatchParticipants lists a batch roster so operators can preview what a bulk
// issuance run will process.
func BatchParticipants(repo batchRoster, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "roster unavailable"))
			return
		}

		batchID, err := validators.ParsePathUUID(chi.URLParam(r, "batchID"), "batch id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := repo.FindBatch(r.Context(), batchID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnknownBatch, "batch not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load batch"))
			return
		}

		rows, err := repo.ListParticipants(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list participants"))
			return
		}

		resp := batchParticipantsResponse{
			BatchID:      batch.ID,
			Label:        batch.Label,
			CourseID:     batch.CourseID,
			Participants: make([]participantResponse, 0, len(rows)),
		}
		for _, row := range rows {
			resp.Participants = append(resp.Participants, participantResponse{
				UserID:            row.UserID,
				CompletionStatus:  row.CompletionStatus,
				CompletedAt:       row.CompletedAt,
				CertificateIssued: row.CertificateIssued,
				EnrolledAt:        row.CreatedAt,
			})
		}

		responses.WriteSuccess(w, resp)
	}
}
