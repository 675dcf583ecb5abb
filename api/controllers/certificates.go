package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumenlearn/certifex-backend/api/responses"
	"github.com/lumenlearn/certifex-backend/api/validators"
	"github.com/lumenlearn/certifex-backend/internal/certificates"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
	pkgerrors "github.com/lumenlearn/certifex-backend/pkg/errors"
	"github.com/lumenlearn/certifex-backend/pkg/logger"
	"github.com/lumenlearn/certifex-backend/pkg/pagination"
)

type certificateIssueRequest struct {
	SubjectUserID string         `json:"subject_user_id" validate:"required,uuid"`
	CourseID      string         `json:"course_id" validate:"required,uuid"`
	BatchID       *string        `json:"batch_id" validate:"omitempty,uuid"`
	CompletedAt   *time.Time     `json:"completed_at"`
	Metadata      map[string]any `json:"metadata"`
}

func (r certificateIssueRequest) toInput() (certificates.IssueInput, error) {
	subjectID, err := uuid.Parse(strings.TrimSpace(r.SubjectUserID))
	if err != nil {
		return certificates.IssueInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subject_user_id")
	}

	courseID, err := uuid.Parse(strings.TrimSpace(r.CourseID))
	if err != nil {
		return certificates.IssueInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid course_id")
	}

	input := certificates.IssueInput{
		SubjectUserID: subjectID,
		CourseID:      courseID,
		CompletedAt:   r.CompletedAt,
		Metadata:      r.Metadata,
	}

	if r.BatchID != nil && strings.TrimSpace(*r.BatchID) != "" {
		batchID, err := uuid.Parse(strings.TrimSpace(*r.BatchID))
		if err != nil {
			return certificates.IssueInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid batch_id")
		}
		input.BatchID = &batchID
	}

	return input, nil
}

// CertificateIssue handles single certificate issuance.
func CertificateIssue(svc certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificate service unavailable"))
			return
		}

		var payload certificateIssueRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.IssueCertificate(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// CertificateBulkIssue issues certificates for every eligible participant of a
// batch. Skipped participants are reported in the payload, not as errors.
func CertificateBulkIssue(svc certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificate service unavailable"))
			return
		}

		batchID, err := validators.ParsePathUUID(chi.URLParam(r, "batchID"), "batch id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.IssueForBatch(r.Context(), batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type certificateRevokeRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// CertificateRevoke revokes an active certificate.
func CertificateRevoke(svc certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificate service unavailable"))
			return
		}

		certificateID, err := validators.ParsePathUUID(chi.URLParam(r, "certificateID"), "certificate id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload certificateRevokeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.RevokeCertificate(r.Context(), certificateID, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// CertificateList returns a cursor-paginated, filterable certificate listing.
func CertificateList(svc certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificate service unavailable"))
			return
		}

		params, err := certificateListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListCertificates(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func certificateListParams(r *http.Request) (certificates.ListParams, error) {
	var params certificates.ListParams

	courseID, err := validators.ParseQueryUUID(r, "course_id")
	if err != nil {
		return params, err
	}
	params.CourseID = courseID

	batchID, err := validators.ParseQueryUUID(r, "batch_id")
	if err != nil {
		return params, err
	}
	params.BatchID = batchID

	subjectID, err := validators.ParseQueryUUID(r, "subject_user_id")
	if err != nil {
		return params, err
	}
	params.SubjectUserID = subjectID

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseCertificateStatus(raw)
		if err != nil {
			return params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		params.Status = &status
	}

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return params, err
	}
	params.Limit = limit
	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

	return params, nil
}

// CertificateDetail returns the operator view of a single certificate.
func CertificateDetail(svc certificates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certificate service unavailable"))
			return
		}

		certificateID, err := validators.ParsePathUUID(chi.URLParam(r, "certificateID"), "certificate id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetCertificate(r.Context(), certificateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}
