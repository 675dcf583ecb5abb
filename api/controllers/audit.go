package controllers

import (
	"net/http"
	"strings"

	"github.com/lumenlearn/certifex-backend/api/responses"
	"github.com/lumenlearn/certifex-backend/api/validators"
	"github.com/lumenlearn/certifex-backend/internal/verification"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
	pkgerrors "github.com/lumenlearn/certifex-backend/pkg/errors"
	"github.com/lumenlearn/certifex-backend/pkg/logger"
	"github.com/lumenlearn/certifex-backend/pkg/pagination"
)

// VerificationAttemptList exposes the verification audit trail to admins.
func VerificationAttemptList(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		var params verification.AttemptListParams

		certificateID, err := validators.ParseQueryUUID(r, "certificate_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.CertificateID = certificateID

		params.Code = strings.TrimSpace(r.URL.Query().Get("code"))

		if raw := strings.TrimSpace(r.URL.Query().Get("outcome")); raw != "" {
			outcome := enums.VerificationOutcome(strings.ToLower(raw))
			params.Outcome = &outcome
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit
		params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		result, err := svc.ListAttempts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
