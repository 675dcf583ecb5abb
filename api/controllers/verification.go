package controllers

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/lumenlearn/certifex-backend/api/responses"
	"github.com/lumenlearn/certifex-backend/api/validators"
	"github.com/lumenlearn/certifex-backend/internal/verification"
	pkgerrors "github.com/lumenlearn/certifex-backend/pkg/errors"
	"github.com/lumenlearn/certifex-backend/pkg/logger"
)

// Code is deliberately unvalidated: a blank or missing code answers
// not_found like any unknown code and is still audited.
type verifyRequest struct {
	Code string `json:"code"`
}

// Verify resolves a verification code for anonymous callers and records the
// attempt in the audit trail.
func Verify(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}

		var payload verifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Verify(r.Context(), verification.VerifyInput{
			Code:          payload.Code,
			CallerContext: callerContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func callerContext(r *http.Request) string {
	ip := callerIP(r)
	ua := validators.SanitizeString(r.UserAgent(), 256)
	if ua == "" {
		return ip
	}
	return fmt.Sprintf("%s %s", ip, ua)
}

func callerIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
