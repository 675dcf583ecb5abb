package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumenlearn/certifex-backend/api/controllers"
	"github.com/lumenlearn/certifex-backend/api/middleware"
	"github.com/lumenlearn/certifex-backend/internal/certificates"
	"github.com/lumenlearn/certifex-backend/internal/roster"
	"github.com/lumenlearn/certifex-backend/internal/verification"
	"github.com/lumenlearn/certifex-backend/pkg/config"
	"github.com/lumenlearn/certifex-backend/pkg/db"
	"github.com/lumenlearn/certifex-backend/pkg/enums"
	"github.com/lumenlearn/certifex-backend/pkg/logger"
	"github.com/lumenlearn/certifex-backend/pkg/redis"
)

// NewRouter wires the engine's HTTP surface: the operator API, the public
// verification endpoint, the admin audit listing, and the health and metrics
// endpoints.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	certificateService certificates.Service,
	verificationService verification.Service,
	rosterRepo *roster.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	verifyPolicy := middleware.NewVerifyRateLimitPolicy(
		cfg.Verify.RateWindow,
		cfg.Verify.RateIPLimit,
		cfg.Verify.RateCodeLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/public/v1", func(r chi.Router) {
		r.With(middleware.VerifyRateLimit(verifyPolicy, redisClient, logg)).
			Post("/verify", controllers.Verify(verificationService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.ActorRoleOperator, enums.ActorRoleAdmin))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/certificates", func(r chi.Router) {
			r.Get("/", controllers.CertificateList(certificateService, logg))
			r.Post("/", controllers.CertificateIssue(certificateService, logg))
			r.Get("/{certificateID}", controllers.CertificateDetail(certificateService, logg))
			r.Post("/{certificateID}/revoke", controllers.CertificateRevoke(certificateService, logg))
		})

		r.Route("/batches/{batchID}", func(r chi.Router) {
			r.Get("/participants", controllers.BatchParticipants(rosterRepo, logg))
			r.Post("/certificates", controllers.CertificateBulkIssue(certificateService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin))

		r.Get("/verification-attempts", controllers.VerificationAttemptList(verificationService, logg))
	})

	return r
}
