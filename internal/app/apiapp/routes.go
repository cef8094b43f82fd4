package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gigboard/backend/internal/domain/enums"
	auditsvc "github.com/gigboard/backend/internal/services/audit"
	authsvc "github.com/gigboard/backend/internal/services/auth"
	listingssvc "github.com/gigboard/backend/internal/services/listings"
	mediasvc "github.com/gigboard/backend/internal/services/media"
	modsvc "github.com/gigboard/backend/internal/services/moderation"
	ratesvc "github.com/gigboard/backend/internal/services/rate"
	"github.com/gigboard/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	ListingsService   *listingssvc.Service
	MediaService      *mediasvc.Service
	ModerationService *modsvc.Service
	AuditService      *auditsvc.Service
	LoginLimiter      *ratesvc.Limiter
	Profiles          ProfileLookup
	Logger            *zap.Logger
}

// adminSegments is the URL segment of each moderated kind under /api/admin.
var adminSegments = map[enums.EntityKind]string{
	enums.EntityKindUser:        "users",
	enums.EntityKindService:     "services",
	enums.EntityKindJob:         "jobs",
	enums.EntityKindHireRequest: "hire-requests",
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.LoginLimiter, deps.Logger)
	listingsHandler := handlers.NewListingsHandler(deps.ListingsService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.AuditService, deps.Logger)

	var tokens TokenValidator
	if deps.AuthService != nil {
		tokens = deps.AuthService
	}
	authMW := AuthMiddleware(tokens, deps.Logger)
	adminMW := RequireAdmin(deps.Profiles, deps.Logger)

	r.Get("/healthz", handlers.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(authMW).Post("/logout", authHandler.Logout)
			r.With(authMW).Post("/logout-all", authHandler.LogoutAll)
		})
		r.With(authMW).Get("/me", authHandler.Me)

		r.Get("/services", listingsHandler.ListServices)
		r.With(authMW).Post("/services", listingsHandler.CreateService)
		r.With(authMW).Put("/services/{id}/image", mediaHandler.UploadServiceImage)
		r.Get("/jobs", listingsHandler.ListJobs)
		r.With(authMW).Post("/jobs", listingsHandler.CreateJob)
		r.With(authMW).Post("/hire-requests", listingsHandler.CreateHireRequest)
		r.With(authMW).Get("/hire-requests", listingsHandler.ListMyHireRequests)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW, adminMW)
			for _, kind := range enums.EntityKinds() {
				segment := adminSegments[kind]
				r.Get("/pending-"+segment, moderationHandler.ListPending(kind))
				r.Post("/"+segment+"/{id}/approve", moderationHandler.Approve(kind))
				r.Post("/"+segment+"/{id}/reject", moderationHandler.Reject(kind))
			}
			r.Get("/pending-summary", moderationHandler.PendingSummary)
			r.Get("/actions", adminHandler.Actions)
		})
	})
}
