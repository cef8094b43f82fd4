package apiapp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gigboard/backend/internal/domain/model"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
	authsvc "github.com/gigboard/backend/internal/services/auth"
	httperrors "github.com/gigboard/backend/internal/transport/http/errors"
)

// ProfileLookup resolves a session's user id to the stored account.
type ProfileLookup interface {
	GetUserByID(ctx context.Context, userID string) (model.User, error)
}

type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (authsvc.AccessClaims, error)
}

func ApplyMiddlewares(r chiRouter, log *zap.Logger, requestTimeout time.Duration) {
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(requestLogger(log))
}

// AuthMiddleware validates the bearer token against the session store. It
// never touches Postgres.
func AuthMiddleware(tokens TokenValidator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				httperrors.WriteError(w, http.StatusServiceUnavailable, httperrors.CodeUnavailable, "auth service is unavailable")
				return
			}

			accessToken, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				httperrors.WriteError(w, http.StatusUnauthorized, httperrors.CodeUnauthorized, "missing bearer token")
				return
			}

			claims, err := tokens.ValidateAccessToken(r.Context(), accessToken)
			if err != nil {
				if log != nil {
					log.Debug("auth middleware validation failed", zap.Error(err))
				}
				httperrors.WriteError(w, http.StatusUnauthorized, httperrors.CodeUnauthorized, "invalid access token")
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{
				UserID: claims.UserID,
				SID:    claims.SID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after AuthMiddleware. Admin status comes from the
// stored profile, not from the token.
func RequireAdmin(profiles ProfileLookup, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := authsvc.IdentityFromContext(r.Context())
			if !ok || identity.UserID == "" {
				httperrors.WriteError(w, http.StatusUnauthorized, httperrors.CodeUnauthorized, "authentication required")
				return
			}
			if profiles == nil {
				httperrors.WriteError(w, http.StatusServiceUnavailable, httperrors.CodeUnavailable, "profile store is unavailable")
				return
			}

			profile, err := profiles.GetUserByID(r.Context(), identity.UserID)
			if err != nil {
				if errors.Is(err, pgrepo.ErrNotFound) {
					httperrors.WriteError(w, http.StatusForbidden, httperrors.CodeForbidden, "admin access required")
					return
				}
				if log != nil {
					log.Error("admin profile lookup failed", zap.String("user_id", identity.UserID), zap.Error(err))
				}
				httperrors.WriteError(w, http.StatusInternalServerError, httperrors.CodeInternal, "failed to resolve profile")
				return
			}
			if !profile.IsAdmin {
				httperrors.WriteError(w, http.StatusForbidden, httperrors.CodeForbidden, "admin access required")
				return
			}

			identity.IsAdmin = true
			next.ServeHTTP(w, r.WithContext(authsvc.WithIdentity(r.Context(), identity)))
		})
	}
}

func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if log != nil {
				log.Info("http_request",
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
