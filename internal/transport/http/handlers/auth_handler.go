package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	authsvc "github.com/gigboard/backend/internal/services/auth"
	ratesvc "github.com/gigboard/backend/internal/services/rate"
	"github.com/gigboard/backend/internal/transport/http/dto"
	httperrors "github.com/gigboard/backend/internal/transport/http/errors"
)

type AuthHandler struct {
	service *authsvc.Service
	limiter *ratesvc.Limiter
	log     *zap.Logger
}

// NewAuthHandler builds the auth endpoints. A nil limiter disables login throttling.
func NewAuthHandler(service *authsvc.Service, limiter *ratesvc.Limiter, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{service: service, limiter: limiter, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "auth service is unavailable")
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	me, err := h.service.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, meResponse(me))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	if h.limiter != nil {
		retryAfter, allowed, err := h.limiter.AllowLogin(r.Context(), req.Email)
		if err != nil {
			if !errors.Is(err, ratesvc.ErrInvalidSubject) {
				h.log.Warn("login rate limiter failed", zap.Error(err))
				writeUnavailable(w, "temporarily unavailable")
				return
			}
		} else if !allowed {
			writeTooManyRequests(w, retryAfter, "too many login attempts")
			return
		}
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	if h.limiter != nil {
		if err := h.limiter.Reset(r.Context(), req.Email); err != nil {
			h.log.Warn("reset login rate limit failed", zap.Error(err))
		}
	}

	httperrors.Write(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "auth service is unavailable")
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	res, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "auth service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), identity.SID); err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "auth service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.LogoutAll(r.Context(), identity.UserID); err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "auth service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	me, err := h.service.Me(r.Context(), identity.UserID)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, meResponse(me))
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, httperrors.CodeValidation, "request validation failed")
	case errors.Is(err, authsvc.ErrEmailTaken):
		writeConflict(w, httperrors.CodeConflict, "email already registered")
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		writeUnauthorized(w, httperrors.CodeUnauthorized, "invalid email or password")
	case errors.Is(err, authsvc.ErrUnauthorized):
		writeUnauthorized(w, httperrors.CodeUnauthorized, "authentication failed")
	default:
		writeInternal(w, httperrors.CodeInternal, "internal server error")
	}
}

func meResponse(me authsvc.Me) dto.MeResponse {
	return dto.MeResponse{
		ID:       me.ID,
		Email:    me.Email,
		FullName: me.FullName,
		IsAdmin:  me.IsAdmin,
		Status:   string(me.Status),
	}
}

func tokensResponse(res authsvc.AuthResult) dto.AuthTokensResponse {
	return dto.AuthTokensResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.AccessExpires,
		ExpiresInSec: max(0, int64(time.Until(res.AccessExpires).Seconds())),
		Me:           meResponse(res.Me),
	}
}
