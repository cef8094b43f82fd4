package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gigboard/backend/internal/domain/enums"
	"github.com/gigboard/backend/internal/domain/model"
	modsvc "github.com/gigboard/backend/internal/services/moderation"
	"github.com/gigboard/backend/internal/transport/http/dto"
	httperrors "github.com/gigboard/backend/internal/transport/http/errors"
)

// ModerationHandler serves the admin approve/reject queue for every entity kind.
type ModerationHandler struct {
	service *modsvc.Service
	log     *zap.Logger
}

func NewModerationHandler(service *modsvc.Service, log *zap.Logger) *ModerationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ModerationHandler{service: service, log: log}
}

func (h *ModerationHandler) ListPending(kind enums.EntityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}
		if h.service == nil {
			writeUnavailable(w, "moderation service is unavailable")
			return
		}

		records, err := h.service.ListPending(r.Context(), kind)
		if err != nil {
			h.handleError(w, err)
			return
		}

		httperrors.Write(w, http.StatusOK, dto.ItemsResponse[any]{
			Items: dto.MapSlice(records, dto.RecordFromModel),
		})
	}
}

func (h *ModerationHandler) Approve(kind enums.EntityKind) http.HandlerFunc {
	return h.decide(kind, enums.DecisionApprove)
}

func (h *ModerationHandler) Reject(kind enums.EntityKind) http.HandlerFunc {
	return h.decide(kind, enums.DecisionReject)
}

func (h *ModerationHandler) PendingSummary(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "moderation service is unavailable")
		return
	}

	summary, err := h.service.PendingSummary(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PendingSummaryResponse{
		Users:        summary.Users,
		Services:     summary.Services,
		Jobs:         summary.Jobs,
		HireRequests: summary.HireRequests,
		Total:        summary.Users + summary.Services + summary.Jobs + summary.HireRequests,
	})
}

func (h *ModerationHandler) decide(kind enums.EntityKind, decision enums.Decision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		if h.service == nil {
			writeUnavailable(w, "moderation service is unavailable")
			return
		}

		var req dto.DecisionRequest
		if err := decodeOptionalJSON(r, &req); err != nil {
			writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
			return
		}
		note := req.Reason
		if kind == enums.EntityKindHireRequest && req.Response != "" {
			note = req.Response
		}

		id := chi.URLParam(r, "id")
		var (
			record model.Record
			err    error
		)
		if decision == enums.DecisionApprove {
			record, err = h.service.Approve(r.Context(), kind, id, identity.UserID, note)
		} else {
			record, err = h.service.Reject(r.Context(), kind, id, identity.UserID, note)
		}
		if err != nil {
			h.handleError(w, err)
			return
		}

		h.log.Info("moderation decision applied",
			zap.String("admin_id", identity.UserID),
			zap.String("decision", string(decision)),
			zap.String("kind", string(kind)),
			zap.String("target_id", record.TargetID()),
		)
		httperrors.Write(w, http.StatusOK, dto.RecordFromModel(record))
	}
}

func (h *ModerationHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, modsvc.ErrValidation):
		writeBadRequest(w, httperrors.CodeValidation, "invalid moderation target")
	case errors.Is(err, modsvc.ErrNotFound):
		writeNotFound(w, httperrors.CodeNotFound, "record not found")
	case errors.Is(err, modsvc.ErrInvalidTransition):
		writeConflict(w, httperrors.CodeInvalidTransition, "record is already in the opposite terminal state")
	default:
		h.log.Error("moderation request failed", zap.Error(err))
		writeInternal(w, httperrors.CodeInternal, "internal server error")
	}
}
