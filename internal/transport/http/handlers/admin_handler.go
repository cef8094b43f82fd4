package handlers

import (
	"net/http"

	"go.uber.org/zap"

	auditsvc "github.com/gigboard/backend/internal/services/audit"
	"github.com/gigboard/backend/internal/transport/http/dto"
	httperrors "github.com/gigboard/backend/internal/transport/http/errors"
)

// AdminHandler exposes the admin action log.
type AdminHandler struct {
	audit *auditsvc.Service
	log   *zap.Logger
}

func NewAdminHandler(audit *auditsvc.Service, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{audit: audit, log: log}
}

func (h *AdminHandler) Actions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	if h.audit == nil {
		writeUnavailable(w, "audit service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), auditsvc.DefaultLimit)
	items, err := h.audit.ListRecent(r.Context(), limit)
	if err != nil {
		h.log.Error("list admin actions failed", zap.Error(err))
		writeInternal(w, httperrors.CodeInternal, "failed to load admin actions")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ItemsResponse[dto.AdminActionResponse]{
		Items: dto.MapSlice(items, dto.AdminActionFromModel),
	})
}
