package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	mediasvc "github.com/gigboard/backend/internal/services/media"
	"github.com/gigboard/backend/internal/transport/http/dto"
	httperrors "github.com/gigboard/backend/internal/transport/http/errors"
)

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

// UploadServiceImage takes the raw image as the request body.
func (h *MediaHandler) UploadServiceImage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeUnavailable(w, "media service is unavailable")
		return
	}

	serviceID, ok := int64URLParam(r, "id")
	if !ok {
		writeBadRequest(w, httperrors.CodeValidation, "invalid service id")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, mediasvc.MaxImageBytes))
	if err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "image is too large")
		return
	}
	if len(body) == 0 {
		writeBadRequest(w, httperrors.CodeValidation, "image is empty")
		return
	}

	updated, err := h.service.UploadServiceImage(r.Context(), identity.UserID, serviceID, r.Header.Get("Content-Type"), bytes.NewReader(body), int64(len(body)))
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ServiceFromModel(updated))
}

func handleMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, httperrors.CodeValidation, "invalid image upload")
	case errors.Is(err, mediasvc.ErrUnsupported):
		httperrors.WriteError(w, http.StatusUnsupportedMediaType, httperrors.CodeUnsupportedMedia, "image must be jpeg, png or webp")
	case errors.Is(err, mediasvc.ErrNotFound):
		writeNotFound(w, httperrors.CodeNotFound, "service not found")
	case errors.Is(err, mediasvc.ErrForbidden):
		writeForbidden(w, httperrors.CodeForbidden, "service belongs to another user")
	case errors.Is(err, mediasvc.ErrNotPending):
		writeConflict(w, httperrors.CodeInvalidTransition, "service has already been moderated")
	default:
		writeInternal(w, httperrors.CodeInternal, "internal server error")
	}
}
