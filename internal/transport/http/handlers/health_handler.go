package handlers

import (
	"net/http"

	"github.com/gigboard/backend/internal/transport/http/dto"
	httperrors "github.com/gigboard/backend/internal/transport/http/errors"
)

func Healthz(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}
