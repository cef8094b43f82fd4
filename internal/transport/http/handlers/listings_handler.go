package handlers

import (
	"errors"
	"net/http"

	listingssvc "github.com/gigboard/backend/internal/services/listings"
	"github.com/gigboard/backend/internal/transport/http/dto"
	httperrors "github.com/gigboard/backend/internal/transport/http/errors"
)

type ListingsHandler struct {
	service *listingssvc.Service
}

func NewListingsHandler(service *listingssvc.Service) *ListingsHandler {
	return &ListingsHandler{service: service}
}

func (h *ListingsHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "listings service is unavailable")
		return
	}

	items, err := h.service.ListPublicServices(r.Context())
	if err != nil {
		handleListingsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ItemsResponse[dto.ServiceResponse]{
		Items: dto.MapSlice(items, dto.ServiceFromModel),
	})
}

func (h *ListingsHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "listings service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.CreateServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	created, err := h.service.CreateService(r.Context(), identity.UserID, listingssvc.NewServiceInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
	})
	if err != nil {
		handleListingsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.ServiceFromModel(created))
}

func (h *ListingsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "listings service is unavailable")
		return
	}

	items, err := h.service.ListOpenJobs(r.Context())
	if err != nil {
		handleListingsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ItemsResponse[dto.JobResponse]{
		Items: dto.MapSlice(items, dto.JobFromModel),
	})
}

func (h *ListingsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "listings service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	created, err := h.service.CreateJob(r.Context(), identity.UserID, listingssvc.NewJobInput{
		Title:       req.Title,
		Description: req.Description,
		BudgetCents: req.BudgetCents,
	})
	if err != nil {
		handleListingsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.JobFromModel(created))
}

func (h *ListingsHandler) CreateHireRequest(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "listings service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.CreateHireRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeValidation, "invalid request body")
		return
	}

	created, err := h.service.CreateHireRequest(r.Context(), identity.UserID, listingssvc.NewHireRequestInput{
		FreelancerID: req.FreelancerID,
		ServiceID:    req.ServiceID,
		Message:      req.Message,
	})
	if err != nil {
		handleListingsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.HireRequestFromModel(created))
}

func (h *ListingsHandler) ListMyHireRequests(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "listings service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListMyHireRequests(r.Context(), identity.UserID)
	if err != nil {
		handleListingsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ItemsResponse[dto.HireRequestResponse]{
		Items: dto.MapSlice(items, dto.HireRequestFromModel),
	})
}

func handleListingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, listingssvc.ErrValidation):
		writeBadRequest(w, httperrors.CodeValidation, "request validation failed")
	case errors.Is(err, listingssvc.ErrForbidden):
		writeForbidden(w, httperrors.CodeForbidden, "account is awaiting approval")
	default:
		writeInternal(w, httperrors.CodeInternal, "internal server error")
	}
}
