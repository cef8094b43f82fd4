package dto

import (
	"time"

	"github.com/gigboard/backend/internal/domain/model"
)

type CreateServiceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"priceCents"`
}

type CreateJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BudgetCents int64  `json:"budgetCents"`
}

type CreateHireRequestRequest struct {
	FreelancerID string `json:"freelancerId"`
	ServiceID    *int64 `json:"serviceId,omitempty"`
	Message      string `json:"message"`
}

type UserResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"fullName"`
	IsAdmin    bool       `json:"isAdmin"`
	Status     string     `json:"status"`
	ApprovedBy *string    `json:"approvedBy"`
	ApprovedAt *time.Time `json:"approvedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type ServiceResponse struct {
	ID              int64      `json:"id"`
	FreelancerID    string     `json:"freelancerId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	PriceCents      int64      `json:"priceCents"`
	ImageURL        *string    `json:"imageUrl,omitempty"`
	Status          string     `json:"status"`
	IsActive        bool       `json:"isActive"`
	ApprovedBy      *string    `json:"approvedBy"`
	ApprovedAt      *time.Time `json:"approvedAt"`
	RejectionReason *string    `json:"rejectionReason"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type JobResponse struct {
	ID          int64      `json:"id"`
	ClientID    string     `json:"clientId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	BudgetCents int64      `json:"budgetCents"`
	Status      string     `json:"status"`
	ApprovedBy  *string    `json:"approvedBy"`
	ApprovedAt  *time.Time `json:"approvedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type HireRequestResponse struct {
	ID            int64      `json:"id"`
	ClientID      string     `json:"clientId"`
	FreelancerID  string     `json:"freelancerId"`
	ServiceID     *int64     `json:"serviceId"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	AdminResponse *string    `json:"adminResponse"`
	ApprovedBy    *string    `json:"approvedBy"`
	ApprovedAt    *time.Time `json:"approvedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

// UserFromModel never exposes the password hash.
func UserFromModel(u model.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		IsAdmin:    u.IsAdmin,
		Status:     string(u.Status),
		ApprovedBy: u.ApprovedBy,
		ApprovedAt: u.ApprovedAt,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func ServiceFromModel(s model.Service) ServiceResponse {
	resp := ServiceResponse{
		ID:              s.ID,
		FreelancerID:    s.FreelancerID,
		Title:           s.Title,
		Description:     s.Description,
		Category:        s.Category,
		PriceCents:      s.PriceCents,
		Status:          string(s.Status),
		IsActive:        s.IsActive,
		ApprovedBy:      s.ApprovedBy,
		ApprovedAt:      s.ApprovedAt,
		RejectionReason: s.RejectionReason,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.ImageURL != "" {
		url := s.ImageURL
		resp.ImageURL = &url
	}
	return resp
}

func JobFromModel(j model.Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		ClientID:    j.ClientID,
		Title:       j.Title,
		Description: j.Description,
		BudgetCents: j.BudgetCents,
		Status:      string(j.Status),
		ApprovedBy:  j.ApprovedBy,
		ApprovedAt:  j.ApprovedAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func HireRequestFromModel(h model.HireRequest) HireRequestResponse {
	return HireRequestResponse{
		ID:            h.ID,
		ClientID:      h.ClientID,
		FreelancerID:  h.FreelancerID,
		ServiceID:     h.ServiceID,
		Message:       h.Message,
		Status:        string(h.Status),
		AdminResponse: h.AdminResponse,
		ApprovedBy:    h.ApprovedBy,
		ApprovedAt:    h.ApprovedAt,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}

func MapSlice[In, Out any](items []In, convert func(In) Out) []Out {
	out := make([]Out, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return out
}
