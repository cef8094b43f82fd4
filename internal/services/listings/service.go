package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gigboard/backend/internal/domain/enums"
	"github.com/gigboard/backend/internal/domain/model"
	"github.com/gigboard/backend/internal/pkg/validate"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	maxMessageLen     = 2000
	maxCategoryLen    = 100
)

var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("account is not approved")
)

type Store interface {
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	GetService(ctx context.Context, serviceID int64) (model.Service, error)
	CreateService(ctx context.Context, service model.Service) (model.Service, error)
	CreateJob(ctx context.Context, job model.Job) (model.Job, error)
	CreateHireRequest(ctx context.Context, request model.HireRequest) (model.HireRequest, error)
	ListPublicServices(ctx context.Context) ([]model.Service, error)
	ListOpenJobs(ctx context.Context) ([]model.Job, error)
	ListHireRequestsForUser(ctx context.Context, userID string) ([]model.HireRequest, error)
}

type ImageSigner interface {
	SignServices(ctx context.Context, services []model.Service) []model.Service
}

type Service struct {
	store  Store
	signer ImageSigner
}

type NewServiceInput struct {
	Title       string
	Description string
	Category    string
	PriceCents  int64
}

type NewJobInput struct {
	Title       string
	Description string
	BudgetCents int64
}

type NewHireRequestInput struct {
	FreelancerID string
	ServiceID    *int64
	Message      string
}

func NewService(store Store, signer ImageSigner) *Service {
	return &Service{store: store, signer: signer}
}

func (s *Service) CreateService(ctx context.Context, ownerID string, in NewServiceInput) (model.Service, error) {
	if err := validateText(in.Title, in.Description); err != nil {
		return model.Service{}, err
	}
	if in.PriceCents < 0 || !validate.MaxRunes(strings.TrimSpace(in.Category), maxCategoryLen) {
		return model.Service{}, ErrValidation
	}
	if err := s.requireApproved(ctx, ownerID); err != nil {
		return model.Service{}, err
	}

	created, err := s.store.CreateService(ctx, model.Service{
		FreelancerID: ownerID,
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		PriceCents:   in.PriceCents,
	})
	if err != nil {
		return model.Service{}, fmt.Errorf("create service: %w", err)
	}
	return created, nil
}

func (s *Service) CreateJob(ctx context.Context, ownerID string, in NewJobInput) (model.Job, error) {
	if err := validateText(in.Title, in.Description); err != nil {
		return model.Job{}, err
	}
	if in.BudgetCents < 0 {
		return model.Job{}, ErrValidation
	}
	if err := s.requireApproved(ctx, ownerID); err != nil {
		return model.Job{}, err
	}

	created, err := s.store.CreateJob(ctx, model.Job{
		ClientID:    ownerID,
		Title:       in.Title,
		Description: in.Description,
		BudgetCents: in.BudgetCents,
	})
	if err != nil {
		return model.Job{}, fmt.Errorf("create job: %w", err)
	}
	return created, nil
}

func (s *Service) CreateHireRequest(ctx context.Context, clientID string, in NewHireRequestInput) (model.HireRequest, error) {
	in.FreelancerID = strings.TrimSpace(in.FreelancerID)
	if in.FreelancerID == "" || in.FreelancerID == clientID || !validate.MaxRunes(in.Message, maxMessageLen) {
		return model.HireRequest{}, ErrValidation
	}
	if err := s.requireApproved(ctx, clientID); err != nil {
		return model.HireRequest{}, err
	}

	freelancer, err := s.store.GetUserByID(ctx, in.FreelancerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return model.HireRequest{}, ErrValidation
		}
		return model.HireRequest{}, fmt.Errorf("get freelancer: %w", err)
	}
	if freelancer.Status != enums.ModerationStatusApproved {
		return model.HireRequest{}, ErrValidation
	}

	if in.ServiceID != nil {
		service, err := s.store.GetService(ctx, *in.ServiceID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrNotFound) {
				return model.HireRequest{}, ErrValidation
			}
			return model.HireRequest{}, fmt.Errorf("get service: %w", err)
		}
		if service.FreelancerID != freelancer.ID {
			return model.HireRequest{}, ErrValidation
		}
	}

	created, err := s.store.CreateHireRequest(ctx, model.HireRequest{
		ClientID:     clientID,
		FreelancerID: freelancer.ID,
		ServiceID:    in.ServiceID,
		Message:      in.Message,
	})
	if err != nil {
		return model.HireRequest{}, fmt.Errorf("create hire request: %w", err)
	}
	return created, nil
}

func (s *Service) ListPublicServices(ctx context.Context) ([]model.Service, error) {
	items, err := s.store.ListPublicServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public services: %w", err)
	}
	items = visibleOnly(items)
	if s.signer != nil {
		items = s.signer.SignServices(ctx, items)
	}
	return items, nil
}

func (s *Service) ListOpenJobs(ctx context.Context) ([]model.Job, error) {
	items, err := s.store.ListOpenJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open jobs: %w", err)
	}
	return visibleOnly(items), nil
}

func (s *Service) ListMyHireRequests(ctx context.Context, userID string) ([]model.HireRequest, error) {
	if !validate.Required(userID) {
		return nil, ErrValidation
	}

	items, err := s.store.ListHireRequestsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list hire requests: %w", err)
	}
	return items, nil
}

func (s *Service) requireApproved(ctx context.Context, userID string) error {
	if !validate.Required(userID) {
		return ErrValidation
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("get owner: %w", err)
	}
	if user.Status != enums.ModerationStatusApproved {
		return ErrForbidden
	}
	return nil
}

func validateText(title, description string) error {
	if !validate.Text(title, maxTitleLen) || !validate.MaxRunes(description, maxDescriptionLen) {
		return ErrValidation
	}
	return nil
}

// visibleOnly keeps only rows fit for the public catalog, whatever the store returned.
func visibleOnly[T interface{ Visible() bool }](items []T) []T {
	out := items[:0]
	for _, item := range items {
		if item.Visible() {
			out = append(out, item)
		}
	}
	return out
}
