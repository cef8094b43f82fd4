package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gigboard/backend/internal/domain/model"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var ErrValidation = errors.New("validation error")

type Store interface {
	AppendAdminAction(ctx context.Context, action model.AdminAction) (model.AdminAction, error)
	ListAdminActions(ctx context.Context, limit int) ([]model.AdminAction, error)
}

// Service is the append-only admin action log.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Record(ctx context.Context, entry model.AdminAction) (model.AdminAction, error) {
	if s.store == nil {
		return model.AdminAction{}, fmt.Errorf("audit store is not configured")
	}
	if strings.TrimSpace(entry.AdminID) == "" || strings.TrimSpace(entry.Action) == "" || strings.TrimSpace(entry.TargetID) == "" {
		return model.AdminAction{}, ErrValidation
	}

	created, err := s.store.AppendAdminAction(ctx, entry)
	if err != nil {
		return model.AdminAction{}, fmt.Errorf("append admin action: %w", err)
	}
	return created, nil
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]model.AdminAction, error) {
	if s.store == nil {
		return nil, fmt.Errorf("audit store is not configured")
	}

	items, err := s.store.ListAdminActions(ctx, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list admin actions: %w", err)
	}
	return items, nil
}

func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
