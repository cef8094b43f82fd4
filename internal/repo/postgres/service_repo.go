package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gigboard/backend/internal/domain/model"
)

func (s *Store) CreateService(ctx context.Context, service model.Service) (model.Service, error) {
	if err := s.ready(); err != nil {
		return model.Service{}, err
	}
	if strings.TrimSpace(service.FreelancerID) == "" || strings.TrimSpace(service.Title) == "" {
		return model.Service{}, fmt.Errorf("invalid service payload")
	}

	created, err := servicesTable.collectOne(s.pool.Query(ctx, `
INSERT INTO services (freelancer_id, title, description, category, price_cents, status, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 'pending', FALSE, NOW(), NOW())
`+servicesTable.returning(),
		service.FreelancerID,
		strings.TrimSpace(service.Title),
		strings.TrimSpace(service.Description),
		strings.TrimSpace(service.Category),
		service.PriceCents,
	))
	if err != nil {
		return model.Service{}, fmt.Errorf("create service: %w", err)
	}

	return created, nil
}

func (s *Store) GetService(ctx context.Context, serviceID int64) (model.Service, error) {
	if err := s.ready(); err != nil {
		return model.Service{}, err
	}
	if serviceID <= 0 {
		return model.Service{}, ErrNotFound
	}

	return servicesTable.collectOne(s.pool.Query(ctx, servicesTable.selectFrom()+`
WHERE id = $1
`, serviceID))
}

// ListPublicServices returns the catalog: approved and active listings only.
func (s *Store) ListPublicServices(ctx context.Context) ([]model.Service, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	return servicesTable.collect(s.pool.Query(ctx, servicesTable.selectFrom()+`
WHERE status = 'approved' AND is_active
ORDER BY created_at DESC, id DESC
`))
}

// SetServiceImage records the cover image key. Only pending listings accept a
// new image; anything else yields ErrNotFound.
func (s *Store) SetServiceImage(ctx context.Context, serviceID int64, imageKey string) (model.Service, error) {
	if err := s.ready(); err != nil {
		return model.Service{}, err
	}
	if serviceID <= 0 || strings.TrimSpace(imageKey) == "" {
		return model.Service{}, fmt.Errorf("invalid service image payload")
	}

	return servicesTable.collectOne(s.pool.Query(ctx, `
UPDATE services
SET image_key = $2, updated_at = NOW()
WHERE id = $1 AND status = 'pending'
`+servicesTable.returning(), serviceID, imageKey))
}

// ListRejectedServiceImages returns rejected listings that still hold a cover
// image and were last touched before cutoff.
func (s *Store) ListRejectedServiceImages(ctx context.Context, cutoff time.Time) ([]model.Service, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	return servicesTable.collect(s.pool.Query(ctx, servicesTable.selectFrom()+`
WHERE status = 'rejected' AND image_key IS NOT NULL AND updated_at < $1
ORDER BY updated_at ASC, id ASC
`, cutoff))
}

// ClearServiceImage drops the cover image key if it still equals imageKey.
func (s *Store) ClearServiceImage(ctx context.Context, serviceID int64, imageKey string) error {
	if err := s.ready(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
UPDATE services
SET image_key = NULL
WHERE id = $1 AND image_key = $2
`, serviceID, imageKey)
	if err != nil {
		return fmt.Errorf("clear service image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
