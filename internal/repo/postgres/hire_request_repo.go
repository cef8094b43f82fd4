package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/gigboard/backend/internal/domain/model"
)

func (s *Store) CreateHireRequest(ctx context.Context, request model.HireRequest) (model.HireRequest, error) {
	if err := s.ready(); err != nil {
		return model.HireRequest{}, err
	}
	if strings.TrimSpace(request.ClientID) == "" || strings.TrimSpace(request.FreelancerID) == "" {
		return model.HireRequest{}, fmt.Errorf("invalid hire request payload")
	}

	created, err := hireRequestsTable.collectOne(s.pool.Query(ctx, `
INSERT INTO hire_requests (client_id, freelancer_id, service_id, message, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'pending', NOW(), NOW())
`+hireRequestsTable.returning(),
		request.ClientID,
		request.FreelancerID,
		request.ServiceID,
		strings.TrimSpace(request.Message),
	))
	if err != nil {
		return model.HireRequest{}, fmt.Errorf("create hire request: %w", err)
	}

	return created, nil
}

// ListHireRequestsForUser returns requests where the user is either side of the pair.
func (s *Store) ListHireRequestsForUser(ctx context.Context, userID string) ([]model.HireRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return []model.HireRequest{}, nil
	}

	return hireRequestsTable.collect(s.pool.Query(ctx, hireRequestsTable.selectFrom()+`
WHERE client_id = $1 OR freelancer_id = $1
ORDER BY created_at DESC, id DESC
`, userID))
}
