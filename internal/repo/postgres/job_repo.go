package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/gigboard/backend/internal/domain/model"
)

func (s *Store) CreateJob(ctx context.Context, job model.Job) (model.Job, error) {
	if err := s.ready(); err != nil {
		return model.Job{}, err
	}
	if strings.TrimSpace(job.ClientID) == "" || strings.TrimSpace(job.Title) == "" {
		return model.Job{}, fmt.Errorf("invalid job payload")
	}

	created, err := jobsTable.collectOne(s.pool.Query(ctx, `
INSERT INTO jobs (client_id, title, description, budget_cents, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'pending', NOW(), NOW())
`+jobsTable.returning(),
		job.ClientID,
		strings.TrimSpace(job.Title),
		strings.TrimSpace(job.Description),
		job.BudgetCents,
	))
	if err != nil {
		return model.Job{}, fmt.Errorf("create job: %w", err)
	}

	return created, nil
}

func (s *Store) ListOpenJobs(ctx context.Context) ([]model.Job, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	return jobsTable.collect(s.pool.Query(ctx, jobsTable.selectFrom()+`
WHERE status = 'open'
ORDER BY created_at DESC, id DESC
`))
}
