package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/backend/internal/domain/enums"
	"github.com/gigboard/backend/internal/domain/model"
)

// ListPending returns every record of kind still waiting for a moderator, newest first.
func (s *Store) ListPending(ctx context.Context, kind enums.EntityKind) ([]model.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	switch kind {
	case enums.EntityKindUser:
		return listPending(ctx, s.pool, usersTable)
	case enums.EntityKindService:
		return listPending(ctx, s.pool, servicesTable)
	case enums.EntityKindJob:
		return listPending(ctx, s.pool, jobsTable)
	case enums.EntityKindHireRequest:
		return listPending(ctx, s.pool, hireRequestsTable)
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

func (s *Store) CountPending(ctx context.Context, kind enums.EntityKind) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	name, err := tableName(kind)
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+name+` WHERE status = 'pending'`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending %s: %w", name, err)
	}
	return count, nil
}

// ApplyTransition writes status, moderator stamp and the kind-specific columns
// in one UPDATE. It returns ErrNotFound when the row is missing and
// ErrInvalidTransition when the current status is not in t.From.
func (s *Store) ApplyTransition(ctx context.Context, t model.Transition) (model.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if t.To == "" || len(t.From) == 0 || strings.TrimSpace(t.AdminID) == "" {
		return nil, fmt.Errorf("invalid transition payload")
	}

	id, err := targetKey(t.Kind, t.ID)
	if err != nil {
		return nil, err
	}

	from := make([]string, 0, len(t.From))
	for _, status := range t.From {
		from = append(from, string(status))
	}
	args := []any{id, from, string(t.To), t.AdminID, nullTime(t.At)}

	var (
		record    model.Record
		updateErr error
	)
	switch t.Kind {
	case enums.EntityKindUser:
		record, updateErr = applyTransition(ctx, s.pool, usersTable, "", args)
	case enums.EntityKindService:
		record, updateErr = applyTransition(ctx, s.pool, servicesTable, `,
	is_active = COALESCE($6, is_active),
	rejection_reason = COALESCE($7, rejection_reason)`, append(args, t.Active, t.Note))
	case enums.EntityKindJob:
		record, updateErr = applyTransition(ctx, s.pool, jobsTable, "", args)
	case enums.EntityKindHireRequest:
		record, updateErr = applyTransition(ctx, s.pool, hireRequestsTable, `,
	admin_response = COALESCE($6, admin_response)`, append(args, t.Note))
	default:
		return nil, fmt.Errorf("unknown entity kind %q", t.Kind)
	}

	if updateErr == nil {
		return record, nil
	}
	if !errors.Is(updateErr, ErrNotFound) {
		return nil, updateErr
	}

	exists, err := s.exists(ctx, t.Kind, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrInvalidTransition
	}
	return nil, ErrNotFound
}

func (s *Store) exists(ctx context.Context, kind enums.EntityKind, id any) (bool, error) {
	name, err := tableName(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+name+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s existence: %w", name, err)
	}
	return exists, nil
}

func listPending[T model.Record](ctx context.Context, pool *pgxpool.Pool, t table[T]) ([]model.Record, error) {
	items, err := t.collect(pool.Query(ctx, t.selectFrom()+`
WHERE status = 'pending'
ORDER BY created_at DESC, id DESC
`))
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(items))
	for _, item := range items {
		records = append(records, item)
	}
	return records, nil
}

func applyTransition[T model.Record](ctx context.Context, pool *pgxpool.Pool, t table[T], extraSet string, args []any) (model.Record, error) {
	item, err := t.collectOne(pool.Query(ctx, `
UPDATE `+t.name+`
SET
	status = $3,
	approved_by = $4,
	approved_at = COALESCE($5, NOW()),
	updated_at = NOW()`+extraSet+`
WHERE id = $1 AND status = ANY($2)
`+t.returning(), args...))
	if err != nil {
		return nil, err
	}
	return item, nil
}

func tableName(kind enums.EntityKind) (string, error) {
	switch kind {
	case enums.EntityKindUser:
		return usersTable.name, nil
	case enums.EntityKindService:
		return servicesTable.name, nil
	case enums.EntityKindJob:
		return jobsTable.name, nil
	case enums.EntityKindHireRequest:
		return hireRequestsTable.name, nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
}

// targetKey converts the external id into the column type of the kind's table.
func targetKey(kind enums.EntityKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNotFound
	}
	if kind == enums.EntityKindUser {
		return raw, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrNotFound
	}
	return id, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	utc := t.UTC()
	return &utc
}
