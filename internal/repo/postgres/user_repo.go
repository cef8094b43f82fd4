package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gigboard/backend/internal/domain/model"
)

const uniqueViolation = "23505"

func (s *Store) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	if err := s.ready(); err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}

	created, err := usersTable.collectOne(s.pool.Query(ctx, `
INSERT INTO users (id, email, password_hash, full_name, is_admin, status, created_at, updated_at)
VALUES ($1, LOWER($2), $3, $4, $5, $6, NOW(), NOW())
`+usersTable.returning(),
		user.ID, strings.TrimSpace(user.Email), user.PasswordHash, strings.TrimSpace(user.FullName), user.IsAdmin, string(user.Status)))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	if err := s.ready(); err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return model.User{}, ErrNotFound
	}

	return usersTable.collectOne(s.pool.Query(ctx, usersTable.selectFrom()+`
WHERE id = $1
`, userID))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	if err := s.ready(); err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(email) == "" {
		return model.User{}, ErrNotFound
	}

	return usersTable.collectOne(s.pool.Query(ctx, usersTable.selectFrom()+`
WHERE email = LOWER($1)
`, strings.TrimSpace(email)))
}

// UpsertAdmin creates or refreshes the bootstrap administrator. An existing
// account with the same email is promoted and approved.
func (s *Store) UpsertAdmin(ctx context.Context, user model.User) (model.User, error) {
	if err := s.ready(); err != nil {
		return model.User{}, err
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" || user.PasswordHash == "" {
		return model.User{}, fmt.Errorf("invalid admin payload")
	}

	admin, err := usersTable.collectOne(s.pool.Query(ctx, `
INSERT INTO users (id, email, password_hash, full_name, is_admin, status, approved_by, approved_at, created_at, updated_at)
VALUES ($1, LOWER($2), $3, $4, TRUE, 'approved', $1, NOW(), NOW(), NOW())
ON CONFLICT (email) DO UPDATE SET
	password_hash = EXCLUDED.password_hash,
	full_name = COALESCE(NULLIF(EXCLUDED.full_name, ''), users.full_name),
	is_admin = TRUE,
	status = 'approved',
	approved_by = COALESCE(users.approved_by, users.id),
	approved_at = COALESCE(users.approved_at, NOW()),
	updated_at = NOW()
`+usersTable.returning(),
		user.ID, strings.TrimSpace(user.Email), user.PasswordHash, strings.TrimSpace(user.FullName)))
	if err != nil {
		return model.User{}, fmt.Errorf("upsert admin user: %w", err)
	}

	return admin, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
