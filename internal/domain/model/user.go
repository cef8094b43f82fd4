package model

import (
	"time"

	"github.com/gigboard/backend/internal/domain/enums"
)

type User struct {
	ID           string                 `db:"id"`
	Email        string                 `db:"email"`
	PasswordHash string                 `db:"password_hash"`
	FullName     string                 `db:"full_name"`
	IsAdmin      bool                   `db:"is_admin"`
	Status       enums.ModerationStatus `db:"status"`
	ApprovedBy   *string                `db:"approved_by"`
	ApprovedAt   *time.Time             `db:"approved_at"`
	CreatedAt    time.Time              `db:"created_at"`
	UpdatedAt    time.Time              `db:"updated_at"`
}

func (u User) Kind() enums.EntityKind                { return enums.EntityKindUser }
func (u User) TargetID() string                      { return u.ID }
func (u User) CurrentStatus() enums.ModerationStatus { return u.Status }
