package auth

import (
	"errors"
	"time"

	"github.com/gigboard/backend/internal/domain/enums"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRefreshNotFound    = errors.New("refresh token not found")
)

// SessionRecord is one login. Status mirrors the account's moderation status
// so a locked account is refused without a Postgres round trip.
type SessionRecord struct {
	SID           string
	UserID        string
	Status        enums.ModerationStatus
	RefreshDigest string
	ExpiresAt     time.Time
}

type AccessClaims struct {
	UserID    string
	SID       string
	ExpiresAt time.Time
}

type Me struct {
	ID       string
	Email    string
	FullName string
	IsAdmin  bool
	Status   enums.ModerationStatus
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
