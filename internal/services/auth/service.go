package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/backend/internal/domain/enums"
	"github.com/gigboard/backend/internal/domain/model"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
)

const (
	MinRefreshTTL = 7 * 24 * time.Hour
	MaxRefreshTTL = 90 * 24 * time.Hour
)

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	GetByRefreshDigest(ctx context.Context, digest string) (SessionRecord, error)
	RotateRefresh(ctx context.Context, sid, oldDigest, newDigest string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	SetUserStatus(ctx context.Context, userID string, status enums.ModerationStatus) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	UpsertAdmin(ctx context.Context, user model.User) (model.User, error)
}

type Service struct {
	jwt        *JWTManager
	sessions   SessionStore
	users      UserStore
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(jwtManager *JWTManager, sessions SessionStore, users UserStore, refreshTTL time.Duration) *Service {
	if refreshTTL < MinRefreshTTL {
		refreshTTL = MinRefreshTTL
	}
	if refreshTTL > MaxRefreshTTL {
		refreshTTL = MaxRefreshTTL
	}

	return &Service{
		jwt:        jwtManager,
		sessions:   sessions,
		users:      users,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Register creates a user account awaiting moderation. The account can log in
// right away but cannot publish listings until an admin approves it.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (Me, error) {
	if s.users == nil {
		return Me{}, fmt.Errorf("user store is nil")
	}

	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Me{}, ErrInvalidInput
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return Me{}, ErrInvalidInput
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Me{}, err
	}

	user, err := s.users.CreateUser(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Status:       enums.ModerationStatusPending,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrDuplicate) {
			return Me{}, ErrEmailTaken
		}
		return Me{}, fmt.Errorf("create user: %w", err)
	}

	return meFromUser(user), nil
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if s.users == nil {
		return AuthResult{}, fmt.Errorf("user store is nil")
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("get user by email: %w", err)
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return AuthResult{}, err
	}
	if user.Status.LocksAccount() {
		return AuthResult{}, ErrUnauthorized
	}

	result, err := s.issueForUser(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	result.Me = meFromUser(user)
	return result, nil
}

func (s *Service) Me(ctx context.Context, userID string) (Me, error) {
	if s.users == nil {
		return Me{}, fmt.Errorf("user store is nil")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return Me{}, ErrUnauthorized
		}
		return Me{}, fmt.Errorf("get user: %w", err)
	}
	return meFromUser(user), nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidInput
	}

	digest := refreshDigest(refreshToken)
	session, err := s.sessions.GetByRefreshDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("get refresh token session: %w", err)
	}
	if s.now().After(session.ExpiresAt) || session.Status.LocksAccount() {
		return AuthResult{}, ErrUnauthorized
	}

	newToken, newDigest, err := newRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.sessions.RotateRefresh(ctx, session.SID, digest, newDigest, s.now().Add(s.refreshTTL)); err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(session.UserID, session.SID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  newToken,
		AccessExpires: accessExpires,
		Me:            Me{ID: session.UserID, Status: session.Status},
	}, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID || session.Status.LocksAccount() {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}

// SyncAccountStatus pushes a moderation decision on a user into their live
// sessions. A locked account loses every session; any other status is
// copied onto them.
func (s *Service) SyncAccountStatus(ctx context.Context, userID string, status enums.ModerationStatus) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	if status.LocksAccount() {
		if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		return nil
	}
	if err := s.sessions.SetUserStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// BootstrapAdmin makes sure an approved admin account exists for email.
// Callers decide when it runs; the service keeps no "already done" state.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password, fullName string) (Me, error) {
	if s.users == nil {
		return Me{}, fmt.Errorf("user store is nil")
	}

	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Me{}, ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Me{}, err
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = "Administrator"
	}

	admin, err := s.users.UpsertAdmin(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
	})
	if err != nil {
		return Me{}, fmt.Errorf("upsert admin: %w", err)
	}
	return meFromUser(admin), nil
}

func (s *Service) issueForUser(ctx context.Context, user model.User) (AuthResult, error) {
	refreshToken, digest, err := newRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	session := SessionRecord{
		SID:           newSessionID(),
		UserID:        user.ID,
		Status:        user.Status,
		RefreshDigest: digest,
		ExpiresAt:     s.now().Add(s.refreshTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(user.ID, session.SID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpires: accessExpires,
	}, nil
}

func meFromUser(user model.User) Me {
	return Me{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		IsAdmin:  user.IsAdmin,
		Status:   user.Status,
	}
}
