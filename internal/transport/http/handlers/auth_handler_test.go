package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gigboard/backend/internal/domain/model"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
	redrepo "github.com/gigboard/backend/internal/repo/redis"
	authsvc "github.com/gigboard/backend/internal/services/auth"
	ratesvc "github.com/gigboard/backend/internal/services/rate"
	"github.com/gigboard/backend/internal/transport/http/dto"
	httperrors "github.com/gigboard/backend/internal/transport/http/errors"
)

type authUsersStub struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (s *authUsersStub) CreateUser(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return model.User{}, pgrepo.ErrDuplicate
		}
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *authUsersStub) GetUserByID(_ context.Context, userID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrNotFound
	}
	return user, nil
}

func (s *authUsersStub) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == strings.ToLower(email) {
			return user, nil
		}
	}
	return model.User{}, pgrepo.ErrNotFound
}

func (s *authUsersStub) UpsertAdmin(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.IsAdmin = true
	s.users[user.ID] = user
	return user, nil
}

func newAuthHandlerForTest(t *testing.T, loginPerMinute int) *AuthHandler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	service := authsvc.NewService(
		authsvc.NewJWTManager("test-secret", 15*time.Minute),
		redrepo.NewSessionRepo(client),
		&authUsersStub{users: map[string]model.User{}},
		720*time.Hour,
	)
	var limiter *ratesvc.Limiter
	if loginPerMinute > 0 {
		limiter = ratesvc.NewLimiter(redrepo.NewRateRepo(client), loginPerMinute, 0)
	}
	return NewAuthHandler(service, limiter, zap.NewNop())
}

func TestRegisterThenLogin(t *testing.T) {
	handler := newAuthHandlerForTest(t, 0)

	body := `{"email":"Dev@Example.com","password":"s3cret-pass","fullName":"Dev One"}`
	rr := httptest.NewRecorder()
	handler.Register(rr, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: got %d want %d body=%s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var me dto.MeResponse
	if err := json.NewDecoder(rr.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID == "" || me.Email != "dev@example.com" || me.Status != "pending" || me.IsAdmin {
		t.Fatalf("unexpected registered user: %+v", me)
	}

	rr = httptest.NewRecorder()
	handler.Register(rr, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register: got %d want %d", rr.Code, http.StatusConflict)
	}

	rr = httptest.NewRecorder()
	handler.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"dev@example.com","password":"wrong-pass"}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: got %d want %d", rr.Code, http.StatusUnauthorized)
	}

	rr = httptest.NewRecorder()
	handler.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"dev@example.com","password":"s3cret-pass"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("login: got %d want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var tokens dto.AuthTokensResponse
	if err := json.NewDecoder(rr.Body).Decode(&tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" || tokens.Me.ID != me.ID {
		t.Fatalf("unexpected tokens response: %+v", tokens)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	handler := newAuthHandlerForTest(t, 0)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"email":`},
		{name: "unknown field", body: `{"email":"a@b.co","password":"long-enough","role":"admin"}`},
		{name: "bad email", body: `{"email":"not-an-email","password":"long-enough"}`},
		{name: "short password", body: `{"email":"a@b.co","password":"short"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.Register(rr, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tc.body)))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
			}
			var apiErr httperrors.APIError
			if err := json.NewDecoder(rr.Body).Decode(&apiErr); err != nil || apiErr.Code != httperrors.CodeValidation {
				t.Fatalf("unexpected error body: %+v err=%v", apiErr, err)
			}
		})
	}
}

func TestLoginIsThrottledPerEmail(t *testing.T) {
	handler := newAuthHandlerForTest(t, 2)

	rr := httptest.NewRecorder()
	handler.Register(rr, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"slow@example.com","password":"s3cret-pass"}`)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: got %d want %d", rr.Code, http.StatusCreated)
	}

	badLogin := `{"email":"slow@example.com","password":"wrong-pass"}`
	for i := 0; i < 2; i++ {
		rr = httptest.NewRecorder()
		handler.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(badLogin)))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt #%d: got %d want %d", i+1, rr.Code, http.StatusUnauthorized)
		}
	}

	rr = httptest.NewRecorder()
	handler.Login(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"slow@example.com","password":"s3cret-pass"}`)))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	var apiErr httperrors.APIError
	if err := json.NewDecoder(rr.Body).Decode(&apiErr); err != nil || apiErr.Code != httperrors.CodeTooManyRequests {
		t.Fatalf("unexpected error body: %+v err=%v", apiErr, err)
	}
}
