package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gigboard/backend/internal/domain/enums"
	"github.com/gigboard/backend/internal/domain/model"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
	auditsvc "github.com/gigboard/backend/internal/services/audit"
	authsvc "github.com/gigboard/backend/internal/services/auth"
	modsvc "github.com/gigboard/backend/internal/services/moderation"
	"github.com/gigboard/backend/internal/transport/http/dto"
	httperrors "github.com/gigboard/backend/internal/transport/http/errors"
)

type moderationStoreStub struct {
	mu       sync.Mutex
	users    map[string]model.User
	services map[int64]model.Service
	jobs     map[int64]model.Job
	hires    map[int64]model.HireRequest
	actions  []model.AdminAction
}

func newModerationStoreStub() *moderationStoreStub {
	return &moderationStoreStub{
		users:    map[string]model.User{},
		services: map[int64]model.Service{},
		jobs:     map[int64]model.Job{},
		hires:    map[int64]model.HireRequest{},
	}
}

func (s *moderationStoreStub) ListPending(_ context.Context, kind enums.EntityKind) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Record
	add := func(r model.Record) {
		if r.CurrentStatus() == enums.ModerationStatusPending {
			out = append(out, r)
		}
	}
	switch kind {
	case enums.EntityKindUser:
		for _, v := range s.users {
			add(v)
		}
	case enums.EntityKindService:
		for _, v := range s.services {
			add(v)
		}
	case enums.EntityKindJob:
		for _, v := range s.jobs {
			add(v)
		}
	case enums.EntityKindHireRequest:
		for _, v := range s.hires {
			add(v)
		}
	}
	return out, nil
}

func (s *moderationStoreStub) CountPending(ctx context.Context, kind enums.EntityKind) (int, error) {
	items, err := s.ListPending(ctx, kind)
	return len(items), err
}

func (s *moderationStoreStub) ApplyTransition(_ context.Context, t model.Transition) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, at := t.AdminID, t.At
	id, _ := strconv.ParseInt(t.ID, 10, 64)
	switch t.Kind {
	case enums.EntityKindUser:
		u, ok := s.users[t.ID]
		if !ok {
			return nil, pgrepo.ErrNotFound
		}
		if !slices.Contains(t.From, u.Status) {
			return nil, pgrepo.ErrInvalidTransition
		}
		u.Status, u.ApprovedBy, u.ApprovedAt = t.To, &admin, &at
		s.users[t.ID] = u
		return u, nil
	case enums.EntityKindService:
		v, ok := s.services[id]
		if !ok {
			return nil, pgrepo.ErrNotFound
		}
		if !slices.Contains(t.From, v.Status) {
			return nil, pgrepo.ErrInvalidTransition
		}
		v.Status, v.ApprovedBy, v.ApprovedAt = t.To, &admin, &at
		if t.Active != nil {
			v.IsActive = *t.Active
		}
		if t.Note != nil {
			v.RejectionReason = t.Note
		}
		s.services[id] = v
		return v, nil
	case enums.EntityKindJob:
		v, ok := s.jobs[id]
		if !ok {
			return nil, pgrepo.ErrNotFound
		}
		if !slices.Contains(t.From, v.Status) {
			return nil, pgrepo.ErrInvalidTransition
		}
		v.Status, v.ApprovedBy, v.ApprovedAt = t.To, &admin, &at
		s.jobs[id] = v
		return v, nil
	case enums.EntityKindHireRequest:
		v, ok := s.hires[id]
		if !ok {
			return nil, pgrepo.ErrNotFound
		}
		if !slices.Contains(t.From, v.Status) {
			return nil, pgrepo.ErrInvalidTransition
		}
		v.Status, v.ApprovedBy, v.ApprovedAt = t.To, &admin, &at
		if t.Note != nil {
			v.AdminResponse = t.Note
		}
		s.hires[id] = v
		return v, nil
	}
	return nil, pgrepo.ErrNotFound
}

func (s *moderationStoreStub) AppendAdminAction(_ context.Context, action model.AdminAction) (model.AdminAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action.ID = int64(len(s.actions) + 1)
	s.actions = append(s.actions, action)
	return action, nil
}

func (s *moderationStoreStub) ListAdminActions(_ context.Context, limit int) ([]model.AdminAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.AdminAction, 0, len(s.actions))
	for i := len(s.actions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.actions[i])
	}
	return out, nil
}

var kindSegments = map[enums.EntityKind]string{
	enums.EntityKindUser:        "users",
	enums.EntityKindService:     "services",
	enums.EntityKindJob:         "jobs",
	enums.EntityKindHireRequest: "hire-requests",
}

func newAdminRouter(store *moderationStoreStub) http.Handler {
	audit := auditsvc.NewService(store)
	moderation := NewModerationHandler(modsvc.NewService(store, audit, nil, zap.NewNop()), zap.NewNop())
	admin := NewAdminHandler(audit, zap.NewNop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{UserID: "admin-1", SID: "sid-1", IsAdmin: true})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	for kind, segment := range kindSegments {
		r.Get("/api/admin/pending-"+segment, moderation.ListPending(kind))
		r.Post("/api/admin/"+segment+"/{id}/approve", moderation.Approve(kind))
		r.Post("/api/admin/"+segment+"/{id}/reject", moderation.Reject(kind))
	}
	r.Get("/api/admin/pending-summary", moderation.PendingSummary)
	r.Get("/api/admin/actions", admin.Actions)
	return r
}

func TestApproveJobEndpoint(t *testing.T) {
	store := newModerationStoreStub()
	store.jobs[42] = model.Job{ID: 42, ClientID: "client-1", Title: "Landing page", Status: enums.ModerationStatusPending}
	router := newAdminRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/jobs/42/approve", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp dto.JobResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "open" || resp.ApprovedBy == nil || *resp.ApprovedBy != "admin-1" || resp.ApprovedAt == nil {
		t.Fatalf("unexpected job response: %+v", resp)
	}

	actionsReq := httptest.NewRequest(http.MethodGet, "/api/admin/actions?limit=10", nil)
	actionsRR := httptest.NewRecorder()
	router.ServeHTTP(actionsRR, actionsReq)

	var actions dto.ItemsResponse[dto.AdminActionResponse]
	if err := json.NewDecoder(actionsRR.Body).Decode(&actions); err != nil {
		t.Fatalf("decode actions: %v", err)
	}
	if len(actions.Items) != 1 {
		t.Fatalf("expected one admin action, got %d", len(actions.Items))
	}
	got := actions.Items[0]
	if got.Action != "approve_job" || got.TargetType != "job" || got.TargetID != "42" || got.AdminID != "admin-1" {
		t.Fatalf("unexpected admin action: %+v", got)
	}
}

func TestRejectJobEndpointErrors(t *testing.T) {
	store := newModerationStoreStub()
	store.jobs[7] = model.Job{ID: 7, Status: enums.ModerationStatusOpen}
	router := newAdminRouter(store)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "malformed id", path: "/api/admin/jobs/abc/reject", wantCode: http.StatusBadRequest, wantErr: httperrors.CodeValidation},
		{name: "missing job", path: "/api/admin/jobs/999/reject", wantCode: http.StatusNotFound, wantErr: httperrors.CodeNotFound},
		{name: "already open", path: "/api/admin/jobs/7/reject", body: `{"reason":"late"}`, wantCode: http.StatusConflict, wantErr: httperrors.CodeInvalidTransition},
		{name: "malformed json", path: "/api/admin/jobs/7/reject", body: `{"reason":`, wantCode: http.StatusBadRequest, wantErr: httperrors.CodeValidation},
		{name: "unknown field", path: "/api/admin/jobs/7/reject", body: `{"why":"x"}`, wantCode: http.StatusBadRequest, wantErr: httperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, tt.wantCode, rr.Body.String())
			}
			var apiErr httperrors.APIError
			if err := json.NewDecoder(rr.Body).Decode(&apiErr); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if apiErr.Code != tt.wantErr || apiErr.Message == "" {
				t.Fatalf("unexpected error body: %+v", apiErr)
			}
		})
	}

	if len(store.actions) != 0 {
		t.Fatalf("failed decisions must not be audited, got %d", len(store.actions))
	}
}

func TestPendingJobsAndSummary(t *testing.T) {
	store := newModerationStoreStub()
	store.jobs[1] = model.Job{ID: 1, Status: enums.ModerationStatusPending}
	store.jobs[2] = model.Job{ID: 2, Status: enums.ModerationStatusOpen}
	store.users["u-1"] = model.User{ID: "u-1", Status: enums.ModerationStatusPending, PasswordHash: "secret-hash"}
	router := newAdminRouter(store)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/pending-jobs", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var pending struct {
		Items []dto.JobResponse `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&pending); err != nil {
		t.Fatalf("decode pending jobs: %v", err)
	}
	if len(pending.Items) != 1 || pending.Items[0].ID != 1 {
		t.Fatalf("unexpected pending jobs: %+v", pending.Items)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/pending-summary", nil))
	var summary dto.PendingSummaryResponse
	if err := json.NewDecoder(rr.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Jobs != 1 || summary.Users != 1 || summary.Total != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestDecisionEndpointsForEveryKind(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want map[string]any
	}{
		{
			name: "approve user",
			path: "/api/admin/users/u-1/approve",
			want: map[string]any{"id": "u-1", "status": "approved", "approvedBy": "admin-1"},
		},
		{
			name: "approve service activates it",
			path: "/api/admin/services/10/approve",
			want: map[string]any{"status": "approved", "isActive": true},
		},
		{
			name: "reject service stores reason",
			path: "/api/admin/services/11/reject",
			body: `{"reason":"blurry cover"}`,
			want: map[string]any{"status": "rejected", "isActive": false, "rejectionReason": "blurry cover"},
		},
		{
			name: "reject job closes it",
			path: "/api/admin/jobs/20/reject",
			want: map[string]any{"status": "closed"},
		},
		{
			name: "approve hire request prefers response",
			path: "/api/admin/hire-requests/30/approve",
			body: `{"reason":"ignored","response":"go ahead"}`,
			want: map[string]any{"status": "approved", "adminResponse": "go ahead"},
		},
		{
			name: "reject hire request falls back to reason",
			path: "/api/admin/hire-requests/31/reject",
			body: `{"reason":"off platform payment"}`,
			want: map[string]any{"status": "rejected", "adminResponse": "off platform payment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newModerationStoreStub()
			store.users["u-1"] = model.User{ID: "u-1", Email: "u@example.com", Status: enums.ModerationStatusPending}
			store.services[10] = model.Service{ID: 10, Status: enums.ModerationStatusPending}
			store.services[11] = model.Service{ID: 11, Status: enums.ModerationStatusPending, IsActive: true}
			store.jobs[20] = model.Job{ID: 20, Status: enums.ModerationStatusPending}
			store.hires[30] = model.HireRequest{ID: 30, Status: enums.ModerationStatusPending}
			store.hires[31] = model.HireRequest{ID: 31, Status: enums.ModerationStatusPending}
			router := newAdminRouter(store)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
			}
			var got map[string]any
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			for field, want := range tt.want {
				if got[field] != want {
					t.Fatalf("field %s: got %v want %v (body %v)", field, got[field], want, got)
				}
			}
			if _, leaked := got["passwordHash"]; leaked {
				t.Fatalf("password hash must never be serialized")
			}
			if len(store.actions) != 1 {
				t.Fatalf("expected one audit entry, got %d", len(store.actions))
			}
		})
	}
}

func TestDecisionEndpointsRejectBadTargets(t *testing.T) {
	router := newAdminRouter(newModerationStoreStub())

	type badTarget struct {
		path     string
		wantCode int
		wantErr  string
	}
	tests := []badTarget{
		{path: "/api/admin/users/missing/approve", wantCode: http.StatusNotFound, wantErr: httperrors.CodeNotFound},
	}
	for _, segment := range []string{"services", "jobs", "hire-requests"} {
		tests = append(tests,
			badTarget{path: "/api/admin/" + segment + "/abc/approve", wantCode: http.StatusBadRequest, wantErr: httperrors.CodeValidation},
			badTarget{path: "/api/admin/" + segment + "/0/reject", wantCode: http.StatusBadRequest, wantErr: httperrors.CodeValidation},
			badTarget{path: "/api/admin/" + segment + "/999/approve", wantCode: http.StatusNotFound, wantErr: httperrors.CodeNotFound},
		)
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, tt.path, nil))

			if rr.Code != tt.wantCode {
				t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, tt.wantCode, rr.Body.String())
			}
			var apiErr httperrors.APIError
			if err := json.NewDecoder(rr.Body).Decode(&apiErr); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if apiErr.Code != tt.wantErr {
				t.Fatalf("unexpected error code: %+v", apiErr)
			}
		})
	}
}

func TestPendingListsForEveryKind(t *testing.T) {
	store := newModerationStoreStub()
	store.users["u-1"] = model.User{ID: "u-1", Status: enums.ModerationStatusPending}
	store.services[1] = model.Service{ID: 1, Status: enums.ModerationStatusPending}
	store.services[2] = model.Service{ID: 2, Status: enums.ModerationStatusApproved}
	store.jobs[1] = model.Job{ID: 1, Status: enums.ModerationStatusOpen}
	store.hires[1] = model.HireRequest{ID: 1, Status: enums.ModerationStatusPending}
	router := newAdminRouter(store)

	want := map[string]int{"users": 1, "services": 1, "jobs": 0, "hire-requests": 1}
	for segment, n := range want {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/pending-"+segment, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: unexpected status %d", segment, rr.Code)
		}
		var body struct {
			Items []map[string]any `json:"items"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", segment, err)
		}
		if len(body.Items) != n {
			t.Fatalf("%s: expected %d pending items, got %d", segment, n, len(body.Items))
		}
	}
}
