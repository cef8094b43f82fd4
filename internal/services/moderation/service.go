package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gigboard/backend/internal/domain/enums"
	"github.com/gigboard/backend/internal/domain/model"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
)

const signedURLTTL = 15 * time.Minute

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("record is already in a terminal state")
)

type Store interface {
	ListPending(ctx context.Context, kind enums.EntityKind) ([]model.Record, error)
	CountPending(ctx context.Context, kind enums.EntityKind) (int, error)
	ApplyTransition(ctx context.Context, t model.Transition) (model.Record, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry model.AdminAction) (model.AdminAction, error)
}

// AccountSessions receives user decisions so live logins follow the new status.
type AccountSessions interface {
	SyncAccountStatus(ctx context.Context, userID string, status enums.ModerationStatus) error
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Service struct {
	store    Store
	audit    AuditRecorder
	signer   URLSigner
	sessions AccountSessions
	log      *zap.Logger
	now      func() time.Time
}

type PendingSummary struct {
	Users        int
	Services     int
	Jobs         int
	HireRequests int
}

func NewService(store Store, audit AuditRecorder, signer URLSigner, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		audit:  audit,
		signer: signer,
		log:    log,
		now:    time.Now,
	}
}

// SetAccountSessions enables session sync for user decisions.
func (s *Service) SetAccountSessions(sessions AccountSessions) {
	s.sessions = sessions
}

func (s *Service) ListPending(ctx context.Context, kind enums.EntityKind) ([]model.Record, error) {
	if s.store == nil {
		return nil, fmt.Errorf("moderation store is not configured")
	}
	if !kind.Valid() {
		return nil, ErrValidation
	}

	records, err := s.store.ListPending(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list pending %s: %w", kind, err)
	}

	for i := range records {
		records[i] = s.withImageURL(ctx, records[i])
	}
	return records, nil
}

// Approve moves a pending record into its public state. Approving a record
// that is already approved re-stamps it.
func (s *Service) Approve(ctx context.Context, kind enums.EntityKind, id, adminID, note string) (model.Record, error) {
	t := model.Transition{Kind: kind, ID: id, AdminID: adminID}
	switch kind {
	case enums.EntityKindUser:
		t.From = []enums.ModerationStatus{enums.ModerationStatusPending, enums.ModerationStatusApproved}
		t.To = enums.ModerationStatusApproved
	case enums.EntityKindService:
		t.From = []enums.ModerationStatus{enums.ModerationStatusPending, enums.ModerationStatusApproved}
		t.To = enums.ModerationStatusApproved
		active := true
		t.Active = &active
	case enums.EntityKindJob:
		t.From = []enums.ModerationStatus{enums.ModerationStatusPending, enums.ModerationStatusOpen}
		t.To = enums.ModerationStatusOpen
	case enums.EntityKindHireRequest:
		t.From = []enums.ModerationStatus{enums.ModerationStatusPending, enums.ModerationStatusApproved}
		t.To = enums.ModerationStatusApproved
		t.Note = optional(note)
	default:
		return nil, ErrValidation
	}

	return s.apply(ctx, enums.DecisionApprove, t, note)
}

func (s *Service) Reject(ctx context.Context, kind enums.EntityKind, id, adminID, reason string) (model.Record, error) {
	t := model.Transition{Kind: kind, ID: id, AdminID: adminID}
	switch kind {
	case enums.EntityKindUser:
		t.From = []enums.ModerationStatus{enums.ModerationStatusPending, enums.ModerationStatusRejected}
		t.To = enums.ModerationStatusRejected
	case enums.EntityKindService:
		t.From = []enums.ModerationStatus{enums.ModerationStatusPending, enums.ModerationStatusRejected}
		t.To = enums.ModerationStatusRejected
		active := false
		t.Active = &active
		t.Note = optional(reason)
	case enums.EntityKindJob:
		t.From = []enums.ModerationStatus{enums.ModerationStatusPending, enums.ModerationStatusClosed}
		t.To = enums.ModerationStatusClosed
	case enums.EntityKindHireRequest:
		t.From = []enums.ModerationStatus{enums.ModerationStatusPending, enums.ModerationStatusRejected}
		t.To = enums.ModerationStatusRejected
		t.Note = optional(reason)
	default:
		return nil, ErrValidation
	}

	return s.apply(ctx, enums.DecisionReject, t, reason)
}

func (s *Service) PendingSummary(ctx context.Context) (PendingSummary, error) {
	if s.store == nil {
		return PendingSummary{}, fmt.Errorf("moderation store is not configured")
	}

	var summary PendingSummary
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range enums.EntityKinds() {
		dst := summary.field(kind)
		g.Go(func() error {
			count, err := s.store.CountPending(gctx, kind)
			if err != nil {
				return fmt.Errorf("count pending %s: %w", kind, err)
			}
			*dst = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PendingSummary{}, err
	}
	return summary, nil
}

func (p *PendingSummary) field(kind enums.EntityKind) *int {
	switch kind {
	case enums.EntityKindUser:
		return &p.Users
	case enums.EntityKindService:
		return &p.Services
	case enums.EntityKindJob:
		return &p.Jobs
	default:
		return &p.HireRequests
	}
}

func (s *Service) apply(ctx context.Context, decision enums.Decision, t model.Transition, details string) (model.Record, error) {
	if s.store == nil {
		return nil, fmt.Errorf("moderation store is not configured")
	}
	if strings.TrimSpace(t.AdminID) == "" {
		return nil, ErrValidation
	}
	id, err := normalizeID(t.Kind, t.ID)
	if err != nil {
		return nil, err
	}
	t.ID = id
	t.At = s.now().UTC()

	record, err := s.store.ApplyTransition(ctx, t)
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, pgrepo.ErrInvalidTransition):
			return nil, ErrInvalidTransition
		default:
			return nil, fmt.Errorf("apply %s %s: %w", decision, t.Kind, err)
		}
	}

	if t.Kind == enums.EntityKindUser {
		s.syncSessions(ctx, t.ID, t.To)
	}
	s.recordAudit(ctx, model.AdminAction{
		AdminID:    t.AdminID,
		Action:     string(enums.AuditActionFor(decision, t.Kind)),
		TargetType: string(t.Kind),
		TargetID:   t.ID,
		Details:    optional(details),
		CreatedAt:  t.At,
	})

	return s.withImageURL(ctx, record), nil
}

// recordAudit never fails the transition; the status write has already landed.
func (s *Service) recordAudit(ctx context.Context, entry model.AdminAction) {
	if s.audit == nil {
		s.log.Warn("audit recorder is not configured", zap.String("action", entry.Action), zap.String("target_id", entry.TargetID))
		return
	}
	if _, err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn("record admin action failed",
			zap.String("admin_id", entry.AdminID),
			zap.String("action", entry.Action),
			zap.String("target_type", entry.TargetType),
			zap.String("target_id", entry.TargetID),
			zap.Error(err),
		)
	}
}

func (s *Service) syncSessions(ctx context.Context, userID string, status enums.ModerationStatus) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.SyncAccountStatus(ctx, userID, status); err != nil {
		s.log.Warn("sync user sessions failed",
			zap.String("user_id", userID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func (s *Service) withImageURL(ctx context.Context, record model.Record) model.Record {
	svc, ok := record.(model.Service)
	if !ok || s.signer == nil || svc.ImageKey == nil || *svc.ImageKey == "" {
		return record
	}

	url, err := s.signer.PresignGet(ctx, *svc.ImageKey, signedURLTTL)
	if err != nil {
		s.log.Warn("presign service image failed", zap.Int64("service_id", svc.ID), zap.Error(err))
		return record
	}
	svc.ImageURL = url
	return svc
}

func normalizeID(kind enums.EntityKind, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrValidation
	}
	if kind == enums.EntityKindUser {
		return raw, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return "", ErrValidation
	}
	return strconv.FormatInt(id, 10), nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
