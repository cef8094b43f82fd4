package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gigboard/backend/internal/domain/enums"
	authsvc "github.com/gigboard/backend/internal/services/auth"
)

// Key layout:
//
//	gig:session:<sid>          hash  user_id, status, refresh, expires_at
//	gig:refresh:<digest>       string sid
//	gig:user_sessions:<userID> set of sid
const (
	sessionPrefix      = "gig:session:"
	refreshPrefix      = "gig:refresh:"
	userSessionsPrefix = "gig:user_sessions:"
)

type SessionRepo struct {
	client *goredis.Client
}

func NewSessionRepo(client *goredis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) Create(ctx context.Context, session authsvc.SessionRecord) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(session.SID) == "" || strings.TrimSpace(session.UserID) == "" || session.RefreshDigest == "" {
		return authsvc.ErrInvalidInput
	}

	ttl := ttlFor(session.ExpiresAt)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(session.SID), map[string]any{
		"user_id":    session.UserID,
		"status":     string(session.Status),
		"refresh":    session.RefreshDigest,
		"expires_at": session.ExpiresAt.Unix(),
	})
	pipe.Expire(ctx, sessionKey(session.SID), ttl)
	pipe.Set(ctx, refreshKey(session.RefreshDigest), session.SID, ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.SID)
	pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create redis session: %w", err)
	}
	return nil
}

func (r *SessionRepo) GetSession(ctx context.Context, sid string) (authsvc.SessionRecord, error) {
	if r.client == nil {
		return authsvc.SessionRecord{}, fmt.Errorf("redis client is nil")
	}

	values, err := r.client.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("get session hash: %w", err)
	}
	if len(values) == 0 {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}

	session, err := parseSession(values)
	if err != nil {
		return authsvc.SessionRecord{}, err
	}
	session.SID = sid
	return session, nil
}

// GetByRefreshDigest resolves a refresh token digest to its session. A digest
// that no longer matches the session's current one is treated as unknown.
func (r *SessionRepo) GetByRefreshDigest(ctx context.Context, digest string) (authsvc.SessionRecord, error) {
	if r.client == nil {
		return authsvc.SessionRecord{}, fmt.Errorf("redis client is nil")
	}
	if digest == "" {
		return authsvc.SessionRecord{}, authsvc.ErrRefreshNotFound
	}

	sid, err := r.client.Get(ctx, refreshKey(digest)).Result()
	if errors.Is(err, goredis.Nil) {
		return authsvc.SessionRecord{}, authsvc.ErrRefreshNotFound
	}
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("get refresh pointer: %w", err)
	}

	session, err := r.GetSession(ctx, sid)
	if errors.Is(err, authsvc.ErrSessionNotFound) || (err == nil && session.RefreshDigest != digest) {
		return authsvc.SessionRecord{}, authsvc.ErrRefreshNotFound
	}
	if err != nil {
		return authsvc.SessionRecord{}, err
	}
	return session, nil
}

// RotateRefresh swaps the session's refresh digest under WATCH, so two
// concurrent refreshes with the same token cannot both succeed.
func (r *SessionRepo) RotateRefresh(ctx context.Context, sid, oldDigest, newDigest string, expiresAt time.Time) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if sid == "" || oldDigest == "" || newDigest == "" {
		return authsvc.ErrInvalidInput
	}

	key := sessionKey(sid)
	err := r.client.Watch(ctx, func(tx *goredis.Tx) error {
		values, err := tx.HMGet(ctx, key, "user_id", "refresh").Result()
		if err != nil {
			return fmt.Errorf("load session for rotate: %w", err)
		}
		userID, _ := values[0].(string)
		current, _ := values[1].(string)
		if userID == "" || current != oldDigest {
			return authsvc.ErrRefreshNotFound
		}

		ttl := ttlFor(expiresAt)
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, refreshKey(oldDigest))
			pipe.Set(ctx, refreshKey(newDigest), sid, ttl)
			pipe.HSet(ctx, key, "refresh", newDigest, "expires_at", expiresAt.Unix())
			pipe.Expire(ctx, key, ttl)
			pipe.Expire(ctx, userSessionsKey(userID), ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, authsvc.ErrRefreshNotFound), errors.Is(err, goredis.TxFailedErr):
		return authsvc.ErrRefreshNotFound
	default:
		return fmt.Errorf("rotate refresh token: %w", err)
	}
}

func (r *SessionRepo) DeleteSession(ctx context.Context, sid string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(sid) == "" {
		return nil
	}

	values, err := r.client.HMGet(ctx, sessionKey(sid), "user_id", "refresh").Result()
	if err != nil {
		return fmt.Errorf("load session for delete: %w", err)
	}
	userID, _ := values[0].(string)
	digest, _ := values[1].(string)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sid))
	if digest != "" {
		pipe.Del(ctx, refreshKey(digest))
	}
	if userID != "" {
		pipe.SRem(ctx, userSessionsKey(userID), sid)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(userID) == "" {
		return authsvc.ErrInvalidInput
	}

	sids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	for _, sid := range sids {
		if err := r.DeleteSession(ctx, sid); err != nil {
			return err
		}
	}

	if err := r.client.Del(ctx, userSessionsKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete user sessions key: %w", err)
	}
	return nil
}

// SetUserStatus rewrites the status field of every live session of userID.
// Session ids whose hash already expired are pruned from the set.
func (r *SessionRepo) SetUserStatus(ctx context.Context, userID string, status enums.ModerationStatus) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(userID) == "" || status == "" {
		return authsvc.ErrInvalidInput
	}

	sids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	if len(sids) == 0 {
		return nil
	}

	exists := make([]*goredis.BoolCmd, len(sids))
	if _, err := r.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, sid := range sids {
			exists[i] = pipe.HExists(ctx, sessionKey(sid), "user_id")
		}
		return nil
	}); err != nil {
		return fmt.Errorf("check user sessions: %w", err)
	}

	pipe := r.client.TxPipeline()
	for i, sid := range sids {
		if exists[i].Val() {
			pipe.HSet(ctx, sessionKey(sid), "status", string(status))
		} else {
			pipe.SRem(ctx, userSessionsKey(userID), sid)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

func parseSession(values map[string]string) (authsvc.SessionRecord, error) {
	userID := strings.TrimSpace(values["user_id"])
	if userID == "" {
		return authsvc.SessionRecord{}, authsvc.ErrUnauthorized
	}

	expiresUnix, err := strconv.ParseInt(values["expires_at"], 10, 64)
	if err != nil {
		return authsvc.SessionRecord{}, authsvc.ErrUnauthorized
	}

	return authsvc.SessionRecord{
		UserID:        userID,
		Status:        enums.ModerationStatus(values["status"]),
		RefreshDigest: values["refresh"],
		ExpiresAt:     time.Unix(expiresUnix, 0).UTC(),
	}, nil
}

func ttlFor(expiresAt time.Time) time.Duration {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}

func sessionKey(sid string) string {
	return sessionPrefix + sid
}

func refreshKey(digest string) string {
	return refreshPrefix + digest
}

func userSessionsKey(userID string) string {
	return userSessionsPrefix + userID
}
