package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/gigboard/backend/internal/domain/enums"
	authsvc "github.com/gigboard/backend/internal/services/auth"
)

func newTestRepo(t *testing.T) (*SessionRepo, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mini.Close()
	})

	return NewSessionRepo(client), mini
}

func testSession(sid, userID string) authsvc.SessionRecord {
	return authsvc.SessionRecord{
		SID:           sid,
		UserID:        userID,
		Status:        enums.ModerationStatusPending,
		RefreshDigest: "digest-" + sid,
		ExpiresAt:     time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
}

func TestSessionRepoCreateAndGet(t *testing.T) {
	repo, mini := newTestRepo(t)
	ctx := context.Background()

	in := testSession("sid-1", "user-1")
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("create session: %v", err)
	}

	session, err := repo.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.UserID != "user-1" || session.Status != enums.ModerationStatusPending || !session.ExpiresAt.Equal(in.ExpiresAt) {
		t.Fatalf("unexpected session: %+v", session)
	}

	byRefresh, err := repo.GetByRefreshDigest(ctx, "digest-sid-1")
	if err != nil {
		t.Fatalf("get by refresh: %v", err)
	}
	if byRefresh.SID != "sid-1" {
		t.Fatalf("unexpected sid: %q", byRefresh.SID)
	}
	if ttl := mini.TTL(sessionKey("sid-1")); ttl <= 0 {
		t.Fatalf("session hash must expire, ttl=%s", ttl)
	}
}

func TestSessionRepoRejectsEmptyUser(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Create(context.Background(), testSession("sid", ""))
	if !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSessionRepoRotateRefreshRetiresOldDigest(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("sid-r", "user-r")); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := repo.RotateRefresh(ctx, "sid-r", "digest-sid-r", "digest-next", time.Now().Add(2*time.Hour)); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	if _, err := repo.GetByRefreshDigest(ctx, "digest-sid-r"); !errors.Is(err, authsvc.ErrRefreshNotFound) {
		t.Fatalf("old digest should be gone, got %v", err)
	}
	if err := repo.RotateRefresh(ctx, "sid-r", "digest-sid-r", "digest-other", time.Now().Add(time.Hour)); !errors.Is(err, authsvc.ErrRefreshNotFound) {
		t.Fatalf("rotating a retired digest must fail, got %v", err)
	}
	session, err := repo.GetByRefreshDigest(ctx, "digest-next")
	if err != nil {
		t.Fatalf("get by new digest: %v", err)
	}
	if session.SID != "sid-r" || session.RefreshDigest != "digest-next" {
		t.Fatalf("unexpected session after rotate: %+v", session)
	}
}

func TestSessionRepoStalePointerIsIgnored(t *testing.T) {
	repo, mini := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testSession("sid-s", "user-s")); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := mini.Set(refreshKey("digest-forged"), "sid-s"); err != nil {
		t.Fatalf("seed pointer: %v", err)
	}

	if _, err := repo.GetByRefreshDigest(ctx, "digest-forged"); !errors.Is(err, authsvc.ErrRefreshNotFound) {
		t.Fatalf("pointer that does not match the session digest must be refused, got %v", err)
	}
}

func TestSessionRepoSetUserStatus(t *testing.T) {
	repo, mini := newTestRepo(t)
	ctx := context.Background()

	for _, sid := range []string{"a", "b"} {
		if err := repo.Create(ctx, testSession(sid, "user-3")); err != nil {
			t.Fatalf("create session %s: %v", sid, err)
		}
	}
	mini.Del(sessionKey("b"))

	if err := repo.SetUserStatus(ctx, "user-3", enums.ModerationStatusApproved); err != nil {
		t.Fatalf("set status: %v", err)
	}

	session, err := repo.GetSession(ctx, "a")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.Status != enums.ModerationStatusApproved {
		t.Fatalf("expected approved status, got %q", session.Status)
	}
	if mini.Exists(sessionKey("b")) {
		t.Fatalf("expired session hash must not be recreated")
	}
	members, err := mini.Members(userSessionsKey("user-3"))
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0] != "a" {
		t.Fatalf("expected stale sid to be pruned, got %v", members)
	}
}

func TestSessionRepoDeleteAllForUser(t *testing.T) {
	repo, mini := newTestRepo(t)
	ctx := context.Background()

	for _, sid := range []string{"a", "b"} {
		if err := repo.Create(ctx, testSession(sid, "user-2")); err != nil {
			t.Fatalf("create session %s: %v", sid, err)
		}
	}

	if err := repo.DeleteAllForUser(ctx, "user-2"); err != nil {
		t.Fatalf("delete all: %v", err)
	}

	if _, err := repo.GetSession(ctx, "a"); !errors.Is(err, authsvc.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := repo.GetByRefreshDigest(ctx, "digest-b"); !errors.Is(err, authsvc.ErrRefreshNotFound) {
		t.Fatalf("expected ErrRefreshNotFound, got %v", err)
	}
	if mini.Exists(userSessionsKey("user-2")) || mini.Exists(refreshKey("digest-a")) {
		t.Fatalf("user sessions set and refresh pointers should be removed")
	}
}
