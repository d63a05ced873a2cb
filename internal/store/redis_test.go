package store

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, zerolog.Nop()), mr
}

func TestRedisSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t)

	if _, err := s.LoadSnapshot(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty load = %v, want ErrNotFound", err)
	}

	snap := testSnapshot("u1")
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := s.LoadSnapshot(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got.Descriptor.TestName != "Algebra Basics" {
		t.Errorf("TestName = %q", got.Descriptor.TestName)
	}
	if got.Status != snap.Status {
		t.Errorf("Status = %q, want %q", got.Status, snap.Status)
	}
}

func TestRedisSnapshotCarriesTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	if err := s.SaveSnapshot(ctx, testSnapshot("u1")); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	mr.FastForward(FreshnessWindow + time.Minute)
	if _, err := s.LoadSnapshot(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("load after TTL = %v, want ErrNotFound", err)
	}
}

func TestRedisSnapshotStaleCheckWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t)

	if err := s.SaveSnapshot(ctx, testSnapshot("u1")); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	// Key still present, but the store's clock has moved past the window.
	s.now = func() time.Time { return time.Now().Add(FreshnessWindow + time.Hour) }
	if _, err := s.LoadSnapshot(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale load = %v, want ErrNotFound", err)
	}
}

func TestRedisBackupSurvivesFreshnessWindow(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	if err := s.SaveBackup(ctx, testBackup("u1")); err != nil {
		t.Fatalf("SaveBackup: %v", err)
	}

	// Backups have no TTL: they live until resolved.
	mr.FastForward(10 * FreshnessWindow)
	got, err := s.LoadBackup(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadBackup after fast-forward: %v", err)
	}
	if got.TestID != "math-101" {
		t.Errorf("TestID = %q", got.TestID)
	}
}

func TestRedisClearBackup(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t)

	s.SaveBackup(ctx, testBackup("u1"))
	if err := s.ClearBackup(ctx, "u1"); err != nil {
		t.Fatalf("ClearBackup: %v", err)
	}
	if _, err := s.LoadBackup(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("load after clear = %v, want ErrNotFound", err)
	}
}

func TestRedisListBackupUsers(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t)

	s.SaveBackup(ctx, testBackup("u1"))
	s.SaveBackup(ctx, testBackup("u2"))
	s.SaveSnapshot(ctx, testSnapshot("u3")) // must not show up

	users, err := s.ListBackupUsers(ctx)
	if err != nil {
		t.Fatalf("ListBackupUsers: %v", err)
	}
	sort.Strings(users)
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Errorf("users = %v", users)
	}
}
