package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/repetit/testflow-backend/internal/config"
	"github.com/repetit/testflow-backend/internal/model"
)

// RedisStore is the durable Store implementation. Snapshots carry the
// freshness window as a TTL so stale sessions age out on their own; backups
// have no TTL and survive until explicitly cleared.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
	now    func() time.Time
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(client *redis.Client, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		log:    log.With().Str("component", "redis_store").Logger(),
		now:    time.Now,
	}
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, snap *model.SessionSnapshot) error {
	snap.SavedAt = s.now()
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := config.StoreKey.SnapshotKey(snap.UserID)
	if err := s.client.Set(ctx, key, raw, FreshnessWindow).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadSnapshot(ctx context.Context, userID string) (*model.SessionSnapshot, error) {
	raw, err := s.client.Get(ctx, config.StoreKey.SnapshotKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var snap model.SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	// The TTL normally enforces this; the explicit check covers clock
	// changes and restored dumps.
	if s.now().Sub(snap.SavedAt) > FreshnessWindow {
		return nil, ErrNotFound
	}
	return &snap, nil
}

func (s *RedisStore) ClearSnapshot(ctx context.Context, userID string) error {
	return s.client.Del(ctx, config.StoreKey.SnapshotKey(userID)).Err()
}

func (s *RedisStore) SaveBackup(ctx context.Context, rec *model.BackupRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	if err := s.client.Set(ctx, config.StoreKey.BackupKey(rec.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save backup: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadBackup(ctx context.Context, userID string) (*model.BackupRecord, error) {
	raw, err := s.client.Get(ctx, config.StoreKey.BackupKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load backup: %w", err)
	}
	var rec model.BackupRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal backup: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) ClearBackup(ctx context.Context, userID string) error {
	return s.client.Del(ctx, config.StoreKey.BackupKey(userID)).Err()
}

func (s *RedisStore) ListBackupUsers(ctx context.Context) ([]string, error) {
	var users []string
	iter := s.client.Scan(ctx, 0, config.StoreKey.BackupPattern(), 100).Iterator()
	for iter.Next(ctx) {
		if userID := config.StoreKey.BackupUserID(iter.Val()); userID != "" {
			users = append(users, userID)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan backups: %w", err)
	}
	return users, nil
}
