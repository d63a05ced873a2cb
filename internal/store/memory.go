package store

import (
	"context"
	"sync"
	"time"

	"github.com/repetit/testflow-backend/internal/model"
)

// MemoryStore is an in-process Store for tests and Redis-less development.
// Values are deep-copied through JSON-free struct copies so callers cannot
// mutate stored state behind the store's back.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]model.SessionSnapshot
	backups   map[string]model.BackupRecord
	now       func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]model.SessionSnapshot),
		backups:   make(map[string]model.BackupRecord),
		now:       time.Now,
	}
}

// NewMemoryStoreWithClock allows deterministic timestamps in tests.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	s.now = now
	return s
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snap *model.SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.SavedAt = s.now()
	cp := *snap
	cp.Answers = append([]string(nil), snap.Answers...)
	if snap.Identity != nil {
		id := *snap.Identity
		cp.Identity = &id
	}
	s.snapshots[snap.UserID] = cp
	return nil
}

func (s *MemoryStore) LoadSnapshot(_ context.Context, userID string) (*model.SessionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().Sub(snap.SavedAt) > FreshnessWindow {
		return nil, ErrNotFound
	}
	cp := snap
	cp.Answers = append([]string(nil), snap.Answers...)
	if snap.Identity != nil {
		id := *snap.Identity
		cp.Identity = &id
	}
	return &cp, nil
}

func (s *MemoryStore) ClearSnapshot(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, userID)
	return nil
}

func (s *MemoryStore) SaveBackup(_ context.Context, rec *model.BackupRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	cp.Answers = append([]string(nil), rec.Answers...)
	s.backups[rec.UserID] = cp
	return nil
}

func (s *MemoryStore) LoadBackup(_ context.Context, userID string) (*model.BackupRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.backups[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := rec
	cp.Answers = append([]string(nil), rec.Answers...)
	return &cp, nil
}

func (s *MemoryStore) ClearBackup(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.backups, userID)
	return nil
}

func (s *MemoryStore) ListBackupUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]string, 0, len(s.backups))
	for userID := range s.backups {
		users = append(users, userID)
	}
	return users, nil
}
