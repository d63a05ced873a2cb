package store

import (
	"context"
	"errors"
	"time"

	"github.com/repetit/testflow-backend/internal/model"
)

// FreshnessWindow bounds how old a snapshot may be and still be offered for
// resume after a reload or restart.
const FreshnessWindow = 24 * time.Hour

// ErrNotFound is returned when no record exists (or a snapshot is stale).
var ErrNotFound = errors.New("record not found")

// Store is the durable key-value persistence the session controller owns.
// Snapshots hold in-progress work and expire with the freshness window;
// backup records are written before every submission attempt and live until
// the upstream confirms acceptance. Access is last-writer-wins.
type Store interface {
	SaveSnapshot(ctx context.Context, snap *model.SessionSnapshot) error
	LoadSnapshot(ctx context.Context, userID string) (*model.SessionSnapshot, error)
	ClearSnapshot(ctx context.Context, userID string) error

	SaveBackup(ctx context.Context, rec *model.BackupRecord) error
	LoadBackup(ctx context.Context, userID string) (*model.BackupRecord, error)
	ClearBackup(ctx context.Context, userID string) error

	// ListBackupUsers returns the user IDs that currently hold a backup
	// record. The resolver worker uses it to surface unresolved submissions.
	ListBackupUsers(ctx context.Context) ([]string, error)
}
