package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/repetit/testflow-backend/internal/journal"
	"github.com/repetit/testflow-backend/internal/store"
)

// BackupResolver periodically scans for lingering backup records (answers
// the upstream never accepted) and reports them so operators notice stuck
// submissions. Resolution itself stays a manual taker action; this worker
// only observes.
type BackupResolver struct {
	store    store.Store
	journal  *journal.Recorder
	interval time.Duration
	log      zerolog.Logger
}

// NewBackupResolver creates a BackupResolver. journal may be nil when the
// database is not configured.
func NewBackupResolver(st store.Store, j *journal.Recorder, interval time.Duration, log zerolog.Logger) *BackupResolver {
	return &BackupResolver{
		store:    st,
		journal:  j,
		interval: interval,
		log:      log.With().Str("component", "backup_resolver").Logger(),
	}
}

// Start begins the scan loop. Call in a goroutine.
func (w *BackupResolver) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *BackupResolver) scan(ctx context.Context) {
	users, err := w.store.ListBackupUsers(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Backup scan failed")
		return
	}
	if len(users) == 0 {
		return
	}

	w.log.Warn().
		Int("pending", len(users)).
		Strs("user_ids", users).
		Msg("Backed up submissions awaiting retry")

	if w.journal != nil {
		if n, err := w.journal.Unresolved(ctx); err == nil {
			w.log.Info().Int64("unresolved_attempts", n).Msg("Journal unresolved count")
		}
	}
}
