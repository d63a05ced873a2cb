package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Entry is one submission attempt outcome.
type Entry struct {
	TestID   string
	UserID   string
	Trigger  string
	Outcome  string
	Answered int
	Total    int
}

// Attempt outcomes.
const (
	OutcomeAccepted = "ACCEPTED"
	OutcomeFailed   = "FAILED"
)

// Recorder appends submission attempts to PostgreSQL for operator
// visibility. Every write is best-effort: a journal problem must never
// block or fail a submission, so errors are logged and swallowed.
type Recorder struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewRecorder creates a Recorder on the given pool.
func NewRecorder(pool *pgxpool.Pool, log zerolog.Logger) *Recorder {
	return &Recorder{
		pool: pool,
		log:  log.With().Str("component", "journal").Logger(),
	}
}

// Record inserts one attempt row.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO submission_journal (id, test_id, user_id, trigger_kind, outcome, answered, total, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		uuid.New(), e.TestID, e.UserID, e.Trigger, e.Outcome, e.Answered, e.Total,
	)
	if err != nil {
		r.log.Error().Err(err).
			Str("test_id", e.TestID).
			Str("user_id", e.UserID).
			Str("outcome", e.Outcome).
			Msg("Journal insert failed")
	}
}

// Unresolved counts attempts whose latest outcome for a test/user pair is
// still FAILED. The resolver worker logs this figure.
func (r *Recorder) Unresolved(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM (
			SELECT DISTINCT ON (test_id, user_id) outcome
			FROM submission_journal
			ORDER BY test_id, user_id, created_at DESC
		 ) latest WHERE outcome = $1`,
		OutcomeFailed,
	).Scan(&n)
	return n, err
}
