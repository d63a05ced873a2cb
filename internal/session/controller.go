package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/repetit/testflow-backend/internal/answerset"
	"github.com/repetit/testflow-backend/internal/countdown"
	"github.com/repetit/testflow-backend/internal/journal"
	"github.com/repetit/testflow-backend/internal/model"
	"github.com/repetit/testflow-backend/internal/store"
	"github.com/repetit/testflow-backend/internal/upstream"
)

// Upstream is the exam-platform collaborator the controller submits to.
type Upstream interface {
	CheckTest(ctx context.Context, userID, testID string) (*model.TestDescriptor, error)
	SubmitTest(ctx context.Context, sub *model.Submission) error
}

// Journal receives submission attempt outcomes. Optional.
type Journal interface {
	Record(ctx context.Context, e journal.Entry)
}

// Trigger distinguishes who initiated a submission.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerAuto   Trigger = "auto-timeout"
)

const windowTimeLayout = "2 January 2006 15:04"

// StateView is the read model the presentation layer renders. All mutation
// goes through controller operations; nothing here aliases internal state.
type StateView struct {
	Descriptor       model.TestDescriptor   `json:"descriptor"`
	Identity         *model.Identity        `json:"identity,omitempty"`
	Answers          []string               `json:"answers"`
	AnsweredCount    int                    `json:"answered_count"`
	UnansweredCount  int                    `json:"unanswered_count"`
	RemainingSeconds int                    `json:"remaining_seconds"`
	Status           model.SubmissionStatus `json:"status"`
	BackupPending    bool                   `json:"backup_pending"`
}

// Controller owns every session: descriptor, identity, answer set, countdown
// and submission lifecycle. Sessions are keyed by the requester identifier
// and survive process restarts through the store's snapshots.
type Controller struct {
	mu       sync.Mutex
	sessions map[string]*liveSession

	store    store.Store
	upstream Upstream
	journal  Journal
	sched    countdown.Scheduler
	now      func() time.Time
	log      zerolog.Logger
}

// Option tweaks controller construction.
type Option func(*Controller)

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithJournal attaches the submission journal.
func WithJournal(j Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// NewController creates a Controller.
func NewController(st store.Store, up Upstream, sched countdown.Scheduler, log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		sessions: make(map[string]*liveSession),
		store:    st,
		upstream: up,
		sched:    sched,
		now:      time.Now,
		log:      log.With().Str("component", "session_controller").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ─── Stage operations ───────────────────────────────────────────────

// CheckTestCode validates a test code against the upstream and, on full
// success, materializes the descriptor and an all-sentinel answer set.
// The countdown does not start here; it starts when identity is recorded
// and the taker enters the test stage.
func (c *Controller) CheckTestCode(ctx context.Context, userID, code string) (*StateView, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	if strings.TrimSpace(code) == "" {
		return nil, &ValidationError{Fields: map[string]string{"test_code": "enter the test code"}}
	}

	desc, err := c.upstream.CheckTest(ctx, userID, code)
	if err != nil {
		return nil, mapUpstreamErr(err)
	}

	now := c.now()
	if desc.IsEnded {
		return nil, &WindowError{
			Outcome: WindowAdminEnded,
			Detail:  fmt.Sprintf("%q was closed by its administrator.", desc.TestName),
		}
	}
	if now.Before(desc.StartTime) {
		return nil, &WindowError{
			Outcome: WindowNotYetStarted,
			Detail:  fmt.Sprintf("The test opens at %s.", desc.StartTime.Local().Format(windowTimeLayout)),
		}
	}
	if now.After(desc.EndTime) {
		return nil, &WindowError{
			Outcome: WindowExpired,
			Detail:  fmt.Sprintf("The test window closed at %s.", desc.EndTime.Local().Format(windowTimeLayout)),
		}
	}
	// The upstream client already rejects these; re-check at the descriptor
	// boundary so no alternative Upstream can start a zero-length timer.
	if desc.Minutes <= 0 || desc.TotalQuestions() < 1 {
		return nil, fmt.Errorf("%w: unusable descriptor", ErrInvalidServerResponse)
	}

	answers, err := answerset.New(desc.CloseQuestions, desc.OpenQuestions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}

	sess := &liveSession{
		userID:      userID,
		descriptor:  *desc,
		answers:     answers,
		status:      model.StatusNotSubmitted,
		subscribers: make(map[chan Event]struct{}),
	}
	c.register(sess)
	c.persist(ctx, sess)

	c.log.Info().
		Str("user_id", userID).
		Str("test_id", desc.TestID).
		Int("questions", desc.TotalQuestions()).
		Msg("Test code accepted")

	return c.viewOf(ctx, sess), nil
}

// RecordIdentity validates and stores the taker's identity, then starts the
// countdown: this is the moment the test clock begins. Identity is
// immutable once captured; a repeat call is a no-op.
func (c *Controller) RecordIdentity(ctx context.Context, userID string, id model.Identity) (*StateView, error) {
	sess, err := c.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.identity != nil {
		sess.mu.Unlock()
		return c.viewOf(ctx, sess), nil
	}
	sess.mu.Unlock()

	if fields := id.Validate(); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	trimmed := model.Identity{
		FirstName: strings.TrimSpace(id.FirstName),
		LastName:  strings.TrimSpace(id.LastName),
		Region:    strings.TrimSpace(id.Region),
	}

	clock, err := countdown.New(sess.descriptor.Minutes*60, c.sched, c.callbacksFor(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}

	sess.mu.Lock()
	if sess.identity != nil { // lost a race with another tab
		sess.mu.Unlock()
		return c.viewOf(ctx, sess), nil
	}
	sess.identity = &trimmed
	sess.startedAt = c.now()
	sess.clock = clock
	sess.mu.Unlock()

	_ = clock.Start()
	c.persist(ctx, sess)

	c.log.Info().Str("user_id", userID).Str("test_id", sess.descriptor.TestID).Msg("Identity recorded, countdown started")
	return c.viewOf(ctx, sess), nil
}

// UpdateAnswer replaces a single answer slot and persists the snapshot
// immediately so a crash or reload loses nothing.
func (c *Controller) UpdateAnswer(ctx context.Context, userID string, index int, value string) (*StateView, error) {
	sess, err := c.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.identity == nil {
		sess.mu.Unlock()
		return nil, ErrIdentityRequired
	}
	if sess.status == model.StatusSubmitted {
		sess.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	if err := sess.answers.Update(index, value); err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	answered := sess.answers.AnsweredCount()
	sess.mu.Unlock()

	c.persist(ctx, sess)
	c.publish(userID, Event{Kind: EventAnswer, Answered: answered})
	return c.viewOf(ctx, sess), nil
}

// State returns the current session view, resuming from a fresh snapshot if
// the process restarted. A session found past its deadline is auto-submitted
// on the spot.
func (c *Controller) State(ctx context.Context, userID string) (*StateView, error) {
	sess, err := c.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.timedOutUnsubmitted() {
		if _, serr := c.Submit(ctx, userID, TriggerAuto); serr != nil && !errors.Is(serr, ErrSubmissionFailed) {
			c.log.Debug().Err(serr).Str("user_id", userID).Msg("Deferred auto-submit skipped")
		}
	}
	return c.viewOf(ctx, sess), nil
}

// Submit makes the single submission attempt. The backup record is written
// synchronously before any network traffic; it survives unless the upstream
// confirms acceptance. The unanswered-count confirmation for manual submits
// is the consumer's policy; the count is surfaced in every StateView.
func (c *Controller) Submit(ctx context.Context, userID string, trigger Trigger) (*StateView, error) {
	sess, err := c.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	switch sess.status {
	case model.StatusSubmitting:
		sess.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case model.StatusSubmitted:
		sess.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	if sess.identity == nil {
		sess.mu.Unlock()
		return nil, ErrIdentityRequired
	}

	// Elapsed time is fixed once, here, not interpolated from the ticking
	// clock, so drift cannot double count.
	completedAt := c.now()
	identity := *sess.identity
	answers := sess.answers.SubmissionForm()
	answered := sess.answers.AnsweredCount()
	total := sess.answers.Len()
	desc := sess.descriptor
	startedAt := sess.startedAt

	rec := &model.BackupRecord{
		TestID:    desc.TestID,
		UserID:    userID,
		Identity:  identity,
		Answers:   answers,
		StartTime: startedAt,
		EndTime:   completedAt,
		Timestamp: completedAt,
	}
	if err := c.store.SaveBackup(ctx, rec); err != nil {
		// Without the backup a failed network call would lose the answers,
		// so the attempt is aborted while still recoverable.
		sess.mu.Unlock()
		return nil, fmt.Errorf("%w: backup write: %v", ErrSubmissionFailed, err)
	}
	sess.status = model.StatusSubmitting
	sess.mu.Unlock()

	c.persist(ctx, sess)

	sub := &model.Submission{
		TestID:      desc.TestID,
		Username:    identity.FirstName,
		Lastname:    identity.LastName,
		City:        identity.Region,
		UserID:      userID,
		StartedAt:   startedAt.UTC().Format(time.RFC3339),
		CompletedAt: completedAt.UTC().Format(time.RFC3339),
		Answers:     answers,
	}

	submitErr := c.upstream.SubmitTest(ctx, sub)

	if submitErr != nil {
		sess.mu.Lock()
		sess.status = model.StatusBackedUp
		sess.mu.Unlock()
		c.persist(ctx, sess)
		c.record(ctx, journal.Entry{
			TestID: desc.TestID, UserID: userID,
			Trigger: string(trigger), Outcome: journal.OutcomeFailed,
			Answered: answered, Total: total,
		})
		c.publish(userID, Event{Kind: EventBackedUp, Status: model.StatusBackedUp})
		c.log.Warn().Err(submitErr).
			Str("user_id", userID).
			Str("test_id", desc.TestID).
			Str("trigger", string(trigger)).
			Msg("Submission failed, answers backed up locally")
		return c.viewOf(ctx, sess), fmt.Errorf("%w: %v", ErrSubmissionFailed, submitErr)
	}

	sess.mu.Lock()
	sess.status = model.StatusSubmitted
	clock := sess.clock
	sess.mu.Unlock()
	if clock != nil {
		clock.Stop()
	}

	if err := c.store.ClearBackup(ctx, userID); err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("Backup clear failed")
	}
	if err := c.store.ClearSnapshot(ctx, userID); err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("Snapshot clear failed")
	}
	c.record(ctx, journal.Entry{
		TestID: desc.TestID, UserID: userID,
		Trigger: string(trigger), Outcome: journal.OutcomeAccepted,
		Answered: answered, Total: total,
	})
	c.publish(userID, Event{Kind: EventSubmitted, Status: model.StatusSubmitted})
	c.log.Info().
		Str("user_id", userID).
		Str("test_id", desc.TestID).
		Str("trigger", string(trigger)).
		Int("answered", answered).
		Msg("Submission accepted")

	return c.viewOf(ctx, sess), nil
}

// Retry resends a locally backed up submission. It works even when the
// process restarted and no live session remains: the backup record carries
// everything the upstream needs.
func (c *Controller) Retry(ctx context.Context, userID string) (*StateView, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	rec, err := c.store.LoadBackup(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("load backup: %w", err)
	}

	sub := &model.Submission{
		TestID:      rec.TestID,
		Username:    rec.Identity.FirstName,
		Lastname:    rec.Identity.LastName,
		City:        rec.Identity.Region,
		UserID:      rec.UserID,
		StartedAt:   rec.StartTime.UTC().Format(time.RFC3339),
		CompletedAt: rec.EndTime.UTC().Format(time.RFC3339),
		Answers:     rec.Answers,
	}
	answered := countAnswered(rec.Answers)

	if err := c.upstream.SubmitTest(ctx, sub); err != nil {
		c.record(ctx, journal.Entry{
			TestID: rec.TestID, UserID: userID,
			Trigger: "manual-retry", Outcome: journal.OutcomeFailed,
			Answered: answered, Total: len(rec.Answers),
		})
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	if err := c.store.ClearBackup(ctx, userID); err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("Backup clear failed")
	}
	if err := c.store.ClearSnapshot(ctx, userID); err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("Snapshot clear failed")
	}
	c.record(ctx, journal.Entry{
		TestID: rec.TestID, UserID: userID,
		Trigger: "manual-retry", Outcome: journal.OutcomeAccepted,
		Answered: answered, Total: len(rec.Answers),
	})
	c.log.Info().Str("user_id", userID).Str("test_id", rec.TestID).Msg("Backed up submission accepted on retry")

	if sess := c.lookup(userID); sess != nil {
		sess.mu.Lock()
		sess.status = model.StatusSubmitted
		clock := sess.clock
		sess.mu.Unlock()
		if clock != nil {
			clock.Stop()
		}
		c.publish(userID, Event{Kind: EventSubmitted, Status: model.StatusSubmitted})
		return c.viewOf(ctx, sess), nil
	}

	id := rec.Identity
	return &StateView{
		Descriptor:    model.TestDescriptor{TestID: rec.TestID},
		Identity:      &id,
		Answers:       rec.Answers,
		AnsweredCount: answered,
		Status:        model.StatusSubmitted,
	}, nil
}

// Result is the results-stage read. When neither a live session nor a
// snapshot survives, a lingering backup record still surfaces as an
// unresolved submission rather than a dead end.
func (c *Controller) Result(ctx context.Context, userID string) (*StateView, error) {
	view, err := c.State(ctx, userID)
	if err == nil {
		return view, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	rec, berr := c.store.LoadBackup(ctx, userID)
	if berr != nil {
		return nil, ErrSessionNotFound
	}
	answered := countAnswered(rec.Answers)
	id := rec.Identity
	return &StateView{
		Descriptor:      model.TestDescriptor{TestID: rec.TestID},
		Identity:        &id,
		Answers:         rec.Answers,
		AnsweredCount:   answered,
		UnansweredCount: len(rec.Answers) - answered,
		Status:          model.StatusBackedUp,
		BackupPending:   true,
	}, nil
}

// Subscribe attaches a session stream listener. The caller must invoke the
// returned cancel function to avoid leaks.
func (c *Controller) Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error) {
	sess, err := c.resolve(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := sess.subscribe()
	return ch, cancel, nil
}

// Peek reports which stage artifacts exist, for the flow guard. It never
// produces an error object; absence simply redirects.
func (c *Controller) Peek(ctx context.Context, userID string) (hasDescriptor, hasIdentity bool) {
	if userID == "" {
		return false, false
	}
	if sess := c.lookup(userID); sess != nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return true, sess.identity != nil
	}
	snap, err := c.store.LoadSnapshot(ctx, userID)
	if err != nil {
		return false, false
	}
	return true, snap.Identity != nil
}

// Reset leaves the flow entirely: the runtime session and its snapshot are
// discarded so the next code check starts clean. A backup record is NOT
// touched, so unresolved answers stay recoverable until retried.
func (c *Controller) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingIdentity
	}
	c.Teardown(userID)
	if err := c.store.ClearSnapshot(ctx, userID); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	c.log.Info().Str("user_id", userID).Msg("Flow reset")
	return nil
}

// Teardown stops the countdown and drops the runtime session. The durable
// snapshot is untouched: teardown is navigation, not resolution.
func (c *Controller) Teardown(userID string) {
	c.mu.Lock()
	sess, ok := c.sessions[userID]
	if ok {
		delete(c.sessions, userID)
	}
	c.mu.Unlock()
	if ok {
		sess.shutdown()
	}
}

// Close tears down every live session. Called on server shutdown.
func (c *Controller) Close() {
	c.mu.Lock()
	sessions := make([]*liveSession, 0, len(c.sessions))
	for _, sess := range c.sessions {
		sessions = append(sessions, sess)
	}
	c.sessions = make(map[string]*liveSession)
	c.mu.Unlock()
	for _, sess := range sessions {
		sess.shutdown()
	}
}

// ─── Internals ──────────────────────────────────────────────────────

func (c *Controller) lookup(userID string) *liveSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[userID]
}

// register installs a session, tearing down any predecessor for the user.
func (c *Controller) register(sess *liveSession) {
	c.mu.Lock()
	old := c.sessions[sess.userID]
	c.sessions[sess.userID] = sess
	c.mu.Unlock()
	if old != nil {
		old.shutdown()
	}
}

// resolve returns the live session, rebuilding one from a fresh snapshot
// after a restart.
func (c *Controller) resolve(ctx context.Context, userID string) (*liveSession, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	if sess := c.lookup(userID); sess != nil {
		return sess, nil
	}

	snap, err := c.store.LoadSnapshot(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return c.rebuild(snap)
}

func (c *Controller) rebuild(snap *model.SessionSnapshot) (*liveSession, error) {
	desc := snap.Descriptor
	answers, err := answerset.Restore(desc.CloseQuestions, desc.OpenQuestions, snap.Answers)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", snap.UserID).Msg("Snapshot unusable, discarding")
		_ = c.store.ClearSnapshot(context.Background(), snap.UserID)
		return nil, ErrSessionNotFound
	}

	status := snap.Status
	if status == model.StatusSubmitting {
		// The process died mid-attempt; the outcome is unknown but the
		// backup record is authoritative, so treat it as backed up.
		status = model.StatusBackedUp
	}

	sess := &liveSession{
		userID:      snap.UserID,
		descriptor:  desc,
		answers:     answers,
		startedAt:   snap.StartedAt,
		status:      status,
		subscribers: make(map[chan Event]struct{}),
	}
	if snap.Identity != nil {
		id := *snap.Identity
		sess.identity = &id
	}

	if sess.identity != nil && status == model.StatusNotSubmitted {
		remaining := desc.Minutes*60 - int(c.now().Sub(snap.StartedAt)/time.Second)
		if remaining > 0 {
			clock, cerr := countdown.New(remaining, c.sched, c.callbacksFor(snap.UserID))
			if cerr == nil {
				sess.clock = clock
			}
		}
	}

	c.mu.Lock()
	if existing, ok := c.sessions[snap.UserID]; ok { // lost a rebuild race
		c.mu.Unlock()
		sess.shutdown()
		return existing, nil
	}
	c.sessions[snap.UserID] = sess
	c.mu.Unlock()

	if sess.clock != nil {
		_ = sess.clock.Start()
	}
	c.log.Info().
		Str("user_id", snap.UserID).
		Str("test_id", desc.TestID).
		Str("status", string(status)).
		Msg("Session resumed from snapshot")
	return sess, nil
}

func (c *Controller) callbacksFor(userID string) countdown.Callbacks {
	return countdown.Callbacks{
		OnTick: func(rem int) {
			c.publish(userID, Event{Kind: EventTick, Remaining: rem})
		},
		OnThreshold: func(rem int) {
			c.publish(userID, Event{Kind: EventThreshold, Remaining: rem})
		},
		OnExpire: func() {
			c.autoSubmit(userID)
		},
	}
}

// autoSubmit is invoked exactly once by the countdown's expiry. It bypasses
// the unanswered-count confirmation (time has run out) and surfaces a
// terminal notice over the stream before submitting.
func (c *Controller) autoSubmit(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.publish(userID, Event{Kind: EventExpired})
	if _, err := c.Submit(ctx, userID, TriggerAuto); err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("Auto-submit did not complete")
	}
}

func (c *Controller) persist(ctx context.Context, sess *liveSession) {
	if err := c.store.SaveSnapshot(ctx, sess.snapshot()); err != nil {
		c.log.Error().Err(err).Str("user_id", sess.userID).Msg("Snapshot save failed")
	}
}

func (c *Controller) publish(userID string, ev Event) {
	if sess := c.lookup(userID); sess != nil {
		sess.publish(ev)
	}
}

func (c *Controller) record(ctx context.Context, e journal.Entry) {
	if c.journal != nil {
		c.journal.Record(ctx, e)
	}
}

func (c *Controller) viewOf(ctx context.Context, sess *liveSession) *StateView {
	backup := false
	if _, err := c.store.LoadBackup(ctx, sess.userID); err == nil {
		backup = true
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	v := &StateView{
		Descriptor:       sess.descriptor,
		Answers:          sess.answers.Slots(),
		AnsweredCount:    sess.answers.AnsweredCount(),
		UnansweredCount:  sess.answers.UnansweredCount(),
		RemainingSeconds: sess.remainingLocked(),
		Status:           sess.status,
		BackupPending:    backup,
	}
	if sess.identity != nil {
		id := *sess.identity
		v.Identity = &id
	}
	return v
}

func mapUpstreamErr(err error) error {
	var denied *upstream.NotAllowedError
	switch {
	case errors.As(err, &denied):
		return &AccessDeniedError{Reason: denied.Reason}
	case errors.Is(err, upstream.ErrTransport):
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}
}

func countAnswered(answers []string) int {
	n := 0
	for _, a := range answers {
		if a != answerset.Sentinel && a != "" {
			n++
		}
	}
	return n
}

// ─── liveSession ────────────────────────────────────────────────────

type liveSession struct {
	mu          sync.Mutex
	userID      string
	descriptor  model.TestDescriptor
	identity    *model.Identity
	answers     *answerset.Set
	clock       *countdown.Countdown
	startedAt   time.Time
	status      model.SubmissionStatus
	subscribers map[chan Event]struct{}
}

func (s *liveSession) snapshot() *model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &model.SessionSnapshot{
		UserID:     s.userID,
		Descriptor: s.descriptor,
		Answers:    s.answers.Slots(),
		StartedAt:  s.startedAt,
		Status:     s.status,
	}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

// remainingLocked requires s.mu held.
func (s *liveSession) remainingLocked() int {
	if s.clock != nil {
		return s.clock.Remaining()
	}
	if s.identity == nil {
		// Countdown has not started yet.
		return s.descriptor.Minutes * 60
	}
	return 0
}

func (s *liveSession) timedOutUnsubmitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == model.StatusNotSubmitted &&
		s.identity != nil &&
		(s.clock == nil || s.clock.State() == countdown.StateExpired)
}

func (s *liveSession) subscribe() (chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Event, 16)
	s.subscribers[ch] = struct{}{}
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
}

func (s *liveSession) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default: // slow consumer, drop rather than block the tick
		}
	}
}

// shutdown cancels the pending tick and closes every stream.
func (s *liveSession) shutdown() {
	s.mu.Lock()
	clock := s.clock
	subs := s.subscribers
	s.subscribers = make(map[chan Event]struct{})
	s.mu.Unlock()

	if clock != nil {
		clock.Stop()
	}
	for ch := range subs {
		close(ch)
	}
}
