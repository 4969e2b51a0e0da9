package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/ssc-prep/mocktest-backend/internal/config"
	"github.com/ssc-prep/mocktest-backend/internal/definition"
	"github.com/ssc-prep/mocktest-backend/internal/engine"
	"github.com/ssc-prep/mocktest-backend/internal/model"
	"github.com/ssc-prep/mocktest-backend/internal/sink"
	"github.com/ssc-prep/mocktest-backend/internal/store"
)

// ErrTestUnavailable wraps a definition load failure; it is the only fatal
// error on the attempt path and leaves the attempt NotStarted.
var ErrTestUnavailable = errors.New("test definition unavailable")

// completedEvictAfter is how long a completed attempt stays in memory for
// results and review before the janitor drops it.
const completedEvictAfter = time.Hour

type attemptEntry struct {
	userID  string
	testID  string
	session *engine.Session
}

// AttemptService owns the live attempt sessions. Each (user, test) pair maps
// to at most one in-memory engine session; every mutation while the attempt
// runs is mirrored to the snapshot store, and completed results are delivered
// to the configured sinks.
type AttemptService struct {
	mu      sync.Mutex
	entries map[string]*attemptEntry

	source definition.Source
	snaps  store.SnapshotStore
	sinks  []sink.ResultSink
	clock  engine.Clock
	log    zerolog.Logger
}

// NewAttemptService creates an AttemptService. clock may be nil for the
// system clock.
func NewAttemptService(
	source definition.Source,
	snaps store.SnapshotStore,
	sinks []sink.ResultSink,
	clock engine.Clock,
	log zerolog.Logger,
) *AttemptService {
	if clock == nil {
		clock = engine.SystemClock()
	}
	return &AttemptService{
		entries: make(map[string]*attemptEntry),
		source:  source,
		snaps:   snaps,
		sinks:   sinks,
		clock:   clock,
		log:     log.With().Str("component", "attempt_service").Logger(),
	}
}

// acquire returns the live session for (userID, testID), creating it from
// the test definition on first touch. A freshly created session attempts
// recovery: a stored snapshot is restored only if it is still Active, so
// completed attempts always come back as a clean NotStarted session.
func (s *AttemptService) acquire(ctx context.Context, userID, testID string) (*engine.Session, error) {
	key := config.CacheKey.AttemptSnapshotKey(userID, testID)

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return e.session, nil
	}
	s.mu.Unlock()

	// Definition load happens outside the lock; it may hit the network.
	def, err := s.source.Load(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTestUnavailable, err)
	}

	session := engine.NewSession(userID, testID, def, s.clock)
	s.recover(ctx, key, session)

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		// Lost a concurrent creation race; use the winner.
		return e.session, nil
	}
	s.entries[key] = &attemptEntry{userID: userID, testID: testID, session: session}
	return session, nil
}

// recover replays a persisted Active snapshot into a fresh session.
// Store errors and non-restorable snapshots leave the session untouched.
func (s *AttemptService) recover(ctx context.Context, key string, session *engine.Session) {
	snap, err := s.snaps.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("Snapshot load failed")
		}
		return
	}
	if err := session.Restore(snap); err != nil {
		// Completed or otherwise stale snapshot; start fresh.
		return
	}
	s.log.Info().Str("key", key).Msg("Attempt recovered from snapshot")
}

// persist writes the current snapshot. Best-effort: failures are logged and
// the attempt continues in memory. Skipped silently when no user identity is
// available.
func (s *AttemptService) persist(ctx context.Context, userID, testID string, session *engine.Session) {
	if userID == "" || testID == "" {
		return
	}
	key := config.CacheKey.AttemptSnapshotKey(userID, testID)
	if err := s.snaps.Save(ctx, key, session.Snapshot()); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Snapshot save failed")
	}
}

func (s *AttemptService) clearSnapshot(ctx context.Context, userID, testID string) {
	if userID == "" || testID == "" {
		return
	}
	key := config.CacheKey.AttemptSnapshotKey(userID, testID)
	if err := s.snaps.Clear(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Snapshot clear failed")
	}
}

// Start begins an attempt in the given display language.
func (s *AttemptService) Start(ctx context.Context, userID, testID string, lang model.Language) (engine.State, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return engine.State{}, err
	}
	if err := session.Start(lang); err != nil {
		return engine.State{}, err
	}
	s.persist(ctx, userID, testID, session)
	return session.State(), nil
}

// Pause stops the countdown. The paused snapshot is persisted so the clock
// state survives a server restart, though recovery only restores Active
// snapshots.
func (s *AttemptService) Pause(ctx context.Context, userID, testID string) (engine.State, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return engine.State{}, err
	}
	if err := session.Pause(); err != nil {
		return engine.State{}, err
	}
	s.persist(ctx, userID, testID, session)
	return session.State(), nil
}

// Resume restarts a paused attempt.
func (s *AttemptService) Resume(ctx context.Context, userID, testID string) (engine.State, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return engine.State{}, err
	}
	if err := session.Resume(); err != nil {
		return engine.State{}, err
	}
	s.persist(ctx, userID, testID, session)
	return session.State(), nil
}

// Answer records a selected option.
func (s *AttemptService) Answer(ctx context.Context, userID, testID string, questionID int, option string) (engine.State, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return engine.State{}, err
	}
	session.AnswerQuestion(questionID, option)
	if session.Status() == model.AttemptStatusActive {
		s.persist(ctx, userID, testID, session)
	}
	return session.State(), nil
}

// GoTo moves the question cursor (clamped).
func (s *AttemptService) GoTo(ctx context.Context, userID, testID string, index int) (engine.State, error) {
	return s.navigate(ctx, userID, testID, func(session *engine.Session) {
		session.GoToQuestion(index)
	})
}

// Next advances the question cursor.
func (s *AttemptService) Next(ctx context.Context, userID, testID string) (engine.State, error) {
	return s.navigate(ctx, userID, testID, (*engine.Session).NextQuestion)
}

// Previous moves the question cursor back.
func (s *AttemptService) Previous(ctx context.Context, userID, testID string) (engine.State, error) {
	return s.navigate(ctx, userID, testID, (*engine.Session).PreviousQuestion)
}

func (s *AttemptService) navigate(ctx context.Context, userID, testID string, move func(*engine.Session)) (engine.State, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return engine.State{}, err
	}
	move(session)
	if session.Status() == model.AttemptStatusActive {
		s.persist(ctx, userID, testID, session)
	}
	return session.State(), nil
}

// SwitchLanguage changes the display language for subsequent answers.
func (s *AttemptService) SwitchLanguage(ctx context.Context, userID, testID string, lang model.Language) (engine.State, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return engine.State{}, err
	}
	session.SwitchLanguage(lang)
	if session.Status() == model.AttemptStatusActive {
		s.persist(ctx, userID, testID, session)
	}
	return session.State(), nil
}

// Submit finishes the attempt and delivers the result to the sinks. Delivery
// failures never roll the attempt back; the result stays available in memory.
func (s *AttemptService) Submit(ctx context.Context, userID, testID string) (*model.Result, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	result, err := session.Submit()
	if err != nil {
		return nil, err
	}
	s.finalize(ctx, userID, testID, session, result)
	return result, nil
}

// finalize runs the post-completion path shared by user submits and
// timer-driven auto-submits: drop the snapshot, then deliver to every sink.
func (s *AttemptService) finalize(ctx context.Context, userID, testID string, session *engine.Session, result *model.Result) {
	s.clearSnapshot(ctx, userID, testID)

	snap := session.Snapshot()
	payload := sink.NewPayload(userID, testID, result, snap.StartedAt, snap.EndedAt)
	for _, dst := range s.sinks {
		if err := dst.Deliver(ctx, payload); err != nil {
			s.log.Error().Err(err).
				Str("user_id", userID).
				Str("test_id", testID).
				Msg("Result delivery failed; result remains in memory only")
		}
	}
}

// Reset clears a finished attempt back to NotStarted.
func (s *AttemptService) Reset(ctx context.Context, userID, testID string) (engine.State, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return engine.State{}, err
	}
	session.Reset()
	s.clearSnapshot(ctx, userID, testID)
	return session.State(), nil
}

// EnterReview switches a completed attempt into review mode.
func (s *AttemptService) EnterReview(ctx context.Context, userID, testID string) (engine.State, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return engine.State{}, err
	}
	if err := session.EnterReviewMode(); err != nil {
		return engine.State{}, err
	}
	return session.State(), nil
}

// State returns the live view of the attempt, creating (and possibly
// recovering) the session on first touch. This is the page-reload path.
func (s *AttemptService) State(ctx context.Context, userID, testID string) (engine.State, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return engine.State{}, err
	}
	return session.State(), nil
}

// Paper returns the materialized questions. Correct answers and solutions
// are stripped until the attempt completes, so a client cannot read the key
// mid-test.
func (s *AttemptService) Paper(ctx context.Context, userID, testID string) ([]model.RuntimeQuestion, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return nil, err
	}

	questions := session.Questions()
	if session.Status() == model.AttemptStatusCompleted {
		return questions, nil
	}

	redacted := make([]model.RuntimeQuestion, len(questions))
	for i, q := range questions {
		q.CorrectAnswer = model.BilingualText{}
		q.SolutionText = model.BilingualText{}
		redacted[i] = q
	}
	return redacted, nil
}

// Results returns the outcome of a completed attempt.
func (s *AttemptService) Results(ctx context.Context, userID, testID string) (*model.Result, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	return session.Result()
}

// SectionScores returns the per-section breakdown.
func (s *AttemptService) SectionScores(ctx context.Context, userID, testID string) (map[string]model.SectionScore, error) {
	session, err := s.acquire(ctx, userID, testID)
	if err != nil {
		return nil, err
	}
	return session.SectionScores(), nil
}

// Run drives the countdown: one tick per second across every live session,
// persisting running attempts and finalizing those whose timer expired.
// It blocks until ctx is cancelled; call in a goroutine.
func (s *AttemptService) Run(ctx context.Context) {
	s.log.Info().Msg("Attempt ticker started")
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Attempt ticker stopped")
			return
		case <-ticker.C:
			s.tickAll(ctx)
		}
	}
}

func (s *AttemptService) tickAll(ctx context.Context) {
	s.mu.Lock()
	entries := make([]*attemptEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	for _, e := range entries {
		expired := e.session.Tick()
		switch {
		case expired:
			result, err := e.session.Result()
			if err != nil {
				s.log.Error().Err(err).Str("test_id", e.testID).Msg("Auto-submit result computation failed")
				continue
			}
			s.log.Info().
				Str("user_id", e.userID).
				Str("test_id", e.testID).
				Msg("Timer expired; auto-submitting")
			s.finalize(ctx, e.userID, e.testID, e.session, result)
		case e.session.Status() == model.AttemptStatusActive:
			s.persist(ctx, e.userID, e.testID, e.session)
		}
	}

	s.evictStale()
}

// evictStale drops completed sessions that have been idle long enough that
// nobody is reading results or reviewing anymore.
func (s *AttemptService) evictStale() {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if e.session.Status() != model.AttemptStatusCompleted {
			continue
		}
		snap := e.session.Snapshot()
		if snap.EndedAt != nil && now.Sub(*snap.EndedAt) > completedEvictAfter {
			delete(s.entries, key)
		}
	}
}
