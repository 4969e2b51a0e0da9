package engine

import (
	"github.com/ssc-prep/mocktest-backend/internal/model"
)

// Snapshot serializes the mutable attempt state for the snapshot store.
// Questions are omitted; they are re-materialized from the definition
// during Restore.
func (s *Session) Snapshot() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[int]model.Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}

	return &model.Snapshot{
		UserID:             s.userID,
		TestID:             s.testID,
		Status:             s.status,
		CurrentIndex:       s.currentIndex,
		Answers:            answers,
		TimeRemaining:      s.timeRemaining,
		TotalPausedSeconds: s.totalPaused,
		DisplayLanguage:    s.language,
		ReviewMode:         s.reviewMode,
		StartedAt:          s.startedAt,
		EndedAt:            s.endedAt,
		LastPauseAt:        s.lastPauseAt,
	}
}

// Restore resumes a previously persisted Active attempt exactly where it
// left off. Snapshots in any other state are rejected so that completed
// attempts are never resurrected on reload.
func (s *Session) Restore(snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Status != model.AttemptStatusActive {
		return ErrNotRestorable
	}

	s.questions = s.def.FlattenQuestions()

	s.answers = make(map[int]model.Answer, len(snap.Answers))
	for id, a := range snap.Answers {
		// Drop answers that no longer map to a question; the definition
		// may have changed between sessions.
		if id >= 1 && id <= len(s.questions) {
			s.answers[id] = a
		}
	}

	s.currentIndex = snap.CurrentIndex
	if s.currentIndex < 0 || s.currentIndex >= len(s.questions) {
		s.currentIndex = 0
	}
	s.timeRemaining = snap.TimeRemaining
	if s.timeRemaining < 0 {
		s.timeRemaining = 0
	}
	s.totalPaused = snap.TotalPausedSeconds
	s.language = snap.DisplayLanguage
	s.reviewMode = snap.ReviewMode
	s.startedAt = snap.StartedAt
	s.endedAt = snap.EndedAt
	s.lastPauseAt = snap.LastPauseAt
	s.status = model.AttemptStatusActive
	return nil
}

// State is the host-facing view of a live attempt, served on reload and
// streamed over the attempt WebSocket.
type State struct {
	TestID             string               `json:"test_id"`
	Status             model.AttemptStatus  `json:"status"`
	CurrentIndex       int                  `json:"current_index"`
	TotalQuestions     int                  `json:"total_questions"`
	Answers            map[int]model.Answer `json:"answers"`
	TimeRemaining      int                  `json:"time_remaining_seconds"`
	TimeRemainingText  string               `json:"time_remaining_text"`
	TotalPausedSeconds int                  `json:"total_paused_seconds"`
	DisplayLanguage    model.Language       `json:"display_language"`
	ReviewMode         bool                 `json:"review_mode"`
}

// State returns the current host-facing view.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[int]model.Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}

	return State{
		TestID:             s.testID,
		Status:             s.status,
		CurrentIndex:       s.currentIndex,
		TotalQuestions:     len(s.questions),
		Answers:            answers,
		TimeRemaining:      s.timeRemaining,
		TimeRemainingText:  FormatTime(s.timeRemaining),
		TotalPausedSeconds: s.totalPaused,
		DisplayLanguage:    s.language,
		ReviewMode:         s.reviewMode,
	}
}

// Questions returns the materialized question set for review rendering.
func (s *Session) Questions() []model.RuntimeQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions
}
