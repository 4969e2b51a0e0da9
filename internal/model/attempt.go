package model

import "time"

// AttemptStatus enumerates the lifecycle states of a mock test attempt.
type AttemptStatus string

const (
	AttemptStatusNotStarted AttemptStatus = "NOT_STARTED"
	AttemptStatusActive     AttemptStatus = "ACTIVE"
	AttemptStatusPaused     AttemptStatus = "PAUSED"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
)

// Answer records a single selected option for a question. IsCorrect is
// evaluated at the moment of answering against the display language active
// at that time.
type Answer struct {
	QuestionID     int    `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	IsCorrect      bool   `json:"is_correct"`
}

// Snapshot is the serialized form of a live attempt, written to the snapshot
// store on every mutation while the attempt is active. Questions are not
// snapshotted; they are re-materialized from the test definition on recovery.
// Timestamps marshal as RFC 3339 and must round-trip as equal instants.
type Snapshot struct {
	UserID             string         `json:"user_id"`
	TestID             string         `json:"test_id"`
	Status             AttemptStatus  `json:"status"`
	CurrentIndex       int            `json:"current_index"`
	Answers            map[int]Answer `json:"answers"`
	TimeRemaining      int            `json:"time_remaining_seconds"`
	TotalPausedSeconds int            `json:"total_paused_seconds"`
	DisplayLanguage    Language       `json:"display_language"`
	ReviewMode         bool           `json:"review_mode"`
	StartedAt          *time.Time     `json:"started_at,omitempty"`
	EndedAt            *time.Time     `json:"ended_at,omitempty"`
	LastPauseAt        *time.Time     `json:"last_pause_at,omitempty"`
}

// SectionScore is the per-section breakdown of a result.
type SectionScore struct {
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Score      float64 `json:"score"`
	Percentage int     `json:"percentage"`
}

// Result is the final outcome of a completed attempt. Percentage may be
// negative when incorrect answers dominate; it is never clamped.
type Result struct {
	TestName         string                  `json:"test_name"`
	TotalQuestions   int                     `json:"total_questions"`
	Answered         int                     `json:"answered_questions"`
	Correct          int                     `json:"correct_answers"`
	Incorrect        int                     `json:"incorrect_answers"`
	Unanswered       int                     `json:"unanswered_questions"`
	Score            float64                 `json:"score"`
	Percentage       int                     `json:"percentage"`
	TimeTakenSeconds int                     `json:"time_taken_seconds"`
	Sections         map[string]SectionScore `json:"sections"`
}

// AttemptRecord is a completed attempt as archived in PostgreSQL.
type AttemptRecord struct {
	UserID     string     `json:"user_id"`
	TestID     string     `json:"test_id"`
	Result     Result     `json:"result"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// StartAttemptRequest is the payload for starting an attempt.
type StartAttemptRequest struct {
	Language Language `json:"language" binding:"required,oneof=hindi english"`
}

// AnswerRequest is the payload for recording an answer.
type AnswerRequest struct {
	QuestionID     int    `json:"question_id" binding:"required,min=1"`
	SelectedOption string `json:"selected_option" binding:"required"`
}

// GoToRequest is the payload for jumping to a question index.
// Out-of-range values are clamped, so no upper bound is validated here.
type GoToRequest struct {
	Index int `json:"index"`
}

// SwitchLanguageRequest is the payload for changing the display language.
type SwitchLanguageRequest struct {
	Language Language `json:"language" binding:"required,oneof=hindi english"`
}
