// Package sink delivers completed attempt results to external collaborators.
// Delivery is best-effort and never rolls a completed attempt back: failures
// are logged and swallowed, leaving the result available in memory.
package sink

import (
	"context"
	"time"

	"github.com/ssc-prep/mocktest-backend/internal/model"
)

// Payload is the result body delivered on submission.
type Payload struct {
	UserID           string                        `json:"user_id"`
	TestID           string                        `json:"test_id"`
	TestName         string                        `json:"test_name"`
	TotalQuestions   int                           `json:"totalQuestions"`
	Answered         int                           `json:"answeredQuestions"`
	Correct          int                           `json:"correctAnswers"`
	Incorrect        int                           `json:"incorrectAnswers"`
	Unanswered       int                           `json:"unansweredQuestions"`
	Score            float64                       `json:"score"`
	Percentage       int                           `json:"percentage"`
	TimeTakenSeconds int                           `json:"timeTakenSeconds"`
	Sections         map[string]model.SectionScore `json:"sections"`
	StartedAt        *time.Time                    `json:"started_at,omitempty"`
	FinishedAt       *time.Time                    `json:"finished_at,omitempty"`
}

// ResultSink receives a completed attempt result.
type ResultSink interface {
	Deliver(ctx context.Context, p *Payload) error
}

// NewPayload builds the delivery body from a completed attempt.
func NewPayload(userID, testID string, res *model.Result, startedAt, finishedAt *time.Time) *Payload {
	return &Payload{
		UserID:           userID,
		TestID:           testID,
		TestName:         res.TestName,
		TotalQuestions:   res.TotalQuestions,
		Answered:         res.Answered,
		Correct:          res.Correct,
		Incorrect:        res.Incorrect,
		Unanswered:       res.Unanswered,
		Score:            res.Score,
		Percentage:       res.Percentage,
		TimeTakenSeconds: res.TimeTakenSeconds,
		Sections:         res.Sections,
		StartedAt:        startedAt,
		FinishedAt:       finishedAt,
	}
}
