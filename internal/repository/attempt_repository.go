package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ssc-prep/mocktest-backend/internal/model"
)

// AttemptSummary is an archived attempt row as listed for a user.
type AttemptSummary struct {
	TestID           string     `json:"test_id"`
	TestName         string     `json:"test_name"`
	TotalQuestions   int        `json:"total_questions"`
	Answered         int        `json:"answered_questions"`
	Correct          int        `json:"correct_answers"`
	Incorrect        int        `json:"incorrect_answers"`
	Score            float64    `json:"score"`
	Percentage       int        `json:"percentage"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	StartedAt        *time.Time `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at"`
}

// AttemptRepository handles archived attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Upsert stores a completed attempt. A retake of the same test by the same
// user overwrites the previous row.
func (r *AttemptRepository) Upsert(ctx context.Context, rec *model.AttemptRecord) error {
	sections, err := json.Marshal(rec.Result.Sections)
	if err != nil {
		return fmt.Errorf("marshal section scores: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempts (
			user_id, test_id, test_name, total_questions, answered, correct,
			incorrect, unanswered, score, percentage, time_taken_seconds,
			section_scores, started_at, finished_at
		 )
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (user_id, test_id) DO UPDATE
		 SET test_name = EXCLUDED.test_name,
		     total_questions = EXCLUDED.total_questions,
		     answered = EXCLUDED.answered,
		     correct = EXCLUDED.correct,
		     incorrect = EXCLUDED.incorrect,
		     unanswered = EXCLUDED.unanswered,
		     score = EXCLUDED.score,
		     percentage = EXCLUDED.percentage,
		     time_taken_seconds = EXCLUDED.time_taken_seconds,
		     section_scores = EXCLUDED.section_scores,
		     started_at = EXCLUDED.started_at,
		     finished_at = EXCLUDED.finished_at,
		     updated_at = NOW()`,
		rec.UserID, rec.TestID, rec.Result.TestName, rec.Result.TotalQuestions,
		rec.Result.Answered, rec.Result.Correct, rec.Result.Incorrect,
		rec.Result.Unanswered, rec.Result.Score, rec.Result.Percentage,
		rec.Result.TimeTakenSeconds, sections, rec.StartedAt, rec.FinishedAt,
	)
	return err
}

// GetByUserAndTest retrieves a single archived attempt.
func (r *AttemptRepository) GetByUserAndTest(ctx context.Context, userID, testID string) (*model.AttemptRecord, error) {
	rec := &model.AttemptRecord{UserID: userID, TestID: testID}
	var sections []byte

	err := r.pool.QueryRow(ctx,
		`SELECT test_name, total_questions, answered, correct, incorrect,
		        unanswered, score, percentage, time_taken_seconds,
		        section_scores, started_at, finished_at
		 FROM attempts
		 WHERE user_id = $1 AND test_id = $2`, userID, testID,
	).Scan(
		&rec.Result.TestName, &rec.Result.TotalQuestions, &rec.Result.Answered,
		&rec.Result.Correct, &rec.Result.Incorrect, &rec.Result.Unanswered,
		&rec.Result.Score, &rec.Result.Percentage, &rec.Result.TimeTakenSeconds,
		&sections, &rec.StartedAt, &rec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &rec.Result.Sections); err != nil {
			return nil, fmt.Errorf("unmarshal section scores: %w", err)
		}
	}
	return rec, nil
}

// ListByUser retrieves a user's archived attempts, newest first, paginated.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]AttemptSummary, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT test_id, test_name, total_questions, answered, correct,
		        incorrect, score, percentage, time_taken_seconds,
		        started_at, finished_at
		 FROM attempts
		 WHERE user_id = $1
		 ORDER BY finished_at DESC NULLS LAST
		 LIMIT $2 OFFSET $3`, userID, perPage, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []AttemptSummary
	for rows.Next() {
		var a AttemptSummary
		if err := rows.Scan(
			&a.TestID, &a.TestName, &a.TotalQuestions, &a.Answered, &a.Correct,
			&a.Incorrect, &a.Score, &a.Percentage, &a.TimeTakenSeconds,
			&a.StartedAt, &a.FinishedAt,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, a)
	}

	return results, total, rows.Err()
}
