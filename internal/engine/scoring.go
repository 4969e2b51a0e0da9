package engine

import (
	"math"

	"github.com/ssc-prep/mocktest-backend/internal/model"
)

// Fixed marking scheme: +1 per correct answer, -0.25 per incorrect answer,
// 0 for unanswered. Not configurable per test definition.
const (
	correctMark   = 1.0
	incorrectMark = -0.25
)

func scoreAnswers(questions []model.RuntimeQuestion, answers map[int]model.Answer) model.Result {
	var correct, incorrect int
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		} else {
			incorrect++
		}
	}

	total := len(questions)
	score := float64(correct)*correctMark + float64(incorrect)*incorrectMark

	return model.Result{
		TotalQuestions: total,
		Answered:       len(answers),
		Correct:        correct,
		Incorrect:      incorrect,
		Unanswered:     total - len(answers),
		Score:          score,
		Percentage:     percentage(score, total),
	}
}

func sectionScores(questions []model.RuntimeQuestion, answers map[int]model.Answer) map[string]model.SectionScore {
	scores := make(map[string]model.SectionScore)

	for _, q := range questions {
		sec := scores[q.SectionName]
		sec.Total++
		if a, ok := answers[q.ID]; ok {
			if a.IsCorrect {
				sec.Correct++
			} else {
				sec.Incorrect++
			}
		}
		scores[q.SectionName] = sec
	}

	for name, sec := range scores {
		sec.Score = float64(sec.Correct)*correctMark + float64(sec.Incorrect)*incorrectMark
		sec.Percentage = percentage(sec.Score, sec.Total)
		scores[name] = sec
	}

	return scores
}

// percentage rounds to the nearest integer and may be negative when
// incorrect answers dominate; it is never clamped.
func percentage(score float64, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(score / float64(total) * 100))
}
