package engine

import (
	"testing"

	"github.com/ssc-prep/mocktest-backend/internal/model"
)

func mkQuestions(n int) []model.RuntimeQuestion {
	qs := make([]model.RuntimeQuestion, n)
	for i := range qs {
		qs[i] = model.RuntimeQuestion{ID: i + 1, SectionName: "General"}
	}
	return qs
}

func mkAnswers(correct, incorrect int) map[int]model.Answer {
	answers := make(map[int]model.Answer)
	id := 1
	for i := 0; i < correct; i++ {
		answers[id] = model.Answer{QuestionID: id, SelectedOption: "A", IsCorrect: true}
		id++
	}
	for i := 0; i < incorrect; i++ {
		answers[id] = model.Answer{QuestionID: id, SelectedOption: "B"}
		id++
	}
	return answers
}

func TestScoring(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		correct        int
		incorrect      int
		wantScore      float64
		wantPercentage int
	}{
		{"all correct", 10, 10, 0, 10, 100},
		{"all incorrect", 100, 0, 100, -25, -25},
		{"half correct half unanswered", 10, 5, 0, 5, 50},
		{"mixed full paper", 100, 60, 20, 55, 55},
		{"unanswered only", 10, 0, 0, 0, 0},
		{"no questions", 0, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := scoreAnswers(mkQuestions(tt.total), mkAnswers(tt.correct, tt.incorrect))

			if r.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", r.Score, tt.wantScore)
			}
			if r.Percentage != tt.wantPercentage {
				t.Errorf("percentage = %d, want %d", r.Percentage, tt.wantPercentage)
			}
			if r.Correct != tt.correct || r.Incorrect != tt.incorrect {
				t.Errorf("counts = %d/%d, want %d/%d", r.Correct, r.Incorrect, tt.correct, tt.incorrect)
			}
			if r.Unanswered != tt.total-tt.correct-tt.incorrect {
				t.Errorf("unanswered = %d, want %d", r.Unanswered, tt.total-tt.correct-tt.incorrect)
			}
		})
	}
}

func TestSectionScores(t *testing.T) {
	questions := []model.RuntimeQuestion{
		{ID: 1, SectionName: "A"},
		{ID: 2, SectionName: "A"},
		{ID: 3, SectionName: "A"},
		{ID: 4, SectionName: "B"},
		{ID: 5, SectionName: "B"},
	}
	answers := map[int]model.Answer{
		1: {QuestionID: 1, IsCorrect: true},
		2: {QuestionID: 2, IsCorrect: false},
		4: {QuestionID: 4, IsCorrect: true},
	}

	scores := sectionScores(questions, answers)

	if len(scores) != 2 {
		t.Fatalf("sections = %d, want 2", len(scores))
	}

	a := scores["A"]
	if a.Total != 3 || a.Correct != 1 || a.Incorrect != 1 {
		t.Errorf("section A = %+v", a)
	}
	if a.Score != 0.75 || a.Percentage != 25 {
		t.Errorf("section A score = %v/%d, want 0.75/25", a.Score, a.Percentage)
	}

	b := scores["B"]
	if b.Total != 2 || b.Correct != 1 || b.Incorrect != 0 {
		t.Errorf("section B = %+v", b)
	}
	if b.Percentage != 50 {
		t.Errorf("section B percentage = %d, want 50", b.Percentage)
	}

	if a.Total+b.Total != len(questions) {
		t.Errorf("section totals %d+%d do not cover %d questions", a.Total, b.Total, len(questions))
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{605, "10:05"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{5400, "1:30:00"},
		{7261, "2:01:01"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTimeTakenFallsBackToElapsedDuration(t *testing.T) {
	// Without both timestamps the result reports configured duration minus
	// what is left on the clock.
	def := testDefinition()
	s := NewSession("user-1", "test-1", def, newFakeClock())
	s.Start(model.LanguageEnglish)
	for i := 0; i < 30; i++ {
		s.Tick()
	}
	s.startedAt = nil // simulate a legacy snapshot without a start timestamp

	res, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.TimeTakenSeconds != 30 {
		t.Errorf("time taken = %d, want 30", res.TimeTakenSeconds)
	}
}
