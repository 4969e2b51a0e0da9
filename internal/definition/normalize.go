package definition

import "github.com/ssc-prep/mocktest-backend/internal/model"

// defaultDurationMinutes applies when the document omits its duration.
const defaultDurationMinutes = 90

// rawDefinition mirrors the wire shape of a test definition document:
// { "name": ..., "duration": minutes, "mockTest": [ { "section": ...,
// "questions": [...] } ] }. All fields are optional on the wire.
type rawDefinition struct {
	Name     string       `json:"name"`
	Duration *int         `json:"duration"`
	MockTest []rawSection `json:"mockTest"`
}

type rawSection struct {
	Section   string        `json:"section"`
	Questions []rawQuestion `json:"questions"`
}

type rawBilingual struct {
	Hindi   string `json:"hindi"`
	English string `json:"english"`
}

type rawOptions struct {
	Hindi   []string `json:"hindi"`
	English []string `json:"english"`
}

type rawQuestion struct {
	Question           *rawBilingual `json:"question"`
	Options            *rawOptions   `json:"options"`
	CorrectAnswer      *rawBilingual `json:"correctAnswer"`
	Solution           *rawBilingual `json:"solution"`
	IsPastYearQuestion *bool         `json:"isPastYearQuestion"`
	Year               string        `json:"year"`
	Paper              string        `json:"paper"`
}

// Normalize converts a raw document into a TestDefinition in a single pass,
// applying all defensive defaulting here so that nothing downstream has to
// re-check optional fields: missing text becomes "", missing option lists
// become empty slices, missing booleans become false, and a missing duration
// becomes 90 minutes.
func Normalize(testID string, raw *rawDefinition) *model.TestDefinition {
	minutes := defaultDurationMinutes
	if raw.Duration != nil && *raw.Duration > 0 {
		minutes = *raw.Duration
	}

	name := raw.Name
	if name == "" {
		name = testID
	}

	sections := make([]model.Section, 0, len(raw.MockTest))
	for _, rs := range raw.MockTest {
		questions := make([]model.QuestionDef, 0, len(rs.Questions))
		for _, rq := range rs.Questions {
			questions = append(questions, normalizeQuestion(rq))
		}
		sections = append(sections, model.Section{
			Name:      rs.Section,
			Questions: questions,
		})
	}

	return &model.TestDefinition{
		Name:            name,
		DurationSeconds: minutes * 60,
		Sections:        sections,
	}
}

func normalizeQuestion(rq rawQuestion) model.QuestionDef {
	q := model.QuestionDef{
		QuestionText:  bilingual(rq.Question),
		CorrectAnswer: bilingual(rq.CorrectAnswer),
		SolutionText:  bilingual(rq.Solution),
		Year:          rq.Year,
		Paper:         rq.Paper,
	}

	q.Options = model.BilingualOptions{Hindi: []string{}, English: []string{}}
	if rq.Options != nil {
		if rq.Options.Hindi != nil {
			q.Options.Hindi = rq.Options.Hindi
		}
		if rq.Options.English != nil {
			q.Options.English = rq.Options.English
		}
	}

	if rq.IsPastYearQuestion != nil {
		q.IsPastYearQuestion = *rq.IsPastYearQuestion
	}

	return q
}

func bilingual(b *rawBilingual) model.BilingualText {
	if b == nil {
		return model.BilingualText{}
	}
	return model.BilingualText{Hindi: b.Hindi, English: b.English}
}
