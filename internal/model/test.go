package model

// Language selects which rendering of a bilingual field is displayed.
type Language string

const (
	LanguageHindi   Language = "hindi"
	LanguageEnglish Language = "english"
)

// Valid reports whether l is one of the supported display languages.
func (l Language) Valid() bool {
	return l == LanguageHindi || l == LanguageEnglish
}

// BilingualText holds the Hindi and English renderings of a text field.
// Either side may be an image URL instead of literal text.
type BilingualText struct {
	Hindi   string `json:"hindi"`
	English string `json:"english"`
}

// In returns the rendering for the given language.
func (b BilingualText) In(lang Language) string {
	if lang == LanguageHindi {
		return b.Hindi
	}
	return b.English
}

// BilingualOptions holds the answer options per language, in display order.
type BilingualOptions struct {
	Hindi   []string `json:"hindi"`
	English []string `json:"english"`
}

// In returns the option list for the given language.
func (b BilingualOptions) In(lang Language) []string {
	if lang == LanguageHindi {
		return b.Hindi
	}
	return b.English
}

// QuestionDef is a single question as described by a test definition.
// CorrectAnswer must match one option verbatim in the same language.
type QuestionDef struct {
	QuestionText       BilingualText    `json:"question_text"`
	Options            BilingualOptions `json:"options"`
	CorrectAnswer      BilingualText    `json:"correct_answer"`
	SolutionText       BilingualText    `json:"solution_text"`
	IsPastYearQuestion bool             `json:"is_past_year_question"`
	Year               string           `json:"year,omitempty"`
	Paper              string           `json:"paper,omitempty"`
}

// Section is a named, ordered group of questions within a test.
type Section struct {
	Name      string        `json:"name"`
	Questions []QuestionDef `json:"questions"`
}

// TestDefinition is the immutable description of a mock test, loaded once
// per attempt setup.
type TestDefinition struct {
	Name            string    `json:"name"`
	DurationSeconds int       `json:"duration_seconds"`
	Sections        []Section `json:"sections"`
}

// QuestionCount returns the total number of questions across all sections.
func (d *TestDefinition) QuestionCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Questions)
	}
	return n
}

// RuntimeQuestion is a QuestionDef flattened into attempt order with a
// synthetic 1-based id and a back-reference to its section. Owned by the
// session; never mutated after materialization.
type RuntimeQuestion struct {
	ID          int    `json:"id"`
	SectionName string `json:"section_name"`
	QuestionDef
}

// FlattenQuestions materializes RuntimeQuestions from the definition,
// assigning sequential ids starting at 1 in section order.
func (d *TestDefinition) FlattenQuestions() []RuntimeQuestion {
	questions := make([]RuntimeQuestion, 0, d.QuestionCount())
	id := 1
	for _, section := range d.Sections {
		for _, q := range section.Questions {
			questions = append(questions, RuntimeQuestion{
				ID:          id,
				SectionName: section.Name,
				QuestionDef: q,
			})
			id++
		}
	}
	return questions
}
