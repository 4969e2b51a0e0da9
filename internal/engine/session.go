package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/ssc-prep/mocktest-backend/internal/model"
)

// Lifecycle errors returned when an operation's precondition does not hold.
var (
	ErrAlreadyStarted = errors.New("attempt already started")
	ErrNotActive      = errors.New("attempt is not active")
	ErrNotPaused      = errors.New("attempt is not paused")
	ErrNotCompleted   = errors.New("attempt is not completed")
	ErrNotSubmittable = errors.New("attempt cannot be submitted in its current state")
	ErrNotRestorable  = errors.New("snapshot is not an active attempt")
)

// Session owns the lifecycle of one timed mock test attempt:
// NotStarted → Active ⇄ Paused → Completed. Completed is terminal except for
// the review-mode flag. All methods are safe for concurrent use; the state
// preconditions make interleavings of Tick with pause/submit benign.
type Session struct {
	mu    sync.Mutex
	clock Clock

	userID string
	testID string
	def    *model.TestDefinition

	questions    []model.RuntimeQuestion
	currentIndex int
	answers      map[int]model.Answer

	status        model.AttemptStatus
	reviewMode    bool
	timeRemaining int
	language      model.Language

	startedAt   *time.Time
	endedAt     *time.Time
	lastPauseAt *time.Time
	totalPaused int
}

// NewSession creates an attempt in the NotStarted state for the given test
// definition. The clock is injected so tests can control time.
func NewSession(userID, testID string, def *model.TestDefinition, clock Clock) *Session {
	if clock == nil {
		clock = SystemClock()
	}
	return &Session{
		clock:         clock,
		userID:        userID,
		testID:        testID,
		def:           def,
		answers:       make(map[int]model.Answer),
		status:        model.AttemptStatusNotStarted,
		timeRemaining: def.DurationSeconds,
		language:      model.LanguageEnglish,
	}
}

// Start materializes the question set and activates the countdown.
// Starting an attempt that is not NotStarted is rejected; the caller must
// Reset a completed attempt first.
func (s *Session) Start(lang model.Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.AttemptStatusNotStarted {
		return ErrAlreadyStarted
	}

	now := s.clock.Now()
	s.questions = s.def.FlattenQuestions()
	s.answers = make(map[int]model.Answer)
	s.currentIndex = 0
	s.timeRemaining = s.def.DurationSeconds
	s.totalPaused = 0
	s.lastPauseAt = nil
	s.endedAt = nil
	s.reviewMode = false
	s.startedAt = &now
	s.language = lang
	s.status = model.AttemptStatusActive
	return nil
}

// Pause stops the countdown. Further ticks are ignored until Resume.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.AttemptStatusActive {
		return ErrNotActive
	}
	now := s.clock.Now()
	s.lastPauseAt = &now
	s.status = model.AttemptStatusPaused
	return nil
}

// Resume restarts the countdown from the remaining time held at pause.
// The paused duration is accumulated separately and never charged against
// the exam clock.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.AttemptStatusPaused {
		return ErrNotPaused
	}
	if s.lastPauseAt != nil {
		s.totalPaused += int(s.clock.Now().Sub(*s.lastPauseAt) / time.Second)
		s.lastPauseAt = nil
	}
	s.status = model.AttemptStatusActive
	return nil
}

// Tick decrements the countdown by one second. It is a no-op unless the
// attempt is Active, which guards against ticks racing pause or submit.
// When the countdown reaches zero the attempt transitions to Completed and
// Tick reports true exactly once; the caller must then run the submit path.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.AttemptStatusActive {
		return false
	}
	if s.timeRemaining > 0 {
		s.timeRemaining--
	}
	if s.timeRemaining > 0 {
		return false
	}

	now := s.clock.Now()
	s.endedAt = &now
	s.status = model.AttemptStatusCompleted
	return true
}

// AnswerQuestion records the selected option for a question, overwriting any
// prior answer. Correctness is judged against the correct answer in the
// display language active right now; switching language later does not
// revalidate earlier answers. Unknown question ids and completed attempts
// are no-ops.
func (s *Session) AnswerQuestion(questionID int, selectedOption string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == model.AttemptStatusCompleted || s.status == model.AttemptStatusNotStarted {
		return
	}

	q := s.findQuestion(questionID)
	if q == nil {
		return
	}

	s.answers[questionID] = model.Answer{
		QuestionID:     questionID,
		SelectedOption: selectedOption,
		IsCorrect:      selectedOption == q.CorrectAnswer.In(s.language),
	}
}

// GoToQuestion moves the cursor, clamping out-of-range indexes instead of
// erroring.
func (s *Session) GoToQuestion(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goTo(index)
}

// NextQuestion advances the cursor by one (clamped).
func (s *Session) NextQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goTo(s.currentIndex + 1)
}

// PreviousQuestion moves the cursor back by one (clamped).
func (s *Session) PreviousQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goTo(s.currentIndex - 1)
}

func (s *Session) goTo(index int) {
	if len(s.questions) == 0 {
		s.currentIndex = 0
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.questions)-1 {
		index = len(s.questions) - 1
	}
	s.currentIndex = index
}

// SwitchLanguage changes the display language. Previously recorded answers
// keep the correctness computed at answering time.
func (s *Session) SwitchLanguage(lang model.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
}

// Submit finishes an Active or Paused attempt and returns the final result.
// The Completed transition itself is the double-submission guard: a
// timer-driven and a user-driven submit cannot both pass the precondition.
func (s *Session) Submit() (*model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.AttemptStatusActive && s.status != model.AttemptStatusPaused {
		return nil, ErrNotSubmittable
	}

	now := s.clock.Now()
	s.endedAt = &now
	s.status = model.AttemptStatusCompleted
	r := s.computeResult()
	return &r, nil
}

// Result returns the computed outcome of a completed attempt. Used by the
// auto-submit path, where Tick has already performed the transition.
func (s *Session) Result() (*model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.AttemptStatusCompleted {
		return nil, ErrNotCompleted
	}
	r := s.computeResult()
	return &r, nil
}

// SectionScores returns the per-section breakdown for the current answers.
func (s *Session) SectionScores() map[string]model.SectionScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sectionScores(s.questions, s.answers)
}

// Reset returns the attempt to NotStarted with the configured duration
// restored. The caller is responsible for clearing the snapshot store.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = nil
	s.answers = make(map[int]model.Answer)
	s.currentIndex = 0
	s.timeRemaining = s.def.DurationSeconds
	s.totalPaused = 0
	s.startedAt = nil
	s.endedAt = nil
	s.lastPauseAt = nil
	s.reviewMode = false
	s.status = model.AttemptStatusNotStarted
}

// EnterReviewMode switches a completed attempt into the read-only question
// walk-through, rewinding the cursor to the first question.
func (s *Session) EnterReviewMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.AttemptStatusCompleted {
		return ErrNotCompleted
	}
	s.reviewMode = true
	s.currentIndex = 0
	return nil
}

// Status returns the current lifecycle state.
func (s *Session) Status() model.AttemptStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) findQuestion(id int) *model.RuntimeQuestion {
	// Ids are sequential from 1, so the common case is a direct index hit.
	if id >= 1 && id <= len(s.questions) && s.questions[id-1].ID == id {
		return &s.questions[id-1]
	}
	for i := range s.questions {
		if s.questions[i].ID == id {
			return &s.questions[i]
		}
	}
	return nil
}

func (s *Session) computeResult() model.Result {
	r := scoreAnswers(s.questions, s.answers)
	r.TestName = s.def.Name
	r.TimeTakenSeconds = s.timeTaken()
	r.Sections = sectionScores(s.questions, s.answers)
	return r
}

// timeTaken is the raw wall-clock delta between start and end; paused time
// is tracked separately and deliberately not subtracted here.
func (s *Session) timeTaken() int {
	if s.startedAt != nil && s.endedAt != nil {
		return int(s.endedAt.Sub(*s.startedAt) / time.Second)
	}
	return s.def.DurationSeconds - s.timeRemaining
}
