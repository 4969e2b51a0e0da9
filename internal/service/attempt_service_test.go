package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/ssc-prep/mocktest-backend/internal/config"
	"github.com/ssc-prep/mocktest-backend/internal/model"
	"github.com/ssc-prep/mocktest-backend/internal/sink"
	"github.com/ssc-prep/mocktest-backend/internal/store"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type stubSource struct {
	def *model.TestDefinition
	err error
}

func (s *stubSource) Load(_ context.Context, _ string) (*model.TestDefinition, error) {
	return s.def, s.err
}

type captureSink struct {
	payloads []*sink.Payload
	err      error
}

func (c *captureSink) Deliver(_ context.Context, p *sink.Payload) error {
	c.payloads = append(c.payloads, p)
	return c.err
}

func stubDefinition() *model.TestDefinition {
	qs := make([]model.QuestionDef, 4)
	for i := range qs {
		qs[i] = model.QuestionDef{
			Options:       model.BilingualOptions{English: []string{"A", "B"}, Hindi: []string{"क", "ख"}},
			CorrectAnswer: model.BilingualText{English: "A", Hindi: "क"},
		}
	}
	return &model.TestDefinition{
		Name:            "Mock 1",
		DurationSeconds: 120,
		Sections:        []model.Section{{Name: "General", Questions: qs}},
	}
}

func newTestService(def *model.TestDefinition, snaps store.SnapshotStore, dst sink.ResultSink) *AttemptService {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	var sinks []sink.ResultSink
	if dst != nil {
		sinks = append(sinks, dst)
	}
	return NewAttemptService(&stubSource{def: def}, snaps, sinks, clock, zerolog.Nop())
}

func TestStartPersistsSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := store.NewMemoryStore()
	svc := newTestService(stubDefinition(), snaps, nil)

	state, err := svc.Start(ctx, "u1", "t1", model.LanguageEnglish)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if state.Status != model.AttemptStatusActive {
		t.Fatalf("status = %s", state.Status)
	}

	snap, err := snaps.Load(ctx, config.CacheKey.AttemptSnapshotKey("u1", "t1"))
	if err != nil {
		t.Fatalf("no snapshot persisted: %v", err)
	}
	if snap.Status != model.AttemptStatusActive || snap.TimeRemaining != 120 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDefinitionFailureSurfaced(t *testing.T) {
	svc := NewAttemptService(
		&stubSource{err: errors.New("connection refused")},
		store.NewMemoryStore(), nil, &fakeClock{}, zerolog.Nop(),
	)

	_, err := svc.Start(context.Background(), "u1", "t1", model.LanguageEnglish)
	if !errors.Is(err, ErrTestUnavailable) {
		t.Fatalf("err = %v, want ErrTestUnavailable", err)
	}
}

func TestRecoveryRestoresActiveSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := store.NewMemoryStore()

	// First service instance: run part of an attempt.
	svc1 := newTestService(stubDefinition(), snaps, nil)
	svc1.Start(ctx, "u1", "t1", model.LanguageHindi)
	svc1.Answer(ctx, "u1", "t1", 2, "क")
	svc1.GoTo(ctx, "u1", "t1", 3)

	// Second instance simulates a process restart with the same store.
	svc2 := newTestService(stubDefinition(), snaps, nil)
	state, err := svc2.State(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("State: %v", err)
	}

	if state.Status != model.AttemptStatusActive {
		t.Fatalf("recovered status = %s, want ACTIVE", state.Status)
	}
	if state.CurrentIndex != 3 {
		t.Errorf("recovered index = %d, want 3", state.CurrentIndex)
	}
	if a, ok := state.Answers[2]; !ok || !a.IsCorrect {
		t.Errorf("recovered answers = %+v", state.Answers)
	}
	if state.DisplayLanguage != model.LanguageHindi {
		t.Errorf("recovered language = %s", state.DisplayLanguage)
	}
}

func TestRecoverySkipsCompletedSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := store.NewMemoryStore()
	key := config.CacheKey.AttemptSnapshotKey("u1", "t1")

	// A completed snapshot left behind (e.g. clear failed after submit).
	ended := time.Now()
	snaps.Save(ctx, key, &model.Snapshot{
		UserID: "u1", TestID: "t1",
		Status:  model.AttemptStatusCompleted,
		EndedAt: &ended,
	})

	svc := newTestService(stubDefinition(), snaps, nil)
	state, err := svc.State(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Status != model.AttemptStatusNotStarted {
		t.Fatalf("status = %s, want NOT_STARTED (completed snapshot must not restore)", state.Status)
	}
}

func TestSubmitClearsSnapshotAndDelivers(t *testing.T) {
	ctx := context.Background()
	snaps := store.NewMemoryStore()
	capture := &captureSink{}
	svc := newTestService(stubDefinition(), snaps, capture)

	svc.Start(ctx, "u1", "t1", model.LanguageEnglish)
	svc.Answer(ctx, "u1", "t1", 1, "A")
	svc.Answer(ctx, "u1", "t1", 2, "B")

	result, err := svc.Submit(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Correct != 1 || result.Incorrect != 1 || result.Unanswered != 2 {
		t.Fatalf("result = %+v", result)
	}
	if result.Score != 0.75 {
		t.Errorf("score = %v, want 0.75", result.Score)
	}

	if _, err := snaps.Load(ctx, config.CacheKey.AttemptSnapshotKey("u1", "t1")); err != store.ErrNotFound {
		t.Errorf("snapshot not cleared: %v", err)
	}

	if len(capture.payloads) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(capture.payloads))
	}
	p := capture.payloads[0]
	if p.UserID != "u1" || p.TestName != "Mock 1" || p.TotalQuestions != 4 {
		t.Errorf("payload = %+v", p)
	}
	if p.Sections["General"].Total != 4 {
		t.Errorf("sections = %+v", p.Sections)
	}

	// Double submit is rejected by the state transition.
	if _, err := svc.Submit(ctx, "u1", "t1"); err == nil {
		t.Fatal("second Submit succeeded")
	}
	if len(capture.payloads) != 1 {
		t.Fatalf("second submit delivered again: %d", len(capture.payloads))
	}
}

func TestSinkFailureDoesNotRevertCompletion(t *testing.T) {
	ctx := context.Background()
	capture := &captureSink{err: errors.New("sink unreachable")}
	svc := newTestService(stubDefinition(), store.NewMemoryStore(), capture)

	svc.Start(ctx, "u1", "t1", model.LanguageEnglish)
	if _, err := svc.Submit(ctx, "u1", "t1"); err != nil {
		t.Fatalf("Submit with failing sink: %v", err)
	}

	// Results still render from memory.
	res, err := svc.Results(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if res.TotalQuestions != 4 {
		t.Errorf("result = %+v", res)
	}
}

func TestAutoSubmitViaTick(t *testing.T) {
	ctx := context.Background()
	def := stubDefinition()
	def.DurationSeconds = 2
	snaps := store.NewMemoryStore()
	capture := &captureSink{}
	svc := newTestService(def, snaps, capture)

	svc.Start(ctx, "u1", "t1", model.LanguageEnglish)
	svc.Answer(ctx, "u1", "t1", 1, "A")

	// Drive the ticker loop body directly instead of running Run.
	svc.tickAll(ctx)
	svc.tickAll(ctx)
	svc.tickAll(ctx) // past zero; must be a no-op

	state, _ := svc.State(ctx, "u1", "t1")
	if state.Status != model.AttemptStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", state.Status)
	}
	if len(capture.payloads) != 1 {
		t.Fatalf("auto-submit delivered %d times, want 1", len(capture.payloads))
	}
	if _, err := snaps.Load(ctx, config.CacheKey.AttemptSnapshotKey("u1", "t1")); err != store.ErrNotFound {
		t.Errorf("snapshot not cleared on auto-submit: %v", err)
	}
}

func TestPaperRedactsAnswersUntilCompleted(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(stubDefinition(), store.NewMemoryStore(), nil)
	svc.Start(ctx, "u1", "t1", model.LanguageEnglish)

	paper, err := svc.Paper(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("Paper: %v", err)
	}
	for _, q := range paper {
		if q.CorrectAnswer.English != "" || q.CorrectAnswer.Hindi != "" {
			t.Fatal("correct answer leaked before completion")
		}
	}

	svc.Submit(ctx, "u1", "t1")
	paper, _ = svc.Paper(ctx, "u1", "t1")
	if paper[0].CorrectAnswer.English != "A" {
		t.Fatal("correct answer missing after completion")
	}
}

func TestResetClearsSnapshotAndRestartsClock(t *testing.T) {
	ctx := context.Background()
	snaps := store.NewMemoryStore()
	svc := newTestService(stubDefinition(), snaps, nil)

	svc.Start(ctx, "u1", "t1", model.LanguageEnglish)
	svc.Submit(ctx, "u1", "t1")

	state, err := svc.Reset(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if state.Status != model.AttemptStatusNotStarted || state.TimeRemaining != 120 {
		t.Fatalf("state after reset = %+v", state)
	}
	if _, err := snaps.Load(ctx, config.CacheKey.AttemptSnapshotKey("u1", "t1")); err != store.ErrNotFound {
		t.Errorf("snapshot not cleared on reset: %v", err)
	}
}
