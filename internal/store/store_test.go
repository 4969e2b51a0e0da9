package store

import (
	"context"
	"testing"
	"time"

	"github.com/ssc-prep/mocktest-backend/internal/model"
)

func fullSnapshot() *model.Snapshot {
	started := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	paused := started.Add(12*time.Minute + 340*time.Millisecond)
	return &model.Snapshot{
		UserID:       "user-7",
		TestID:       "cgl-mock-1",
		Status:       model.AttemptStatusActive,
		CurrentIndex: 14,
		Answers: map[int]model.Answer{
			1:  {QuestionID: 1, SelectedOption: "A", IsCorrect: true},
			15: {QuestionID: 15, SelectedOption: "C", IsCorrect: false},
		},
		TimeRemaining:      4312,
		TotalPausedSeconds: 73,
		DisplayLanguage:    model.LanguageHindi,
		StartedAt:          &started,
		LastPauseAt:        &paused,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	key := "user:user-7:test:cgl-mock-1:attempt"

	if _, err := s.Load(ctx, key); err != ErrNotFound {
		t.Fatalf("Load on empty store = %v, want ErrNotFound", err)
	}

	want := fullSnapshot()
	if err := s.Save(ctx, key, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.UserID != want.UserID || got.TestID != want.TestID ||
		got.Status != want.Status || got.CurrentIndex != want.CurrentIndex ||
		got.TimeRemaining != want.TimeRemaining ||
		got.TotalPausedSeconds != want.TotalPausedSeconds ||
		got.DisplayLanguage != want.DisplayLanguage {
		t.Fatalf("round trip mismatch: %+v != %+v", got, want)
	}
	if len(got.Answers) != 2 || got.Answers[15].SelectedOption != "C" {
		t.Fatalf("answers round trip: %+v", got.Answers)
	}

	// Timestamps must compare equal as instants, sub-second precision kept.
	if !got.StartedAt.Equal(*want.StartedAt) {
		t.Errorf("startedAt %v != %v", got.StartedAt, want.StartedAt)
	}
	if !got.LastPauseAt.Equal(*want.LastPauseAt) {
		t.Errorf("lastPauseAt %v != %v", got.LastPauseAt, want.LastPauseAt)
	}
	if got.EndedAt != nil {
		t.Errorf("endedAt = %v, want nil", got.EndedAt)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	key := "user:u:test:t:attempt"

	if err := s.Save(ctx, key, fullSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(ctx, key); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Load(ctx, key); err != ErrNotFound {
		t.Fatalf("Load after clear = %v, want ErrNotFound", err)
	}

	// Clearing a missing key is not an error.
	if err := s.Clear(ctx, "missing"); err != nil {
		t.Fatalf("Clear missing key: %v", err)
	}
}
