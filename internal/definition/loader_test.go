package definition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/ssc-prep/mocktest-backend/internal/config"
)

func testLoader(baseURL string) *Loader {
	cfg := &config.Config{
		TestSourceBaseURL:  baseURL,
		DefinitionCacheTTL: time.Minute,
	}
	return NewLoader(cfg, nil, zerolog.Nop())
}

func TestLoadParsesDocument(t *testing.T) {
	doc := `{
		"name": "SSC CGL Tier 1 Mock 3",
		"duration": 60,
		"mockTest": [
			{
				"section": "Reasoning",
				"questions": [
					{
						"question": {"hindi": "प्रश्न 1", "english": "Question 1"},
						"options": {"hindi": ["क", "ख"], "english": ["A", "B"]},
						"correctAnswer": {"hindi": "क", "english": "A"},
						"isPastYearQuestion": true,
						"year": "2022"
					}
				]
			},
			{
				"section": "English",
				"questions": [
					{
						"question": {"english": "Question 2"},
						"options": {"english": ["Yes", "No"]},
						"correctAnswer": {"english": "Yes"}
					}
				]
			}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tests/cgl-mock-3.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	def, err := testLoader(srv.URL).Load(context.Background(), "cgl-mock-3")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if def.Name != "SSC CGL Tier 1 Mock 3" {
		t.Errorf("name = %q", def.Name)
	}
	if def.DurationSeconds != 3600 {
		t.Errorf("duration = %d, want 3600", def.DurationSeconds)
	}
	if len(def.Sections) != 2 || def.QuestionCount() != 2 {
		t.Fatalf("sections = %d, questions = %d", len(def.Sections), def.QuestionCount())
	}

	q := def.Sections[0].Questions[0]
	if !q.IsPastYearQuestion || q.Year != "2022" {
		t.Errorf("past-year metadata lost: %+v", q)
	}
	if q.CorrectAnswer.Hindi != "क" || q.CorrectAnswer.English != "A" {
		t.Errorf("correct answer = %+v", q.CorrectAnswer)
	}
}

func TestLoadDefaultsApplied(t *testing.T) {
	// No duration, sparse question fields.
	doc := `{"mockTest": [{"section": "GK", "questions": [{}]}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	def, err := testLoader(srv.URL).Load(context.Background(), "sparse")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if def.DurationSeconds != 90*60 {
		t.Errorf("default duration = %d, want %d", def.DurationSeconds, 90*60)
	}
	if def.Name != "sparse" {
		t.Errorf("name fallback = %q, want test id", def.Name)
	}

	q := def.Sections[0].Questions[0]
	if q.QuestionText.English != "" || q.QuestionText.Hindi != "" {
		t.Errorf("question text not defaulted: %+v", q.QuestionText)
	}
	if q.Options.Hindi == nil || q.Options.English == nil {
		t.Error("option slices must default to empty, not nil")
	}
	if q.IsPastYearQuestion {
		t.Error("isPastYearQuestion must default to false")
	}
}

func TestLoadSurfacesFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := testLoader(srv.URL).Load(context.Background(), "any"); err == nil {
		t.Fatal("expected error on non-200 response")
	}

	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv2.Close()

	if _, err := testLoader(srv2.URL).Load(context.Background(), "any"); err == nil {
		t.Fatal("expected error on malformed document")
	}
}
