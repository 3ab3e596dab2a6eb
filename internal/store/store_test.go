package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/pavelanni/quizdrill/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testReview() model.Review {
	return model.Review{
		Score: 1,
		Total: 2,
		Missed: []model.MissedEntry{{
			Question:        "pick primes",
			Options:         []string{"2", "3", "4"},
			CorrectAnswers:  []string{"2", "3"},
			SelectedAnswers: []string{"2", "4"},
		}},
	}
}

func saveTestAttempt(t *testing.T, s *Store, bank string, completed time.Time) string {
	t.Helper()
	id, err := s.RecordReview(model.Attempt{
		Bank:        bank,
		Variant:     model.VariantStandard,
		Digest:      "abc123",
		StartedAt:   completed.Add(-5 * time.Minute),
		CompletedAt: completed,
	}, testReview())
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	return id
}

func TestAttemptRoundTrip(t *testing.T) {
	s := newTestStore(t)

	count, err := s.AttemptCount()
	if err != nil {
		t.Fatalf("AttemptCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 attempts, got %d", count)
	}

	id := saveTestAttempt(t, s, "builtin:standard", time.Now())
	if id == "" {
		t.Fatal("expected generated attempt ID")
	}

	a, err := s.GetAttempt(id)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if a.Score != 1 || a.Total != 2 {
		t.Errorf("expected 1/2, got %d/%d", a.Score, a.Total)
	}
	if a.Bank != "builtin:standard" || a.Variant != model.VariantStandard || a.Digest != "abc123" {
		t.Errorf("unexpected metadata: %+v", a)
	}
	if len(a.Missed) != 1 {
		t.Fatalf("expected 1 missed entry, got %d", len(a.Missed))
	}
	m := a.Missed[0]
	if m.Position != 1 || m.Question != "pick primes" {
		t.Errorf("unexpected missed entry: %+v", m)
	}
	if !slices.Equal(m.SelectedAnswers, []string{"2", "4"}) {
		t.Errorf("selected = %v", m.SelectedAnswers)
	}
	if !slices.Equal(m.CorrectAnswers, []string{"2", "3"}) {
		t.Errorf("correct = %v", m.CorrectAnswers)
	}
	if !slices.Equal(m.Options, []string{"2", "3", "4"}) {
		t.Errorf("options = %v", m.Options)
	}

	// Not found.
	_, err = s.GetAttempt("missing")
	if err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestSaveAttemptKeepsGivenID(t *testing.T) {
	s := newTestStore(t)
	id, err := s.SaveAttempt(model.Attempt{ID: "fixed", Bank: "b", Score: 3, Total: 3, StartedAt: time.Now()})
	if err != nil {
		t.Fatalf("SaveAttempt: %v", err)
	}
	if id != "fixed" {
		t.Errorf("id = %q, want fixed", id)
	}
	a, err := s.GetAttempt("fixed")
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if len(a.Missed) != 0 {
		t.Errorf("expected no missed entries, got %d", len(a.Missed))
	}
	if a.CompletedAt.IsZero() {
		t.Error("completed_at not defaulted")
	}

	if _, err := s.SaveAttempt(model.Attempt{ID: "fixed", Bank: "b", StartedAt: time.Now()}); err == nil {
		t.Error("expected duplicate ID to fail")
	}
}

func TestListAttemptsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	older := saveTestAttempt(t, s, "a", base)
	newer := saveTestAttempt(t, s, "b", base.Add(time.Hour))

	list, err := s.ListAttempts()
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(list))
	}
	if list[0].ID != newer || list[1].ID != older {
		t.Errorf("order = [%s %s], want [%s %s]", list[0].ID, list[1].ID, newer, older)
	}
}

func TestExplanations(t *testing.T) {
	s := newTestStore(t)
	id := saveTestAttempt(t, s, "b", time.Now())

	if err := s.SetExplanation(id, 1, "2 and 3 are the only primes listed."); err != nil {
		t.Fatalf("SetExplanation: %v", err)
	}
	m, err := s.GetMissed(id, 1)
	if err != nil {
		t.Fatalf("GetMissed: %v", err)
	}
	if m.Explanation != "2 and 3 are the only primes listed." {
		t.Errorf("explanation = %q", m.Explanation)
	}

	if err := s.SetExplanation(id, 5, "x"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows for unknown position, got %v", err)
	}
	if _, err := s.GetMissed(id, 5); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestExportAll(t *testing.T) {
	s := newTestStore(t)
	saveTestAttempt(t, s, "bank-a", time.Now())
	saveTestAttempt(t, s, "bank-b", time.Now())

	tests := []struct {
		name      string
		bank      string
		wantCount int
	}{
		{"all banks", "", 2},
		{"one bank", "bank-a", 1},
		{"no match", "bank-z", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := s.ExportAll(tt.bank)
			if err != nil {
				t.Fatalf("ExportAll: %v", err)
			}
			if len(exp.Attempts) != tt.wantCount {
				t.Fatalf("expected %d attempts, got %d", tt.wantCount, len(exp.Attempts))
			}
			if exp.Summary.Attempts != tt.wantCount {
				t.Errorf("summary attempts = %d", exp.Summary.Attempts)
			}
			for _, a := range exp.Attempts {
				if len(a.Missed) != 1 {
					t.Errorf("attempt %s exported without missed entries", a.ID)
				}
			}
			if tt.wantCount > 0 && exp.Summary.Best != 50 {
				t.Errorf("best = %d, want 50", exp.Summary.Best)
			}
		})
	}
}

func TestNewFailures(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.db")
	if err := os.WriteFile(garbage, []byte("this is not a sqlite database, just some text padding it out"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing directory", filepath.Join(dir, "missing", "quiz.db")},
		{"not a database", garbage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.path)
			if err == nil {
				s.Close()
				t.Fatal("expected error")
			}
			if s != nil {
				t.Errorf("store = %v, want nil", s)
			}
		})
	}
}
