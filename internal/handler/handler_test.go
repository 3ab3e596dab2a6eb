package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/quizdrill/internal/i18n"
	"github.com/pavelanni/quizdrill/internal/model"
	"github.com/pavelanni/quizdrill/internal/store"
)

type fakeExplainer struct {
	calls int
	text  string
	err   error
}

func (f *fakeExplainer) Explain(_ context.Context, entry model.MissedEntry) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func setup(t *testing.T, l Explainer) (*store.Store, http.Handler) {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	r := chi.NewRouter()
	r.Use(i18n.Middleware("en"))
	New(s, l).Routes(r)
	return s, r
}

func recordAttempt(t *testing.T, s *store.Store) string {
	t.Helper()
	id, err := s.RecordReview(model.Attempt{
		Bank:      "builtin:standard",
		Variant:   model.VariantStandard,
		StartedAt: time.Now().Add(-time.Minute),
	}, model.Review{
		Score: 1,
		Total: 2,
		Missed: []model.MissedEntry{{
			Question:        "Which command lists files?",
			Options:         []string{"`ls`", "`cd`", "`rm`"},
			CorrectAnswers:  []string{"`ls`"},
			SelectedAnswers: []string{"`rm`"},
		}},
	})
	if err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	return id
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s, h := setup(t, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No attempts recorded yet.") {
		t.Errorf("empty index body:\n%s", rec.Body.String())
	}

	id := recordAttempt(t, s)
	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	for _, want := range []string{"1 attempt recorded.", "/attempts/" + id, "1 / 2 (50%)"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestIndexRussian(t *testing.T) {
	_, h := setup(t, nil)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/?lang=ru", nil))
	if !strings.Contains(rec.Body.String(), "История попыток") {
		t.Errorf("expected russian title:\n%s", rec.Body.String())
	}
}

func TestAttemptPage(t *testing.T) {
	s, h := setup(t, nil)
	id := recordAttempt(t, s)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/attempts/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"You answered 1 out of 2 questions correctly.",
		`<li class="mark-correct">✔ <code>ls</code></li>`,
		`<li class="mark-wrong">✘ <code>rm</code></li>`,
		`<li><code>cd</code></li>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("attempt page missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "/explain") {
		t.Error("explain form rendered without an LLM")
	}
}

func TestAttemptNotFound(t *testing.T) {
	_, h := setup(t, nil)

	for _, path := range []string{"/attempts/nope", "/attempts/nope.json"} {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestAttemptJSON(t *testing.T) {
	s, h := setup(t, nil)
	id := recordAttempt(t, s)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/attempts/"+id+".json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var a model.Attempt
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.ID != id || a.Score != 1 || len(a.Missed) != 1 {
		t.Errorf("attempt = %+v", a)
	}
}

func TestExplain(t *testing.T) {
	l := &fakeExplainer{text: "`ls` lists directory contents."}
	s, h := setup(t, l)
	id := recordAttempt(t, s)

	page := do(t, h, httptest.NewRequest(http.MethodGet, "/attempts/"+id, nil))
	if !strings.Contains(page.Body.String(), "/attempts/"+id+"/missed/1/explain") {
		t.Fatal("explain form missing")
	}

	req := httptest.NewRequest(http.MethodPost, "/attempts/"+id+"/missed/1/explain", nil)
	req.Header.Set("HX-Request", "true")
	rec := do(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "lists directory contents.") {
		t.Errorf("fragment = %s", rec.Body.String())
	}

	m, err := s.GetMissed(id, 1)
	if err != nil {
		t.Fatalf("GetMissed: %v", err)
	}
	if m.Explanation != l.text {
		t.Errorf("stored explanation = %q", m.Explanation)
	}

	// A stored explanation is reused and a plain form post redirects.
	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/attempts/"+id+"/missed/1/explain", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if l.calls != 1 {
		t.Errorf("explainer calls = %d, want 1", l.calls)
	}
}

func TestExplainErrors(t *testing.T) {
	l := &fakeExplainer{err: errors.New("model offline")}
	s, h := setup(t, l)
	id := recordAttempt(t, s)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"bad position", "/attempts/" + id + "/missed/x/explain", http.StatusBadRequest},
		{"unknown position", "/attempts/" + id + "/missed/9/explain", http.StatusNotFound},
		{"llm failure", "/attempts/" + id + "/missed/1/explain", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodPost, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestExplainDisabled(t *testing.T) {
	s, h := setup(t, nil)
	id := recordAttempt(t, s)

	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/attempts/"+id+"/missed/1/explain", nil))
	if rec.Code == http.StatusOK || rec.Code == http.StatusSeeOther {
		t.Errorf("explain should not be routed without an LLM, got %d", rec.Code)
	}
}

func TestExport(t *testing.T) {
	s, h := setup(t, nil)
	recordAttempt(t, s)

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/export.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var exp model.HistoryExport
	if err := json.Unmarshal(rec.Body.Bytes(), &exp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(exp.Attempts) != 1 || exp.Summary.Correct != 1 {
		t.Errorf("export = %+v", exp)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/export.json?bank=other", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &exp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(exp.Attempts) != 0 {
		t.Errorf("filtered export has %d attempts", len(exp.Attempts))
	}
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("bank_file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/banks/check", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBankCheck(t *testing.T) {
	_, h := setup(t, nil)

	tests := []struct {
		name     string
		filename string
		content  string
		wantCode int
		want     string
	}{
		{
			name:     "valid yaml",
			filename: "bank.yaml",
			content:  "- question: 2+2?\n  options: [\"3\", \"4\"]\n  answer: [\"4\"]\n",
			wantCode: http.StatusOK,
			want:     "The bank is valid: 1 questions.",
		},
		{
			name:     "answer outside options",
			filename: "bank.json",
			content:  `[{"question":"2+2?","options":["3","4"],"answer":["5"]}]`,
			wantCode: http.StatusUnprocessableEntity,
			want:     "is not among the options",
		},
		{
			name:     "broken json",
			filename: "bank.json",
			content:  `[{`,
			wantCode: http.StatusUnprocessableEntity,
			want:     "bank.json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, uploadRequest(t, tt.filename, tt.content))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, rec.Body.String())
			}
		})
	}

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/banks/check", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Check question bank") {
		t.Errorf("check page status = %d", rec.Code)
	}
}
