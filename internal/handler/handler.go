package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pavelanni/quizdrill/internal/handler/views"
	"github.com/pavelanni/quizdrill/internal/model"
	"github.com/pavelanni/quizdrill/internal/store"
)

// Explainer produces an explanation for a missed question.
type Explainer interface {
	Explain(ctx context.Context, entry model.MissedEntry) (string, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store *store.Store
	llm   Explainer // nil disables explanations
}

// New creates a new Handler. l may be nil.
func New(s *store.Store, l Explainer) *Handler {
	return &Handler{store: s, llm: l}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/attempts/{attemptID}.json", h.handleAttemptJSON)
	r.Get("/attempts/{attemptID}", h.handleAttemptPage)
	if h.llm != nil {
		r.Post("/attempts/{attemptID}/missed/{position}/explain", h.handleExplain)
	}
	r.Get("/export.json", h.handleExport)
	r.Get("/banks/check", h.handleBankCheckPage)
	r.Post("/banks/check", h.handleBankCheck)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.store.ListAttempts()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.IndexPage(attempts, model.Summarize(attempts)).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// getAttempt loads the attempt named in the URL and writes the error
// response itself when it cannot.
func (h *Handler) getAttempt(w http.ResponseWriter, r *http.Request) (model.Attempt, bool) {
	id := chi.URLParam(r, "attemptID")
	a, err := h.store.GetAttempt(id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "attempt not found", http.StatusNotFound)
		return model.Attempt{}, false
	}
	if err != nil {
		slog.Error("failed to get attempt", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return model.Attempt{}, false
	}
	return a, true
}

func (h *Handler) handleAttemptPage(w http.ResponseWriter, r *http.Request) {
	a, ok := h.getAttempt(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.AttemptPage(a, h.llm != nil).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleAttemptJSON(w http.ResponseWriter, r *http.Request) {
	a, ok := h.getAttempt(w, r)
	if !ok {
		return
	}
	writeJSON(w, a)
}

func (h *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	attemptID := chi.URLParam(r, "attemptID")
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		http.Error(w, "invalid position", http.StatusBadRequest)
		return
	}

	m, err := h.store.GetMissed(attemptID, position)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "missed question not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	text := m.Explanation
	if text == "" {
		text, err = h.llm.Explain(r.Context(), m.MissedEntry)
		if err != nil {
			slog.Error("LLM explanation failed", "attempt", attemptID, "position", position, "error", err)
			http.Error(w, "LLM explanation failed: "+err.Error(), http.StatusBadGateway)
			return
		}
		if err := h.store.SetExplanation(attemptID, position, text); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		slog.Info("stored explanation", "attempt", attemptID, "position", position)
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := views.Explanation(text).Render(r.Context(), w); err != nil {
			slog.Error("render error", "error", err)
		}
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/attempts/%s#missed-%d", attemptID, position), http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
