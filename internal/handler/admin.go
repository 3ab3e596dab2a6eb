package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/pavelanni/quizdrill/internal/bank"
	"github.com/pavelanni/quizdrill/internal/handler/views"
	"github.com/pavelanni/quizdrill/internal/quiz"
)

const maxBankUpload = 10 << 20

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	exp, err := h.store.ExportAll(r.URL.Query().Get("bank"))
	if err != nil {
		slog.Error("failed to export history", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="quizdrill-history.json"`)
	writeJSON(w, exp)
}

func (h *Handler) handleBankCheckPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.BankCheckPage(nil).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// handleBankCheck validates an uploaded bank without storing it.
func (h *Handler) handleBankCheck(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBankUpload); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("bank_file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	result := &views.BankCheck{Name: header.Filename}
	b, err := bank.Parse(header.Filename, data)
	if err == nil {
		result.Digest = b.Digest
		var qs []quiz.Question
		qs, err = quiz.Normalize(b.Questions, quiz.WithoutShuffle())
		result.Count = len(qs)
	}
	status := http.StatusOK
	if err != nil {
		result.Err = err.Error()
		status = http.StatusUnprocessableEntity
	}
	slog.Info("checked uploaded bank", "filename", header.Filename, "count", result.Count, "valid", err == nil)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := views.BankCheckPage(result).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}
