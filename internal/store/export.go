package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/quizdrill/internal/model"
)

// ExportAll builds an export of every attempt, including missed questions.
// A non-empty bank restricts the export to attempts on that bank.
func (s *Store) ExportAll(bank string) (model.HistoryExport, error) {
	list, err := s.ListAttempts()
	if err != nil {
		return model.HistoryExport{}, fmt.Errorf("list attempts: %w", err)
	}

	attempts := []model.Attempt{}
	for _, a := range list {
		if bank != "" && a.Bank != bank {
			continue
		}
		full, err := s.GetAttempt(a.ID)
		if err != nil {
			return model.HistoryExport{}, fmt.Errorf("get attempt %s: %w", a.ID, err)
		}
		attempts = append(attempts, full)
	}

	return model.HistoryExport{
		ExportedAt: time.Now().UTC(),
		Bank:       bank,
		Attempts:   attempts,
		Summary:    model.Summarize(attempts),
	}, nil
}
