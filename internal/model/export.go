package model

import "time"

// HistoryExport is the top-level JSON structure for attempt history export.
type HistoryExport struct {
	ExportedAt time.Time `json:"exported_at"`
	Bank       string    `json:"bank,omitempty"`
	Attempts   []Attempt `json:"attempts"`
	Summary    Summary   `json:"summary"`
}

// Summary aggregates scores across exported attempts.
type Summary struct {
	Attempts  int `json:"attempts"`
	Questions int `json:"questions"`
	Correct   int `json:"correct"`
	Best      int `json:"best_percent"`
}

// Summarize computes totals over attempts.
func Summarize(attempts []Attempt) Summary {
	var s Summary
	for _, a := range attempts {
		s.Attempts++
		s.Questions += a.Total
		s.Correct += a.Score
		if p := a.Review().Percent(); p > s.Best {
			s.Best = p
		}
	}
	return s
}
