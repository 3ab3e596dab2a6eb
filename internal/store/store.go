package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/quizdrill/internal/model"

	_ "modernc.org/sqlite"
)

// Store keeps the history of completed attempts.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		bank TEXT NOT NULL,
		variant TEXT NOT NULL DEFAULT '',
		digest TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS missed_answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		attempt_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		question TEXT NOT NULL,
		options TEXT NOT NULL,
		correct TEXT NOT NULL,
		selected TEXT NOT NULL,
		explanation TEXT NOT NULL DEFAULT '',
		UNIQUE (attempt_id, position),
		FOREIGN KEY (attempt_id) REFERENCES attempts(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveAttempt records a completed attempt and its missed questions.
// An empty ID is replaced by a new UUID, which is returned.
func (s *Store) SaveAttempt(a model.Attempt) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CompletedAt.IsZero() {
		a.CompletedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO attempts (id, bank, variant, digest, score, total, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Bank, a.Variant, a.Digest, a.Score, a.Total, a.StartedAt, a.CompletedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert attempt: %w", err)
	}

	for i, m := range a.Missed {
		options, correct, selected, err := encodeEntry(m.MissedEntry)
		if err != nil {
			return "", err
		}
		_, err = tx.Exec(
			`INSERT INTO missed_answers (attempt_id, position, question, options, correct, selected, explanation)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, i+1, m.Question, options, correct, selected, m.Explanation,
		)
		if err != nil {
			return "", fmt.Errorf("insert missed answer %d: %w", i+1, err)
		}
	}

	return a.ID, tx.Commit()
}

// RecordReview stores a finished session review as a new attempt.
func (s *Store) RecordReview(meta model.Attempt, review model.Review) (string, error) {
	meta.Score = review.Score
	meta.Total = review.Total
	meta.Missed = nil
	for i, m := range review.Missed {
		meta.Missed = append(meta.Missed, model.MissedReview{Position: i + 1, MissedEntry: m})
	}
	return s.SaveAttempt(meta)
}

// GetAttempt returns an attempt with its missed questions.
func (s *Store) GetAttempt(id string) (model.Attempt, error) {
	var a model.Attempt
	err := s.db.QueryRow(
		`SELECT id, bank, variant, digest, score, total, started_at, completed_at FROM attempts WHERE id = ?`, id,
	).Scan(&a.ID, &a.Bank, &a.Variant, &a.Digest, &a.Score, &a.Total, &a.StartedAt, &a.CompletedAt)
	if err != nil {
		return a, err
	}
	a.Missed, err = s.getMissed(id)
	return a, err
}

func (s *Store) getMissed(attemptID string) ([]model.MissedReview, error) {
	rows, err := s.db.Query(
		`SELECT position, question, options, correct, selected, explanation
		 FROM missed_answers WHERE attempt_id = ? ORDER BY position`, attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var missed []model.MissedReview
	for rows.Next() {
		var m model.MissedReview
		var options, correct, selected string
		if err := rows.Scan(&m.Position, &m.Question, &options, &correct, &selected, &m.Explanation); err != nil {
			return nil, err
		}
		if err := decodeEntry(&m.MissedEntry, options, correct, selected); err != nil {
			return nil, fmt.Errorf("decode missed answer %d: %w", m.Position, err)
		}
		missed = append(missed, m)
	}
	return missed, rows.Err()
}

// GetMissed returns a single missed question of an attempt.
func (s *Store) GetMissed(attemptID string, position int) (model.MissedReview, error) {
	var m model.MissedReview
	var options, correct, selected string
	err := s.db.QueryRow(
		`SELECT position, question, options, correct, selected, explanation
		 FROM missed_answers WHERE attempt_id = ? AND position = ?`, attemptID, position,
	).Scan(&m.Position, &m.Question, &options, &correct, &selected, &m.Explanation)
	if err != nil {
		return m, err
	}
	return m, decodeEntry(&m.MissedEntry, options, correct, selected)
}

// ListAttempts returns all attempts, newest first, without missed questions.
func (s *Store) ListAttempts() ([]model.Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, bank, variant, digest, score, total, started_at, completed_at
		 FROM attempts ORDER BY completed_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.Bank, &a.Variant, &a.Digest, &a.Score, &a.Total, &a.StartedAt, &a.CompletedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// AttemptCount returns the number of recorded attempts.
func (s *Store) AttemptCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM attempts`).Scan(&count)
	return count, err
}

// SetExplanation stores an explanation for a missed question.
func (s *Store) SetExplanation(attemptID string, position int, text string) error {
	res, err := s.db.Exec(
		`UPDATE missed_answers SET explanation = ? WHERE attempt_id = ? AND position = ?`,
		text, attemptID, position,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func encodeEntry(m model.MissedEntry) (options, correct, selected string, err error) {
	parts := [][]string{m.Options, m.CorrectAnswers, m.SelectedAnswers}
	out := make([]string, len(parts))
	for i, p := range parts {
		if p == nil {
			p = []string{}
		}
		b, err := json.Marshal(p)
		if err != nil {
			return "", "", "", fmt.Errorf("encode missed answer: %w", err)
		}
		out[i] = string(b)
	}
	return out[0], out[1], out[2], nil
}

func decodeEntry(m *model.MissedEntry, options, correct, selected string) error {
	if err := json.Unmarshal([]byte(options), &m.Options); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(correct), &m.CorrectAnswers); err != nil {
		return err
	}
	return json.Unmarshal([]byte(selected), &m.SelectedAnswers)
}
