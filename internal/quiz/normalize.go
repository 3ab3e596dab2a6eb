package quiz

import (
	"strings"

	"github.com/pavelanni/quizdrill/internal/model"
)

type normalizeConfig struct {
	shuffler *Shuffler
	shuffle  bool
	limit    int
}

// NormalizeOption configures Normalize.
type NormalizeOption func(*normalizeConfig)

// WithShuffler sets the randomness source used for ordering.
func WithShuffler(s *Shuffler) NormalizeOption {
	return func(c *normalizeConfig) { c.shuffler = s }
}

// WithoutShuffle keeps authored question and option order.
func WithoutShuffle() NormalizeOption {
	return func(c *normalizeConfig) { c.shuffle = false }
}

// WithLimit keeps only the first n questions after ordering. Zero keeps all.
func WithLimit(n int) NormalizeOption {
	return func(c *normalizeConfig) { c.limit = n }
}

// Normalize validates raw records and turns them into questions.
// Question order and each question's option order are shuffled once.
// The first invalid record rejects the whole bank.
func Normalize(raw []model.RawQuestion, opts ...NormalizeOption) ([]Question, error) {
	cfg := normalizeConfig{shuffle: true}
	for _, o := range opts {
		o(&cfg)
	}

	if len(raw) == 0 {
		return nil, ErrEmptyBank
	}

	questions := make([]Question, 0, len(raw))
	for i, r := range raw {
		if err := validate(i, r); err != nil {
			return nil, err
		}
		q := NewQuestion(r.Question, r.Options, r.Answer)
		if cfg.shuffle {
			q.options = ShuffleWith(cfg.shuffler, q.options)
		}
		questions = append(questions, q)
	}

	if cfg.shuffle {
		questions = ShuffleWith(cfg.shuffler, questions)
	}
	if cfg.limit > 0 && cfg.limit < len(questions) {
		questions = questions[:cfg.limit:cfg.limit]
	}
	return questions, nil
}

func validate(i int, r model.RawQuestion) error {
	malformed := func(reason string) error {
		return &MalformedQuestionError{Index: i, Prompt: r.Question, Reason: reason}
	}

	if strings.TrimSpace(r.Question) == "" {
		return malformed("question text is empty")
	}
	if len(r.Options) == 0 {
		return malformed("no options")
	}
	if len(r.Answer) == 0 {
		return malformed("answer is empty")
	}
	if dup, ok := firstDuplicate(r.Options); ok {
		return malformed("duplicate option " + quote(dup))
	}
	if dup, ok := firstDuplicate(r.Answer); ok {
		return malformed("duplicate answer " + quote(dup))
	}
	if len(r.Options) == 1 {
		// fill-in-the-blank: answers are accepted literals, not options
		return nil
	}
	for _, a := range r.Answer {
		if !contains(r.Options, a) {
			return malformed("answer " + quote(a) + " is not among the options")
		}
	}
	return nil
}

func firstDuplicate(values []string) (string, bool) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v, true
		}
		seen[v] = struct{}{}
	}
	return "", false
}

func quote(s string) string {
	return `"` + truncate(s, 40) + `"`
}
