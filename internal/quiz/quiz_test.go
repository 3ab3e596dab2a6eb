package quiz

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/pavelanni/quizdrill/internal/model"
)

func sorted(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

func TestShufflePreservesMultiset(t *testing.T) {
	tests := []struct {
		name  string
		input []string
	}{
		{"empty", []string{}},
		{"single", []string{"a"}},
		{"distinct", []string{"a", "b", "c", "d", "e"}},
		{"duplicates", []string{"x", "x", "y", "z", "z", "z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := slices.Clone(tt.input)
			got := Shuffle(tt.input)

			if len(got) != len(tt.input) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.input))
			}
			if !slices.Equal(sorted(got), sorted(tt.input)) {
				t.Errorf("Shuffle(%v) = %v, elements differ", tt.input, got)
			}
			if !slices.Equal(tt.input, original) {
				t.Errorf("input mutated: %v, want %v", tt.input, original)
			}
		})
	}
}

func TestShuffleReturnsNewSlice(t *testing.T) {
	input := []int{1, 2, 3}
	got := Shuffle(input)
	got[0] = 99
	if input[0] == 99 {
		t.Error("Shuffle result aliases its input")
	}
}

func TestShuffleWithSeededSourceIsDeterministic(t *testing.T) {
	input := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	a := ShuffleWith(NewShuffler(rand.New(rand.NewPCG(1, 2))), input)
	b := ShuffleWith(NewShuffler(rand.New(rand.NewPCG(1, 2))), input)
	if !slices.Equal(a, b) {
		t.Errorf("same seed produced %v and %v", a, b)
	}
}

func TestShuffleEventuallyPermutes(t *testing.T) {
	input := []int{1, 2, 3, 4, 5, 6, 7, 8}
	for range 50 {
		if !slices.Equal(Shuffle(input), input) {
			return
		}
	}
	t.Error("50 shuffles of 8 elements never changed the order")
}

func TestGrade(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		answer   []string
		want     bool
	}{
		{"same order", []string{"a", "b"}, []string{"a", "b"}, true},
		{"different order", []string{"a", "b"}, []string{"b", "a"}, true},
		{"subset", []string{"a"}, []string{"a", "b"}, false},
		{"empty selection", []string{}, []string{"a"}, false},
		{"nil selection", nil, []string{"a"}, false},
		{"wrong member", []string{"2", "4"}, []string{"2", "3"}, false},
		{"case sensitive", []string{"LS"}, []string{"ls"}, false},
		{"whitespace literal", []string{"ls "}, []string{"ls"}, false},
		{"duplicated selection", []string{"a", "a"}, []string{"a", "b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Grade(tt.selected, tt.answer); got != tt.want {
				t.Errorf("Grade(%v, %v) = %v, want %v", tt.selected, tt.answer, got, tt.want)
			}
		})
	}
}

func TestQuestionDerivedFields(t *testing.T) {
	tests := []struct {
		name     string
		q        Question
		required int
		multi    bool
		fill     bool
	}{
		{"single choice", NewQuestion("q", []string{"a", "b"}, []string{"a"}), 1, false, false},
		{"multiple choice", NewQuestion("q", []string{"a", "b", "c"}, []string{"a", "c"}), 2, true, false},
		{"fill in", NewQuestion("q", []string{"___"}, []string{"ls"}), 1, false, true},
		{"fill in with alternatives", NewQuestion("q", []string{"___"}, []string{"ls", "dir"}), 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.RequiredSelections(); got != tt.required {
				t.Errorf("RequiredSelections() = %d, want %d", got, tt.required)
			}
			if got := tt.q.IsMultipleChoice(); got != tt.multi {
				t.Errorf("IsMultipleChoice() = %v, want %v", got, tt.multi)
			}
			if got := tt.q.IsFillInBlank(); got != tt.fill {
				t.Errorf("IsFillInBlank() = %v, want %v", got, tt.fill)
			}
		})
	}
}

func TestQuestionAccessorsReturnCopies(t *testing.T) {
	q := NewQuestion("q", []string{"a", "b"}, []string{"a"})
	q.Options()[0] = "mutated"
	q.Answer()[0] = "mutated"
	if q.Options()[0] != "a" || q.Answer()[0] != "a" {
		t.Error("accessor results alias question state")
	}
}

func TestQuestionCheckFillInBlank(t *testing.T) {
	q := NewQuestion("Command to list files?", []string{"___"}, []string{"ls", "dir"})
	tests := []struct {
		selected []string
		want     bool
	}{
		{[]string{"ls"}, true},
		{[]string{"dir"}, true},
		{[]string{"Ls"}, false},
		{[]string{" ls"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := q.Check(tt.selected); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.selected, got, tt.want)
		}
	}
}

func TestToggle(t *testing.T) {
	single := NewQuestion("q", []string{"a", "b", "c"}, []string{"b"})
	multi := NewQuestion("q", []string{"a", "b", "c", "d"}, []string{"a", "b"})
	fill := NewQuestion("q", []string{"___"}, []string{"pwd"})

	tests := []struct {
		name     string
		q        Question
		sequence []string
		want     []string
	}{
		{"single replaces", single, []string{"a", "b"}, []string{"b"}},
		{"single reselect", single, []string{"a", "a"}, []string{"a"}},
		{"multi adds", multi, []string{"a", "b"}, []string{"a", "b"}},
		{"multi cap", multi, []string{"a", "b", "c"}, []string{"a", "b"}},
		{"multi removes", multi, []string{"a", "b", "a"}, []string{"b"}},
		{"multi remove then add", multi, []string{"a", "b", "a", "c"}, []string{"b", "c"}},
		{"unknown option ignored", multi, []string{"a", "z"}, []string{"a"}},
		{"unknown option single", single, []string{"a", "z"}, []string{"a"}},
		{"fill replaces", fill, []string{"pw", "pwd"}, []string{"pwd"}},
		{"fill empty clears", fill, []string{"pwd", ""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sel []string
			for _, opt := range tt.sequence {
				sel = Toggle(sel, opt, tt.q)
			}
			if !slices.Equal(sel, tt.want) {
				t.Errorf("after %v selection = %v, want %v", tt.sequence, sel, tt.want)
			}
		})
	}
}

func TestToggleDoesNotMutateInput(t *testing.T) {
	q := NewQuestion("q", []string{"a", "b", "c"}, []string{"a", "b"})
	in := []string{"a"}
	_ = Toggle(in, "b", q)
	_ = Toggle(in, "a", q)
	if !slices.Equal(in, []string{"a"}) {
		t.Errorf("input mutated: %v", in)
	}
}

func TestNormalize(t *testing.T) {
	raw := []model.RawQuestion{
		{Question: "2+2=?", Options: []string{"3", "4", "5"}, Answer: []string{"4"}},
		{Question: "pick primes", Options: []string{"2", "3", "4"}, Answer: []string{"2", "3"}},
		{Question: "Print working directory?", Options: []string{"___"}, Answer: []string{"pwd"}},
	}

	got, err := Normalize(raw, WithShuffler(NewShuffler(rand.New(rand.NewPCG(7, 7)))))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got) != len(raw) {
		t.Fatalf("expected %d questions, got %d", len(raw), len(got))
	}

	byPrompt := map[string]Question{}
	for _, q := range got {
		byPrompt[q.Prompt()] = q
	}
	for _, r := range raw {
		q, ok := byPrompt[r.Question]
		if !ok {
			t.Fatalf("question %q missing after normalize", r.Question)
		}
		if !slices.Equal(sorted(q.Options()), sorted(r.Options)) {
			t.Errorf("%q options = %v, want permutation of %v", r.Question, q.Options(), r.Options)
		}
		if !slices.Equal(q.Answer(), r.Answer) {
			t.Errorf("%q answer = %v, want %v", r.Question, q.Answer(), r.Answer)
		}
	}
}

func TestNormalizeDoesNotRetainInput(t *testing.T) {
	raw := []model.RawQuestion{
		{Question: "q", Options: []string{"a", "b"}, Answer: []string{"a"}},
	}
	got, err := Normalize(raw, WithoutShuffle())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	raw[0].Options[0] = "changed"
	raw[0].Answer[0] = "changed"
	if got[0].Options()[0] != "a" || got[0].Answer()[0] != "a" {
		t.Error("normalized question shares storage with raw input")
	}
}

func TestNormalizeWithoutShuffleKeepsOrder(t *testing.T) {
	raw := []model.RawQuestion{
		{Question: "first", Options: []string{"a", "b", "c"}, Answer: []string{"a"}},
		{Question: "second", Options: []string{"x", "y"}, Answer: []string{"y"}},
	}
	got, err := Normalize(raw, WithoutShuffle())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got[0].Prompt() != "first" || got[1].Prompt() != "second" {
		t.Errorf("order changed: %q, %q", got[0].Prompt(), got[1].Prompt())
	}
	if !slices.Equal(got[0].Options(), []string{"a", "b", "c"}) {
		t.Errorf("options reordered: %v", got[0].Options())
	}
}

func TestNormalizeLimit(t *testing.T) {
	raw := make([]model.RawQuestion, 5)
	for i := range raw {
		raw[i] = model.RawQuestion{Question: string(rune('A' + i)), Options: []string{"a", "b"}, Answer: []string{"a"}}
	}
	tests := []struct {
		limit int
		want  int
	}{
		{0, 5},
		{3, 3},
		{5, 5},
		{10, 5},
	}
	for _, tt := range tests {
		got, err := Normalize(raw, WithLimit(tt.limit))
		if err != nil {
			t.Fatalf("Normalize(limit=%d): %v", tt.limit, err)
		}
		if len(got) != tt.want {
			t.Errorf("limit %d: got %d questions, want %d", tt.limit, len(got), tt.want)
		}
	}
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	valid := model.RawQuestion{Question: "ok", Options: []string{"a", "b"}, Answer: []string{"a"}}

	tests := []struct {
		name   string
		bad    model.RawQuestion
		reason string
	}{
		{"empty answer", model.RawQuestion{Question: "q", Options: []string{"a"}, Answer: nil}, "answer is empty"},
		{"answer not in options", model.RawQuestion{Question: "q", Options: []string{"a", "b"}, Answer: []string{"c"}}, `answer "c" is not among the options`},
		{"no options", model.RawQuestion{Question: "q", Answer: []string{"a"}}, "no options"},
		{"empty prompt", model.RawQuestion{Question: "  ", Options: []string{"a", "b"}, Answer: []string{"a"}}, "question text is empty"},
		{"duplicate option", model.RawQuestion{Question: "q", Options: []string{"a", "a"}, Answer: []string{"a"}}, `duplicate option "a"`},
		{"duplicate answer", model.RawQuestion{Question: "q", Options: []string{"a", "b"}, Answer: []string{"a", "a"}}, `duplicate answer "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]model.RawQuestion{valid, tt.bad, valid})
			if !errors.Is(err, ErrMalformedQuestion) {
				t.Fatalf("expected ErrMalformedQuestion, got %v", err)
			}
			var mq *MalformedQuestionError
			if !errors.As(err, &mq) {
				t.Fatalf("expected *MalformedQuestionError, got %T", err)
			}
			if mq.Index != 1 {
				t.Errorf("Index = %d, want 1", mq.Index)
			}
			if mq.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", mq.Reason, tt.reason)
			}
		})
	}
}

func TestNormalizeFillInSkipsSubsetCheck(t *testing.T) {
	raw := []model.RawQuestion{
		{Question: "Command?", Options: []string{"type the command"}, Answer: []string{"ls -la"}},
	}
	if _, err := Normalize(raw); err != nil {
		t.Errorf("fill-in-the-blank rejected: %v", err)
	}
}

func TestNormalizeEmptyBank(t *testing.T) {
	if _, err := Normalize(nil); !errors.Is(err, ErrEmptyBank) {
		t.Errorf("expected ErrEmptyBank, got %v", err)
	}
}
