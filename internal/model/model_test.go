package model

import (
	"slices"
	"testing"
)

func TestMissedEntryChoices(t *testing.T) {
	tests := []struct {
		name  string
		entry MissedEntry
		want  []string
		marks []OptionMark
	}{
		{
			name: "choice question lists options",
			entry: MissedEntry{
				Options:         []string{"2", "3", "4"},
				CorrectAnswers:  []string{"2", "3"},
				SelectedAnswers: []string{"2", "4"},
			},
			want:  []string{"2", "3", "4"},
			marks: []OptionMark{MarkAnswered, MarkCorrect, MarkWrong},
		},
		{
			name: "fill-in lists typed then accepted",
			entry: MissedEntry{
				Options:         []string{"type the command"},
				CorrectAnswers:  []string{"man", "`man`"},
				SelectedAnswers: []string{"mann"},
			},
			want:  []string{"mann", "man", "`man`"},
			marks: []OptionMark{MarkWrong, MarkCorrect, MarkCorrect},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.entry.Choices()
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Choices() = %v, want %v", got, tt.want)
			}
			for i, c := range got {
				if m := tt.entry.Mark(c); m != tt.marks[i] {
					t.Errorf("Mark(%q) = %q, want %q", c, m, tt.marks[i])
				}
			}
		})
	}
}

func TestMissedEntryChoicesCopies(t *testing.T) {
	e := MissedEntry{Options: []string{"a", "b"}}
	e.Choices()[0] = "z"
	if e.Options[0] != "a" {
		t.Errorf("Choices aliased Options: %v", e.Options)
	}
}
